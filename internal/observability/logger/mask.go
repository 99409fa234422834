package logger

import "strings"

// MaskCard masks a card or account number, keeping only the last 4 digits.
// Requisite card numbers are payer-visible but must never land in logs
// in full.
func MaskCard(value string) string {
	return maskLast4(strings.TrimSpace(value))
}

// MaskAPIKey masks an API key, preserving only the last 4 characters.
func MaskAPIKey(value string) string {
	return maskLast4(strings.TrimSpace(value))
}

// MaskAuthorization masks bearer and JWT tokens, preserving the scheme.
func MaskAuthorization(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	parts := strings.Fields(value)
	if len(parts) == 2 && (strings.EqualFold(parts[0], "Bearer") || strings.EqualFold(parts[0], "JWT")) {
		return parts[0] + " " + maskLast4(parts[1])
	}
	return maskLast4(value)
}

func maskLast4(value string) string {
	if value == "" {
		return ""
	}
	if len(value) <= 4 {
		return strings.Repeat("*", len(value))
	}
	return strings.Repeat("*", len(value)-4) + value[len(value)-4:]
}

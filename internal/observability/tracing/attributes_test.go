package tracing

import (
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestSafeAttributesDropsProviderCredentials(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("provider", "paybridge"),
		attribute.String("request.signature", "a1b2c3"),
		attribute.String("profiat.private_key", "-----BEGIN"),
		attribute.String("card_number", "5375411122223333"),
		attribute.String("holder_name", "Taras K."),
		attribute.String("currency", "UAH"),
	)
	if len(attrs) != 2 {
		t.Fatalf("expected only provider and currency to survive, got %v", attrs)
	}
	for _, attr := range attrs {
		if key := string(attr.Key); key != "provider" && key != "currency" {
			t.Fatalf("unexpected attribute %q", key)
		}
	}
}

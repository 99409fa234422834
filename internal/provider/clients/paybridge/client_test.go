package paybridge

import (
	"crypto/sha1"
	"encoding/hex"
	"testing"
)

func TestSigningStringSortsKeys(t *testing.T) {
	params := map[string]string{
		"version":     "1.0",
		"amount":      "500",
		"merchant_id": "m-1",
		"currency":    "UAH",
	}
	got := SigningString(params, "secret")
	want := "amount|500|currency|UAH|merchant_id|m-1|version|1.0|secret"
	if got != want {
		t.Fatalf("SigningString = %q, want %q", got, want)
	}
}

func TestSignIsSHA1OfSigningString(t *testing.T) {
	params := map[string]string{"amount": "500", "currency": "UAH"}
	sum := sha1.Sum([]byte(SigningString(params, "secret")))
	want := hex.EncodeToString(sum[:])
	if got := Sign(params, "secret"); got != want {
		t.Fatalf("Sign = %q, want %q", got, want)
	}
}

func TestSignDependsOnSecret(t *testing.T) {
	params := map[string]string{"amount": "500"}
	if Sign(params, "a") == Sign(params, "b") {
		t.Fatalf("signatures with different secrets must differ")
	}
}

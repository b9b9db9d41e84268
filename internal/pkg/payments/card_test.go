package payments

import (
	"testing"

	"github.com/ricardofreitas-dev/PagBem/app/models"
)

func TestDetectCardBrand(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "4111111111111111", want: models.CardBrandVisa},
		{in: "4242 4242 4242 4242", want: models.CardBrandVisa},
		{in: "5555555555554444", want: models.CardBrandMastercard},
		{in: "5500000000000004", want: models.CardBrandMastercard},
		{in: "5105105105105100", want: models.CardBrandMastercard},
		{in: "378282246310005", want: models.CardBrandAmex},
		{in: "340000000000009", want: models.CardBrandAmex},
		{in: "6011111111111117", want: models.CardBrandUnknown},
		{in: "1234", want: models.CardBrandUnknown},
	}

	for _, tt := range tests {
		if got := DetectCardBrand(tt.in); got != tt.want {
			t.Fatalf("DetectCardBrand(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateLuhn(t *testing.T) {
	valid := []string{
		"4111111111111111",
		"4242-4242-4242-4242",
		"5555555555554444",
		"378282246310005",
	}
	for _, number := range valid {
		if !ValidateLuhn(number) {
			t.Fatalf("expected %q to pass the Luhn check", number)
		}
	}

	invalid := []string{
		"4111111111111112",
		"1234567890123456",
		"411111",
		"",
		"not-a-card",
	}
	for _, number := range invalid {
		if ValidateLuhn(number) {
			t.Fatalf("expected %q to fail the Luhn check", number)
		}
	}
}

func TestCardLastFour(t *testing.T) {
	if got := CardLastFour("4111 1111 1111 1111"); got != "1111" {
		t.Fatalf("CardLastFour = %q, want 1111", got)
	}
	if got := CardLastFour("42"); got != "42" {
		t.Fatalf("CardLastFour on short input = %q, want 42", got)
	}
}

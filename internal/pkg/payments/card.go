package payments

import (
	"strings"

	"github.com/ricardofreitas-dev/PagBem/app/models"
)

// DetectCardBrand returns the card brand for a PAN based on its prefix.
// Only the brands the provider settles are distinguished.
func DetectCardBrand(number string) string {
	digits := normalizeCardNumber(number)
	if len(digits) < 13 {
		return models.CardBrandUnknown
	}

	switch {
	case digits[0] == '4':
		return models.CardBrandVisa
	case digits[0] == '5' && digits[1] >= '1' && digits[1] <= '5':
		return models.CardBrandMastercard
	case strings.HasPrefix(digits, "34") || strings.HasPrefix(digits, "37"):
		return models.CardBrandAmex
	default:
		return models.CardBrandUnknown
	}
}

// ValidateLuhn reports whether the PAN passes the Luhn checksum.
func ValidateLuhn(number string) bool {
	digits := normalizeCardNumber(number)
	if len(digits) < 13 || len(digits) > 19 {
		return false
	}

	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// CardLastFour returns the last four digits of a PAN for storage.
func CardLastFour(number string) string {
	digits := normalizeCardNumber(number)
	if len(digits) < 4 {
		return digits
	}
	return digits[len(digits)-4:]
}

func normalizeCardNumber(number string) string {
	var b strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

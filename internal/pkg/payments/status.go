package payments

import (
	"strings"

	"github.com/ricardofreitas-dev/PagBem/app/models"
)

// MapProviderStatus translates the Lytex status vocabulary into the internal
// four-state payment status enum. Unknown values are treated as failed so a
// provider vocabulary change never leaves a payment silently pending.
func MapProviderStatus(providerStatus string) string {
	switch strings.ToLower(strings.TrimSpace(providerStatus)) {
	case "approved", "paid", "completed":
		return models.PaymentStatusCompleted
	case "pending", "in_analysis", "waiting_payment", "processing":
		return models.PaymentStatusPending
	case "refunded", "partially_refunded", "charged_back":
		return models.PaymentStatusRefunded
	default:
		return models.PaymentStatusFailed
	}
}

// IsSettledStatus reports whether a provider status means money moved.
func IsSettledStatus(providerStatus string) bool {
	return MapProviderStatus(providerStatus) == models.PaymentStatusCompleted
}

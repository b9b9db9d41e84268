package payments

import (
	"testing"

	"github.com/ricardofreitas-dev/PagBem/app/models"
)

func TestMapProviderStatus(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "approved", want: models.PaymentStatusCompleted},
		{in: "paid", want: models.PaymentStatusCompleted},
		{in: "completed", want: models.PaymentStatusCompleted},
		{in: "PAID", want: models.PaymentStatusCompleted},
		{in: "pending", want: models.PaymentStatusPending},
		{in: "in_analysis", want: models.PaymentStatusPending},
		{in: "waiting_payment", want: models.PaymentStatusPending},
		{in: "processing", want: models.PaymentStatusPending},
		{in: "refunded", want: models.PaymentStatusRefunded},
		{in: "partially_refunded", want: models.PaymentStatusRefunded},
		{in: "charged_back", want: models.PaymentStatusRefunded},
		{in: "declined", want: models.PaymentStatusFailed},
		{in: "", want: models.PaymentStatusFailed},
		{in: "some_new_status", want: models.PaymentStatusFailed},
	}

	for _, tt := range tests {
		if got := MapProviderStatus(tt.in); got != tt.want {
			t.Fatalf("MapProviderStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsSettledStatus(t *testing.T) {
	if !IsSettledStatus("approved") {
		t.Fatalf("expected approved to be settled")
	}
	if IsSettledStatus("waiting_payment") {
		t.Fatalf("expected waiting_payment not to be settled")
	}
}

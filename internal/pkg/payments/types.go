package payments

import "time"

// CardDetails carries raw card data for a single charge. The PAN and CVV are
// forwarded to the provider and never persisted.
type CardDetails struct {
	Number      string `json:"number" validate:"required,min=13,max=19"`
	HolderName  string `json:"holder_name" validate:"required,min=2,max=100"`
	ExpiryMonth int    `json:"expiry_month" validate:"required,min=1,max=12"`
	ExpiryYear  int    `json:"expiry_year" validate:"required,min=2000"`
	CVV         string `json:"cvv" validate:"required,min=3,max=4"`
}

// CustomerDetails identifies the payer for boleto and PIX charges.
type CustomerDetails struct {
	Name     string `json:"name" validate:"required,min=2,max=150"`
	Email    string `json:"email" validate:"required,email"`
	Document string `json:"document" validate:"required,min=11,max=18"` // CPF or CNPJ
}

// CardPaymentInput is the normalized input for a credit card charge.
type CardPaymentInput struct {
	InvoiceID      uint
	UserID         uint
	AmountCents    int64
	Description    string
	Card           CardDetails
	Installments   int
	SaveCard       bool
	IdempotencyKey string
	Metadata       map[string]string
}

// BoletoInput is the normalized input for a boleto charge.
type BoletoInput struct {
	InvoiceID      uint
	UserID         uint
	AmountCents    int64
	Description    string
	Customer       CustomerDetails
	DueDate        *time.Time
	IdempotencyKey string
	Metadata       map[string]string
}

// PixInput is the normalized input for a PIX charge.
type PixInput struct {
	InvoiceID      uint
	UserID         uint
	AmountCents    int64
	Description    string
	Customer       CustomerDetails
	ExpiresIn      int // seconds until the QR code expires
	IdempotencyKey string
	Metadata       map[string]string
}

// Outcome is the uniform result shape returned to the controllers. Gateway
// and provider failures land here with Success=false instead of an error;
// errors are reserved for local infrastructure failures.
type Outcome struct {
	Success         bool   `json:"success"`
	Duplicate       bool   `json:"duplicate,omitempty"`
	TransactionID   string `json:"transaction_id,omitempty"`
	Status          string `json:"status,omitempty"`
	Message         string `json:"message,omitempty"`
	PaymentURL      string `json:"payment_url,omitempty"`
	Barcode         string `json:"barcode,omitempty"`
	PixQRCode       string `json:"pix_qr_code,omitempty"`
	GatewayResponse string `json:"-"`
}

// WebhookEvent is the parsed shape of a Lytex status-change notification.
type WebhookEvent struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	EventType     string `json:"event_type"`
}

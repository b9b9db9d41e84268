package models

import "time"

const (
	PaymentMethodCreditCard = "credit_card"
	PaymentMethodBoleto     = "boleto"
	PaymentMethodPix        = "pix"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

// PaymentHistory is the audit record of one payment or refund attempt. A row
// is created at payment initiation with its invoice id and the provider
// transaction id, so callbacks always resolve by transaction id instead of
// guessing at the latest open invoice.
type PaymentHistory struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	InvoiceID       uint       `gorm:"not null;index" json:"invoice_id"`
	UserID          uint       `gorm:"not null;index" json:"user_id"`
	TransactionID   string     `gorm:"type:varchar(191);not null;uniqueIndex:ux_payment_history_transaction" json:"transaction_id"`
	IdempotencyKey  *string    `gorm:"type:varchar(191);default:null;uniqueIndex:ux_payment_history_idem_key" json:"-"`
	Method          string     `gorm:"type:varchar(16);not null;index" json:"method"`
	AmountCents     int64      `gorm:"not null" json:"amount_cents"`
	Status          string     `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	GatewayResponse string     `gorm:"type:longtext" json:"-"`
	PaymentURL      string     `gorm:"type:varchar(500);default:''" json:"payment_url,omitempty"`
	Barcode         string     `gorm:"type:varchar(100);default:''" json:"barcode,omitempty"`
	PixQRCode       string     `gorm:"type:text" json:"pix_qr_code,omitempty"`
	ExpiresAt       *time.Time `gorm:"type:timestamp;default:null" json:"expires_at,omitempty"`
	PaidAt          *time.Time `gorm:"type:timestamp;default:null" json:"paid_at,omitempty"`
	RefundedAt      *time.Time `gorm:"type:timestamp;default:null" json:"refunded_at,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Invoice Invoice `gorm:"foreignKey:InvoiceID" json:"-"`
}

// IsFinal reports whether the payment reached a terminal state.
func (p *PaymentHistory) IsFinal() bool {
	return p.Status == PaymentStatusCompleted ||
		p.Status == PaymentStatusFailed ||
		p.Status == PaymentStatusRefunded
}

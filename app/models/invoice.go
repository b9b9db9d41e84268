package models

import "time"

const (
	InvoiceStatusOpen = "open"
	InvoiceStatusPaid = "paid"
	InvoiceStatusVoid = "void"
)

// Invoice is the amount owed for one subscription period. Amounts are integer
// cents; AmountRemaining must always equal AmountDue - AmountPaid.
type Invoice struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	SubscriptionID  uint       `gorm:"not null;index" json:"subscription_id"`
	UserID          uint       `gorm:"not null;index:idx_invoices_user_status,priority:1" json:"user_id"`
	Description     string     `gorm:"type:varchar(255);not null;default:''" json:"description"`
	AmountDue       int64      `gorm:"not null" json:"amount_due"`
	AmountPaid      int64      `gorm:"not null;default:0" json:"amount_paid"`
	AmountRemaining int64      `gorm:"not null" json:"amount_remaining"`
	Currency        string     `gorm:"type:varchar(3);not null;default:'BRL'" json:"currency"`
	Status          string     `gorm:"type:varchar(16);not null;default:'open';index:idx_invoices_user_status,priority:2" json:"status"`
	DueDate         *time.Time `gorm:"type:timestamp;default:null" json:"due_date,omitempty"`
	PaidAt          *time.Time `gorm:"type:timestamp;default:null" json:"paid_at,omitempty"`
	VoidedAt        *time.Time `gorm:"type:timestamp;default:null" json:"voided_at,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Subscription Subscription `gorm:"foreignKey:SubscriptionID" json:"-"`
}

// IsPayable reports whether the invoice can still accept a payment attempt.
func (i *Invoice) IsPayable() bool {
	return i.Status == InvoiceStatusOpen && i.AmountRemaining > 0
}

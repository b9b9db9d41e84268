package models

import "time"

const (
	CardBrandVisa       = "visa"
	CardBrandMastercard = "mastercard"
	CardBrandAmex       = "amex"
	CardBrandUnknown    = "unknown"
)

// PaymentMethod stores card metadata for a customer who opted to save a card.
// Only the last four digits and the provider token are kept, never the PAN.
type PaymentMethod struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	LastFour    string    `gorm:"type:varchar(4);not null" json:"last_four"`
	Brand       string    `gorm:"type:varchar(16);not null;default:'unknown'" json:"brand"`
	ExpiryMonth int       `gorm:"not null" json:"expiry_month"`
	ExpiryYear  int       `gorm:"not null" json:"expiry_year"`
	CardToken   string    `gorm:"type:varchar(191);default:''" json:"-"`
	IsDefault   bool      `gorm:"default:false;index" json:"is_default"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

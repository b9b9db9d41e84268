package repository

import (
	"time"

	"github.com/ricardofreitas-dev/PagBem/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByAPIKeyHash(hash string) (*models.User, error)
	Update(user *models.User) error
	TouchAPIKeyUsage(userID uint, at time.Time) error
}

// SubscriptionRepository defines database operations for subscriptions.
type SubscriptionRepository interface {
	Create(sub *models.Subscription) error
	GetByID(id uint) (*models.Subscription, error)
	GetByUserID(userID uint) ([]models.Subscription, error)
	Update(sub *models.Subscription) error
}

// InvoiceRepository defines database operations for invoices.
type InvoiceRepository interface {
	Create(invoice *models.Invoice) error
	GetByID(id uint) (*models.Invoice, error)
	GetByUserID(userID uint, offset, limit int) ([]models.Invoice, error)
	Update(invoice *models.Invoice) error
	MarkPaid(id uint, amountCents int64, paidAt time.Time) error
	MarkVoid(id uint, voidedAt time.Time) error
}

// PaymentRepository defines database operations for payment history rows and
// saved payment methods.
type PaymentRepository interface {
	CreateHistory(p *models.PaymentHistory) error
	GetHistoryByTransactionID(transactionID string) (*models.PaymentHistory, error)
	GetHistoryByIdempotencyKey(key string) (*models.PaymentHistory, error)
	UpdateHistory(p *models.PaymentHistory) error
	ListPendingOlderThan(cutoff time.Time, limit int) ([]models.PaymentHistory, error)
	ListHistoryByUserID(userID uint, offset, limit int) ([]models.PaymentHistory, error)

	CreateMethod(m *models.PaymentMethod) error
	GetMethodByID(id uint) (*models.PaymentMethod, error)
	ListMethodsByUserID(userID uint) ([]models.PaymentMethod, error)
	DeleteMethod(id uint) error

	CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error)
	GetWebhookEventByID(id uint) (*models.PaymentWebhookEvent, error)
	MarkWebhookProcessed(id uint, processingError string) error
}

// Repositories bundles all repository implementations.
type Repositories struct {
	User         UserRepository
	Subscription SubscriptionRepository
	Invoice      InvoiceRepository
	Payment      PaymentRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Subscription: NewSubscriptionRepository(db),
		Invoice:      NewInvoiceRepository(db),
		Payment:      NewPaymentRepository(db),
	}
}

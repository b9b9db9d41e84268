package repository

import (
	"time"

	"github.com/ricardofreitas-dev/PagBem/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// paymentRepository implements the PaymentRepository interface
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository instance
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) CreateHistory(p *models.PaymentHistory) error {
	return r.db.Create(p).Error
}

func (r *paymentRepository) GetHistoryByTransactionID(transactionID string) (*models.PaymentHistory, error) {
	var p models.PaymentHistory
	err := r.db.Where("transaction_id = ?", transactionID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepository) GetHistoryByIdempotencyKey(key string) (*models.PaymentHistory, error) {
	var p models.PaymentHistory
	err := r.db.Where("idempotency_key = ?", key).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepository) UpdateHistory(p *models.PaymentHistory) error {
	return r.db.Save(p).Error
}

// ListPendingOlderThan returns pending payments created before the cutoff.
// Used by the reconciliation worker to re-poll the provider.
func (r *paymentRepository) ListPendingOlderThan(cutoff time.Time, limit int) ([]models.PaymentHistory, error) {
	var rows []models.PaymentHistory
	err := r.db.Where("status = ? AND created_at < ?", models.PaymentStatusPending, cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *paymentRepository) ListHistoryByUserID(userID uint, offset, limit int) ([]models.PaymentHistory, error) {
	var rows []models.PaymentHistory
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *paymentRepository) CreateMethod(m *models.PaymentMethod) error {
	return r.db.Create(m).Error
}

func (r *paymentRepository) GetMethodByID(id uint) (*models.PaymentMethod, error) {
	var m models.PaymentMethod
	if err := r.db.First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *paymentRepository) ListMethodsByUserID(userID uint) ([]models.PaymentMethod, error) {
	var methods []models.PaymentMethod
	err := r.db.Where("user_id = ?", userID).Find(&methods).Error
	return methods, err
}

func (r *paymentRepository) DeleteMethod(id uint) error {
	return r.db.Delete(&models.PaymentMethod{}, id).Error
}

// CreateWebhookEventIfNotExists inserts the event unless one with the same
// provider and event id already exists. Returns created=false for duplicates.
func (r *paymentRepository) CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.PaymentWebhookEvent
	if err := r.db.Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *paymentRepository) GetWebhookEventByID(id uint) (*models.PaymentWebhookEvent, error) {
	var event models.PaymentWebhookEvent
	if err := r.db.First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *paymentRepository) MarkWebhookProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.PaymentWebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}

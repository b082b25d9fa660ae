package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/invoice"
	"github.com/invoicer/backend/internal/domain/shared"
	"github.com/invoicer/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPaymentInfoRepository implements invoice.PaymentInfoRepository using GORM
type GormPaymentInfoRepository struct {
	db *gorm.DB
}

// NewGormPaymentInfoRepository creates a new GormPaymentInfoRepository
func NewGormPaymentInfoRepository(db *gorm.DB) *GormPaymentInfoRepository {
	return &GormPaymentInfoRepository{db: db}
}

// Find returns the user's payment info or shared.ErrNotFound
func (r *GormPaymentInfoRepository) Find(ctx context.Context, userID uuid.UUID) (*invoice.PaymentInfo, error) {
	var model models.PaymentInfoModel
	if err := r.db.WithContext(ctx).First(&model, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return toDomainPaymentInfo(&model), nil
}

// Save inserts or replaces the user's single payment info row
func (r *GormPaymentInfoRepository) Save(ctx context.Context, userID uuid.UUID, info invoice.PaymentInfo) error {
	now := time.Now()
	model := models.PaymentInfoModel{
		UserID:        userID,
		AccountName:   info.AccountName,
		AccountNumber: info.AccountNumber,
		IFSC:          info.IFSC,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"account_name", "account_number", "ifsc", "updated_at"}),
	}).Create(&model).Error
}

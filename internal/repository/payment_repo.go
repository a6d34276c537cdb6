package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/arrendix/protecciones/internal/models"
	xerrors "github.com/arrendix/protecciones/internal/xerrors"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create records a payment attempt. A policy keeps at most one COMPLETED
// payment; a second one is refused with ErrPaymentAlreadyCompleted.
func (r *PaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if p.Status == models.PaymentCompleted {
			var count int64
			err := tx.Model(&models.Payment{}).
				Where("policy_id = ? AND status = ?", p.PolicyID, models.PaymentCompleted).
				Count(&count).Error
			if err != nil {
				return storageError("count completed payments", err)
			}
			if count > 0 {
				return xerrors.ErrPaymentAlreadyCompleted
			}
		}
		if err := tx.Create(p).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return xerrors.ErrPaymentAlreadyCompleted
			}
			return storageError("create payment", err)
		}
		return nil
	})
}

// ListByPolicy returns payment attempts oldest first.
func (r *PaymentRepository) ListByPolicy(ctx context.Context, policyID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("policy_id = ?", policyID).
		Order("created_at ASC").Order("id ASC").
		Find(&payments).Error
	if err != nil {
		return nil, storageError("list payments", err)
	}
	return payments, nil
}

// CompletedForPolicy returns the authoritative payment, or nil when the
// policy has not been paid.
func (r *PaymentRepository) CompletedForPolicy(ctx context.Context, policyID uint) (*models.Payment, error) {
	var payment models.Payment
	res := r.db.WithContext(ctx).
		Where("policy_id = ? AND status = ?", policyID, models.PaymentCompleted).
		Limit(1).
		Find(&payment)
	if res.Error != nil {
		return nil, storageError("find completed payment", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &payment, nil
}

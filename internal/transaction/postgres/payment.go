package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/nattapongw/banchee/internal"
	"github.com/nattapongw/banchee/internal/transaction"
)

// PaymentRepository implements transaction.PaymentRepository. The
// unique index on (transaction_id, paid_by_type, paid_by_user_id)
// backs the duplicate check at the storage level.
type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) transaction.PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create inserts a payment row. A unique-index violation means a
// concurrent insert won the race past the service's existence check,
// so it surfaces as the duplicate-payment error, not a storage fault.
func (r *PaymentRepository) Create(ctx context.Context, p *transaction.Payment) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return internal.ErrDuplicatePayment
		}
		return err
	}
	return nil
}

func (r *PaymentRepository) Exists(ctx context.Context, transactionID int64, paidByType string, paidByUserID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&transaction.Payment{}).
		Where("transaction_id = ? AND paid_by_type = ? AND paid_by_user_id = ?", transactionID, paidByType, paidByUserID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PaymentRepository) ListByTransaction(ctx context.Context, companyID, transactionID int64) ([]*transaction.Payment, error) {
	var payments []*transaction.Payment
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND transaction_id = ?", companyID, transactionID).
		Order("paid_at ASC").
		Find(&payments).Error
	return payments, err
}

package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/nattapongw/banchee/internal"
	"github.com/nattapongw/banchee/internal/transaction"
	"github.com/nattapongw/banchee/internal/workflow"
)

// TransactionRepository implements transaction.Repository using GORM.
type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) transaction.Repository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, txn *transaction.Transaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *TransactionRepository) GetByID(ctx context.Context, companyID, id int64) (*transaction.Transaction, error) {
	var txn transaction.Transaction
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrTransactionNotFound
		}
		return nil, err
	}
	return &txn, nil
}

func (r *TransactionRepository) List(ctx context.Context, companyID int64, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	query := r.db.WithContext(ctx).Where("company_id = ?", companyID)

	if filter.Direction != "" {
		query = query.Where("direction = ?", filter.Direction)
	}
	if filter.Status != "" {
		query = query.Where("workflow_status = ?", filter.Status)
	}
	if filter.ApprovalStatus != "" {
		query = query.Where("approval_status = ?", filter.ApprovalStatus)
	}

	var txns []*transaction.Transaction
	err := query.
		Order("transaction_date DESC, id DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&txns).Error
	return txns, err
}

func (r *TransactionRepository) Update(ctx context.Context, txn *transaction.Transaction) error {
	txn.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(txn).Error
}

// UpdateStatusWhere only advances the row if it still holds the
// expected status. Zero rows affected means a concurrent transition
// won, which surfaces as an illegal transition to the caller.
func (r *TransactionRepository) UpdateStatusWhere(ctx context.Context, companyID, id int64, expected, next workflow.Status) error {
	result := r.db.WithContext(ctx).
		Model(&transaction.Transaction{}).
		Where("company_id = ? AND id = ? AND workflow_status = ?", companyID, id, expected).
		Updates(map[string]interface{}{
			"workflow_status": next,
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrIllegalTransition.WithDetails(map[string]string{
			"expected_status": string(expected),
		})
	}
	return nil
}

func (r *TransactionRepository) SoftDelete(ctx context.Context, companyID, id int64) error {
	result := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		Delete(&transaction.Transaction{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrTransactionNotFound
	}
	return nil
}

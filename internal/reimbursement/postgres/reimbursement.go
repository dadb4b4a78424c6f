package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/nattapongw/banchee/internal"
	"github.com/nattapongw/banchee/internal/reimbursement"
)

// ReimbursementRepository implements reimbursement.Repository using GORM.
type ReimbursementRepository struct {
	db *gorm.DB
}

func NewReimbursementRepository(db *gorm.DB) reimbursement.Repository {
	return &ReimbursementRepository{db: db}
}

func (r *ReimbursementRepository) Create(ctx context.Context, claim *reimbursement.Reimbursement) error {
	return r.db.WithContext(ctx).Create(claim).Error
}

func (r *ReimbursementRepository) GetByID(ctx context.Context, companyID, id int64) (*reimbursement.Reimbursement, error) {
	var claim reimbursement.Reimbursement
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&claim).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrReimbursementNotFound
		}
		return nil, err
	}
	return &claim, nil
}

func (r *ReimbursementRepository) List(ctx context.Context, companyID int64, filter reimbursement.ListFilter) ([]*reimbursement.Reimbursement, error) {
	query := r.db.WithContext(ctx).Where("company_id = ?", companyID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.RequesterID != 0 {
		query = query.Where("requester_id = ?", filter.RequesterID)
	}

	var claims []*reimbursement.Reimbursement
	err := query.
		Order("claim_date DESC, id DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&claims).Error
	return claims, err
}

func (r *ReimbursementRepository) Update(ctx context.Context, claim *reimbursement.Reimbursement) error {
	claim.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(claim).Error
}

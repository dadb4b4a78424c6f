package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/nattapongw/banchee/internal/audit"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) audit.Repository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Append(ctx context.Context, entry *audit.Entry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *AuditRepository) ListByEntity(ctx context.Context, companyID int64, entityType string, entityID int64) ([]*audit.Entry, error) {
	var entries []*audit.Entry
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND entity_type = ? AND entity_id = ?", companyID, entityType, entityID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}

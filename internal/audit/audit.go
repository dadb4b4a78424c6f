// Package audit keeps the append-only activity trail. Recording is
// best-effort from the caller's point of view: a transition that
// committed must not be rolled back because its audit row failed.
package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nattapongw/banchee/internal/core/events"
)

type Entry struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	EventID    string    `json:"event_id" gorm:"column:event_id;uniqueIndex"`
	CompanyID  int64     `json:"company_id" gorm:"column:company_id;not null;index"`
	ActorID    int64     `json:"actor_id" gorm:"column:actor_id"`
	EntityType string    `json:"entity_type" gorm:"column:entity_type;not null"`
	EntityID   int64     `json:"entity_id" gorm:"column:entity_id;not null;index"`
	Action     string    `json:"action" gorm:"column:action;not null"`
	FromStatus string    `json:"from_status,omitempty" gorm:"column:from_status"`
	ToStatus   string    `json:"to_status,omitempty" gorm:"column:to_status"`
	Details    string    `json:"details,omitempty" gorm:"column:details"`
	CreatedAt  time.Time `json:"created_at" gorm:"column:created_at"`
}

func (Entry) TableName() string {
	return "audit_logs"
}

type Repository interface {
	Append(ctx context.Context, entry *Entry) error
	ListByEntity(ctx context.Context, companyID int64, entityType string, entityID int64) ([]*Entry, error)
}

type Recorder struct {
	repo   Repository
	logger *slog.Logger
}

func NewRecorder(repo Repository, logger *slog.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

// Record appends an entry and swallows failures after logging them.
func (r *Recorder) Record(ctx context.Context, entry *Entry) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if err := r.repo.Append(ctx, entry); err != nil {
		r.logger.Error("failed to append audit entry",
			"entity_type", entry.EntityType,
			"entity_id", entry.EntityID,
			"action", entry.Action,
			"error", err)
	}
}

// entityTypeFor maps an event type prefix to the audited entity.
func entityTypeFor(eventType string) string {
	if len(eventType) >= len("reimbursement") && eventType[:len("reimbursement")] == "reimbursement" {
		return "reimbursement"
	}
	return "transaction"
}

// RegisterSubscribers attaches the recorder to every domain event the
// services publish.
func RegisterSubscribers(bus *events.EventBus, recorder *Recorder) {
	types := []string{
		events.TransactionCreated,
		events.TransactionUpdated,
		events.TransactionStatusChanged,
		events.TransactionMarkedPaid,
		events.TransactionSubmitted,
		events.TransactionApproved,
		events.TransactionRejected,
		events.TransactionWithdrawn,
		events.TransactionDeleted,
		events.PaymentRecorded,
		events.ReimbursementCreated,
		events.ReimbursementApproved,
		events.ReimbursementRejected,
		events.ReimbursementFlagged,
		events.ReimbursementPaid,
		events.ReimbursementConverted,
	}

	handler := func(ctx context.Context, event events.Event) error {
		recorder.Record(ctx, entryFromEvent(event))
		return nil
	}

	for _, t := range types {
		bus.Subscribe(t, handler)
	}
}

func entryFromEvent(event events.Event) *Entry {
	entry := &Entry{
		EventID:    event.EventID(),
		EntityType: entityTypeFor(event.EventType()),
		Action:     event.EventType(),
		CreatedAt:  event.OccurredAt(),
	}

	data, ok := event.Payload().(map[string]interface{})
	if !ok {
		return entry
	}

	if v, ok := data["company_id"].(int64); ok {
		entry.CompanyID = v
	}
	if v, ok := data["actor_id"].(int64); ok {
		entry.ActorID = v
	}
	if v, ok := data["entity_id"].(int64); ok {
		entry.EntityID = v
	}
	if v, ok := data["from_status"].(string); ok {
		entry.FromStatus = v
	}
	if v, ok := data["to_status"].(string); ok {
		entry.ToStatus = v
	}
	if raw, err := json.Marshal(data); err == nil {
		entry.Details = string(raw)
	}

	return entry
}

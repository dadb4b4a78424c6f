package events

import (
	"time"

	"github.com/google/uuid"
)

// Event types published by the transaction and reimbursement services.
const (
	TransactionCreated       = "transaction.created"
	TransactionUpdated       = "transaction.updated"
	TransactionStatusChanged = "transaction.status_changed"
	TransactionMarkedPaid    = "transaction.marked_paid"
	TransactionSubmitted     = "transaction.submitted"
	TransactionApproved      = "transaction.approved"
	TransactionRejected      = "transaction.rejected"
	TransactionWithdrawn     = "transaction.withdrawn"
	TransactionDeleted       = "transaction.deleted"
	PaymentRecorded          = "transaction.payment_recorded"

	ReimbursementCreated   = "reimbursement.created"
	ReimbursementApproved  = "reimbursement.approved"
	ReimbursementRejected  = "reimbursement.rejected"
	ReimbursementFlagged   = "reimbursement.flagged"
	ReimbursementPaid      = "reimbursement.paid"
	ReimbursementConverted = "reimbursement.converted"
)

// NewDomainEvent builds a bus event for a state change on an entity.
// fromStatus/toStatus may be empty for non-transition actions.
func NewDomainEvent(eventType string, companyID, actorID, entityID int64, fromStatus, toStatus string, extra map[string]interface{}) BaseEvent {
	data := map[string]interface{}{
		"company_id": companyID,
		"actor_id":   actorID,
		"entity_id":  entityID,
	}
	if fromStatus != "" {
		data["from_status"] = fromStatus
	}
	if toStatus != "" {
		data["to_status"] = toStatus
	}
	for k, v := range extra {
		data[k] = v
	}

	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

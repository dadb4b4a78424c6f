package notification

import (
	"context"
	"log/slog"

	"github.com/nattapongw/banchee/internal/core/events"
)

// Kinds sent to the dispatcher. These are delivery categories, not
// event types; several events may collapse into one kind.
const (
	KindApprovalRequested = "approval_requested"
	KindApprovalDecided   = "approval_decided"
	KindPaymentRecorded   = "payment_recorded"
	KindDocumentReminder  = "document_reminder"
	KindReimbursement     = "reimbursement"
)

var eventKinds = map[string]string{
	events.TransactionSubmitted:  KindApprovalRequested,
	events.TransactionApproved:   KindApprovalDecided,
	events.TransactionRejected:   KindApprovalDecided,
	events.TransactionMarkedPaid: KindPaymentRecorded,
	events.PaymentRecorded:       KindPaymentRecorded,
	events.ReimbursementCreated:  KindReimbursement,
	events.ReimbursementApproved: KindReimbursement,
	events.ReimbursementRejected: KindReimbursement,
	events.ReimbursementFlagged:  KindReimbursement,
	events.ReimbursementPaid:     KindReimbursement,
}

// RegisterSubscribers wires the dispatcher to the events worth telling
// humans about. Failures are logged by the bus and dropped.
func RegisterSubscribers(bus *events.EventBus, dispatcher Dispatcher, logger *slog.Logger) {
	for eventType, kind := range eventKinds {
		k := kind
		bus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
			payload, _ := event.Payload().(map[string]interface{})
			companyID, _ := payload["company_id"].(int64)

			if err := dispatcher.Notify(ctx, companyID, k, payload); err != nil {
				logger.Warn("notification delivery failed",
					"kind", k,
					"event_type", event.EventType(),
					"error", err)
			}
			return nil
		})
	}
}

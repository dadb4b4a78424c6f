package transaction

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nattapongw/banchee/internal"
	"github.com/nattapongw/banchee/internal/approval"
	"github.com/nattapongw/banchee/internal/auth"
	"github.com/nattapongw/banchee/internal/core/events"
	"github.com/nattapongw/banchee/internal/tax"
	"github.com/nattapongw/banchee/internal/workflow"
)

// Repository defines the data access methods for transactions. All
// lookups are tenant-scoped; soft-deleted rows are never returned.
type Repository interface {
	Create(ctx context.Context, txn *Transaction) error
	GetByID(ctx context.Context, companyID, id int64) (*Transaction, error)
	List(ctx context.Context, companyID int64, filter ListFilter) ([]*Transaction, error)
	Update(ctx context.Context, txn *Transaction) error
	// UpdateStatusWhere is the optimistic-concurrency write: it only
	// succeeds when the row still holds the expected status.
	UpdateStatusWhere(ctx context.Context, companyID, id int64, expected, next workflow.Status) error
	SoftDelete(ctx context.Context, companyID, id int64) error
}

type PaymentRepository interface {
	Create(ctx context.Context, p *Payment) error
	Exists(ctx context.Context, transactionID int64, paidByType string, paidByUserID int64) (bool, error)
	ListByTransaction(ctx context.Context, companyID, transactionID int64) ([]*Payment, error)
}

type Service struct {
	repo              Repository
	payments          PaymentRepository
	bus               *events.EventBus
	logger            *slog.Logger
	approvalThreshold decimal.Decimal
}

func NewService(repo Repository, payments PaymentRepository, bus *events.EventBus, logger *slog.Logger, approvalThreshold decimal.Decimal) *Service {
	return &Service{
		repo:              repo,
		payments:          payments,
		bus:               bus,
		logger:            logger,
		approvalThreshold: approvalThreshold,
	}
}

// publish emits a domain event detached from the request lifetime so a
// cancelled request cannot abort the side effects.
func (s *Service) publish(ctx context.Context, eventType string, txn *Transaction, actorID int64, from, to workflow.Status, extra map[string]interface{}) {
	event := events.NewDomainEvent(eventType, txn.CompanyID, actorID, txn.ID, string(from), string(to), extra)
	if err := s.bus.Publish(context.WithoutCancel(ctx), event); err != nil {
		s.logger.Error("failed to publish event", "event_type", eventType, "transaction_id", txn.ID, "error", err)
	}
}

// Create validates the tax inputs, recomputes the derived amounts and
// persists a DRAFT record. Amounts at or above the company threshold
// start in the pending approval queue.
func (s *Service) Create(ctx context.Context, actor auth.Actor, dto CreateTransactionDTO) (*Transaction, error) {
	if !actor.HasPermission(auth.PermTransactionsCreate) {
		return nil, internal.ErrForbidden
	}
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	breakdown, err := tax.Compute(dto.Amount, dto.VATRate, dto.WHTRate)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	txn := &Transaction{
		CompanyID:           actor.CompanyID,
		Direction:           dto.Direction,
		Description:         dto.Description,
		ContactName:         dto.ContactName,
		TransactionDate:     dto.TransactionDate,
		Amount:              dto.Amount,
		VATRate:             dto.VATRate,
		VATAmount:           breakdown.VATAmount,
		IsWHTApplied:        dto.IsWHTApplied,
		WHTRate:             dto.WHTRate,
		WHTType:             dto.WHTType,
		WHTAmount:           breakdown.WHTAmount,
		NetAmount:           breakdown.NetAmount,
		DocumentType:        dto.DocumentType,
		HasRequiredDocument: dto.HasRequiredDocument,
		WorkflowStatus:      workflow.StatusDraft,
		State:               approval.State{Status: approval.StatusNotRequired},
		SlipAttachments:     dto.SlipAttachments,
		DocumentAttachments: dto.DocumentAttachments,
		CreatedBy:           actor.UserID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if s.approvalThreshold.IsPositive() && dto.Amount.GreaterThanOrEqual(s.approvalThreshold) {
		if err := txn.State.Submit(actor.UserID, now); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Create(ctx, txn); err != nil {
		s.logger.Error("failed to create transaction", "error", err, "company_id", actor.CompanyID)
		return nil, internal.NewInternalError("failed to create transaction", err)
	}

	s.logger.Info("transaction created",
		"transaction_id", txn.ID,
		"company_id", txn.CompanyID,
		"direction", txn.Direction,
		"amount", txn.Amount,
		"approval_status", txn.State.Status)

	s.publish(ctx, events.TransactionCreated, txn, actor.UserID, "", txn.WorkflowStatus, map[string]interface{}{
		"amount":     txn.Amount.String(),
		"net_amount": txn.NetAmount.String(),
		"direction":  string(txn.Direction),
	})

	return txn, nil
}

func (s *Service) GetByID(ctx context.Context, actor auth.Actor, id int64) (*Transaction, error) {
	if !actor.HasPermission(auth.PermTransactionsRead) {
		return nil, internal.ErrForbidden
	}
	return s.repo.GetByID(ctx, actor.CompanyID, id)
}

func (s *Service) List(ctx context.Context, actor auth.Actor, filter ListFilter) ([]*Transaction, error) {
	if !actor.HasPermission(auth.PermTransactionsRead) {
		return nil, internal.ErrForbidden
	}
	filter.Normalize()
	return s.repo.List(ctx, actor.CompanyID, filter)
}

// Update applies a patch. Any change to the tax inputs recomputes the
// derived amounts; client-supplied derived values are never trusted. A
// direct workflow status edit is audited as a status change.
func (s *Service) Update(ctx context.Context, actor auth.Actor, id int64, dto UpdateTransactionDTO) (*Transaction, error) {
	if !actor.HasPermission(auth.PermTransactionsUpdate) {
		return nil, internal.ErrForbidden
	}
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	txn, err := s.repo.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	apply := func(field string, from, to interface{}, set func()) {
		changes[field] = map[string]interface{}{"from": from, "to": to}
		set()
	}

	if dto.Description != nil && *dto.Description != txn.Description {
		apply("description", txn.Description, *dto.Description, func() { txn.Description = *dto.Description })
	}
	if dto.ContactName != nil && *dto.ContactName != txn.ContactName {
		apply("contact_name", txn.ContactName, *dto.ContactName, func() { txn.ContactName = *dto.ContactName })
	}
	if dto.TransactionDate != nil && !dto.TransactionDate.Equal(txn.TransactionDate) {
		apply("transaction_date", txn.TransactionDate, *dto.TransactionDate, func() { txn.TransactionDate = *dto.TransactionDate })
	}
	if dto.Amount != nil && !dto.Amount.Equal(txn.Amount) {
		apply("amount", txn.Amount.String(), dto.Amount.String(), func() { txn.Amount = *dto.Amount })
	}
	if dto.VATRate != nil && !dto.VATRate.Equal(txn.VATRate) {
		apply("vat_rate", txn.VATRate.String(), dto.VATRate.String(), func() { txn.VATRate = *dto.VATRate })
	}
	if dto.IsWHTApplied != nil && *dto.IsWHTApplied != txn.IsWHTApplied {
		apply("is_wht_applied", txn.IsWHTApplied, *dto.IsWHTApplied, func() { txn.IsWHTApplied = *dto.IsWHTApplied })
	}
	if dto.WHTRate != nil && !dto.WHTRate.Equal(txn.WHTRate) {
		apply("wht_rate", txn.WHTRate.String(), dto.WHTRate.String(), func() { txn.WHTRate = *dto.WHTRate })
	}
	if dto.WHTType != nil && *dto.WHTType != txn.WHTType {
		apply("wht_type", txn.WHTType, *dto.WHTType, func() { txn.WHTType = *dto.WHTType })
	}
	if dto.DocumentType != nil && *dto.DocumentType != txn.DocumentType {
		apply("document_type", txn.DocumentType, *dto.DocumentType, func() { txn.DocumentType = *dto.DocumentType })
	}
	if dto.HasRequiredDocument != nil && *dto.HasRequiredDocument != txn.HasRequiredDocument {
		apply("has_required_document", txn.HasRequiredDocument, *dto.HasRequiredDocument, func() { txn.HasRequiredDocument = *dto.HasRequiredDocument })
	}
	if dto.SlipAttachments != nil {
		txn.SlipAttachments = *dto.SlipAttachments
	}
	if dto.DocumentAttachments != nil {
		txn.DocumentAttachments = *dto.DocumentAttachments
	}
	if dto.WHTCertAttachments != nil {
		txn.WHTCertAttachments = *dto.WHTCertAttachments
	}

	// The patched record must satisfy the same WHT consistency rule as
	// a freshly created one; the fields may arrive in separate patches.
	if txn.IsWHTApplied {
		if !txn.WHTRate.IsPositive() {
			return nil, internal.NewValidationError("wht rate must be greater than 0 when wht is applied", internal.ErrCodeValidationFailed)
		}
		if !tax.ValidWHTType(txn.WHTType) {
			return nil, internal.NewValidationError("wht type must be one of service, rent, transport, advertising, other", internal.ErrCodeValidationFailed)
		}
	}

	if dto.touchesTax() {
		if !txn.IsWHTApplied {
			txn.WHTRate = decimal.Zero
			txn.WHTType = ""
		}
		breakdown, err := tax.Compute(txn.Amount, txn.VATRate, txn.WHTRate)
		if err != nil {
			return nil, err
		}
		txn.VATAmount = breakdown.VATAmount
		txn.WHTAmount = breakdown.WHTAmount
		txn.NetAmount = breakdown.NetAmount
	}

	var statusFrom workflow.Status
	statusChanged := dto.WorkflowStatus != nil && *dto.WorkflowStatus != txn.WorkflowStatus
	if statusChanged {
		statusFrom = txn.WorkflowStatus
		txn.WorkflowStatus = *dto.WorkflowStatus
	}

	txn.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, txn); err != nil {
		s.logger.Error("failed to update transaction", "error", err, "transaction_id", id)
		return nil, internal.NewInternalError("failed to update transaction", err)
	}

	if statusChanged {
		s.publish(ctx, events.TransactionStatusChanged, txn, actor.UserID, statusFrom, txn.WorkflowStatus, map[string]interface{}{
			"direct_edit": true,
		})
	} else {
		s.publish(ctx, events.TransactionUpdated, txn, actor.UserID, "", "", map[string]interface{}{
			"changes": changes,
		})
	}

	return txn, nil
}

func (s *Service) Delete(ctx context.Context, actor auth.Actor, id int64) error {
	if !actor.HasPermission(auth.PermTransactionsDelete) {
		return internal.ErrForbidden
	}

	txn, err := s.repo.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return err
	}

	if err := s.repo.SoftDelete(ctx, actor.CompanyID, id); err != nil {
		s.logger.Error("failed to delete transaction", "error", err, "transaction_id", id)
		return internal.NewInternalError("failed to delete transaction", err)
	}

	s.publish(ctx, events.TransactionDeleted, txn, actor.UserID, txn.WorkflowStatus, "", nil)
	return nil
}

// MarkPaidOrReceived is the workflow entry point out of DRAFT. The
// approval gate runs first; the conditional status write then protects
// against a concurrent transition on the same row.
func (s *Service) MarkPaidOrReceived(ctx context.Context, actor auth.Actor, id int64) (*Transaction, error) {
	if !actor.HasPermission(auth.PermTransactionsPay) {
		return nil, internal.ErrForbidden
	}

	txn, err := s.repo.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}

	if err := approval.GatePayment(txn.State.Status); err != nil {
		return nil, err
	}

	trigger := workflow.PaymentTrigger(txn.Direction)
	next, err := workflow.Apply(txn.Direction, txn.WorkflowStatus, trigger, txn.Flags())
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatusWhere(ctx, actor.CompanyID, txn.ID, txn.WorkflowStatus, next); err != nil {
		return nil, err
	}

	from := txn.WorkflowStatus
	txn.WorkflowStatus = next

	s.logger.Info("transaction marked paid/received",
		"transaction_id", txn.ID,
		"from_status", from,
		"to_status", next)

	s.publish(ctx, events.TransactionMarkedPaid, txn, actor.UserID, from, next, nil)
	return txn, nil
}

func (s *Service) applyTrigger(ctx context.Context, actor auth.Actor, id int64, trigger workflow.Trigger, perm auth.Permission) (*Transaction, error) {
	if !actor.HasPermission(perm) {
		return nil, internal.ErrForbidden
	}

	txn, err := s.repo.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}

	next, err := workflow.Apply(txn.Direction, txn.WorkflowStatus, trigger, txn.Flags())
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatusWhere(ctx, actor.CompanyID, txn.ID, txn.WorkflowStatus, next); err != nil {
		return nil, err
	}

	from := txn.WorkflowStatus
	txn.WorkflowStatus = next

	s.publish(ctx, events.TransactionStatusChanged, txn, actor.UserID, from, next, map[string]interface{}{
		"trigger": string(trigger),
	})
	return txn, nil
}

// DocumentReceived records the counter-document on the expense side.
// The gate is attachment existence, not content.
func (s *Service) DocumentReceived(ctx context.Context, actor auth.Actor, id int64) (*Transaction, error) {
	if !actor.HasPermission(auth.PermTransactionsUpdate) {
		return nil, internal.ErrForbidden
	}

	current, err := s.repo.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if len(current.DocumentAttachments) == 0 {
		return nil, internal.NewValidationError("document attachment is required", internal.ErrCodeValidationFailed)
	}

	if _, err := workflow.Apply(current.Direction, current.WorkflowStatus, workflow.TriggerDocumentReceived, current.Flags()); err != nil {
		return nil, err
	}

	// The flag is persisted before the transition: if the conditional
	// status write then loses a race, the record is only marked as
	// holding its document, which the attachment check just verified.
	if !current.HasRequiredDocument {
		current.HasRequiredDocument = true
		current.UpdatedAt = time.Now()
		if err := s.repo.Update(ctx, current); err != nil {
			return nil, internal.NewInternalError("failed to update transaction", err)
		}
	}

	return s.applyTrigger(ctx, actor, id, workflow.TriggerDocumentReceived, auth.PermTransactionsUpdate)
}

func (s *Service) WHTIssued(ctx context.Context, actor auth.Actor, id int64) (*Transaction, error) {
	return s.applyTrigger(ctx, actor, id, workflow.TriggerWHTIssued, auth.PermTransactionsUpdate)
}

func (s *Service) WHTSent(ctx context.Context, actor auth.Actor, id int64) (*Transaction, error) {
	return s.applyTrigger(ctx, actor, id, workflow.TriggerWHTSent, auth.PermTransactionsUpdate)
}

// InvoiceIssued records the company-issued invoice on the income side.
// No attachment gate here: the company produces this document itself,
// so the action is the evidence.
func (s *Service) InvoiceIssued(ctx context.Context, actor auth.Actor, id int64) (*Transaction, error) {
	if !actor.HasPermission(auth.PermTransactionsUpdate) {
		return nil, internal.ErrForbidden
	}

	current, err := s.repo.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}

	if _, err := workflow.Apply(current.Direction, current.WorkflowStatus, workflow.TriggerInvoiceIssued, current.Flags()); err != nil {
		return nil, err
	}

	if !current.HasRequiredDocument {
		current.HasRequiredDocument = true
		current.UpdatedAt = time.Now()
		if err := s.repo.Update(ctx, current); err != nil {
			return nil, internal.NewInternalError("failed to update transaction", err)
		}
	}

	return s.applyTrigger(ctx, actor, id, workflow.TriggerInvoiceIssued, auth.PermTransactionsUpdate)
}

func (s *Service) WHTCertReceived(ctx context.Context, actor auth.Actor, id int64) (*Transaction, error) {
	return s.applyTrigger(ctx, actor, id, workflow.TriggerWHTCertReceived, auth.PermTransactionsUpdate)
}

// Proceed advances out of an intermediate document state once the user
// confirms the paperwork is done.
func (s *Service) Proceed(ctx context.Context, actor auth.Actor, id int64) (*Transaction, error) {
	return s.applyTrigger(ctx, actor, id, workflow.TriggerProceed, auth.PermTransactionsUpdate)
}

func (s *Service) SendToAccountant(ctx context.Context, actor auth.Actor, id int64) (*Transaction, error) {
	return s.applyTrigger(ctx, actor, id, workflow.TriggerSend, auth.PermTransactionsSend)
}

func (s *Service) Confirm(ctx context.Context, actor auth.Actor, id int64) (*Transaction, error) {
	return s.applyTrigger(ctx, actor, id, workflow.TriggerConfirm, auth.PermTransactionsSend)
}

func (s *Service) Submit(ctx context.Context, actor auth.Actor, id int64) (*Transaction, error) {
	if !actor.HasPermission(auth.PermTransactionsUpdate) {
		return nil, internal.ErrForbidden
	}

	txn, err := s.repo.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}

	if err := txn.State.Submit(actor.UserID, time.Now()); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, txn); err != nil {
		return nil, internal.NewInternalError("failed to update transaction", err)
	}

	s.publish(ctx, events.TransactionSubmitted, txn, actor.UserID, "", "", nil)
	return txn, nil
}

func (s *Service) Approve(ctx context.Context, actor auth.Actor, id int64) (*Transaction, error) {
	if !actor.HasPermission(auth.PermTransactionsApprove) {
		return nil, internal.ErrForbidden
	}
	return s.approveOne(ctx, actor, id)
}

func (s *Service) approveOne(ctx context.Context, actor auth.Actor, id int64) (*Transaction, error) {
	txn, err := s.repo.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}

	if err := txn.State.Approve(actor.UserID, time.Now()); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, txn); err != nil {
		return nil, internal.NewInternalError("failed to update transaction", err)
	}

	s.logger.Info("transaction approved", "transaction_id", txn.ID, "approved_by", actor.UserID)
	s.publish(ctx, events.TransactionApproved, txn, actor.UserID, "", "", nil)
	return txn, nil
}

func (s *Service) Reject(ctx context.Context, actor auth.Actor, id int64, reason string) (*Transaction, error) {
	if !actor.HasPermission(auth.PermTransactionsApprove) {
		return nil, internal.ErrForbidden
	}
	return s.rejectOne(ctx, actor, id, reason)
}

func (s *Service) rejectOne(ctx context.Context, actor auth.Actor, id int64, reason string) (*Transaction, error) {
	txn, err := s.repo.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}

	if err := txn.State.Reject(actor.UserID, reason, time.Now()); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, txn); err != nil {
		return nil, internal.NewInternalError("failed to update transaction", err)
	}

	s.logger.Info("transaction rejected", "transaction_id", txn.ID, "rejected_by", actor.UserID, "reason", reason)
	s.publish(ctx, events.TransactionRejected, txn, actor.UserID, "", "", map[string]interface{}{
		"reason": reason,
	})
	return txn, nil
}

func (s *Service) Withdraw(ctx context.Context, actor auth.Actor, id int64) (*Transaction, error) {
	if !actor.HasPermission(auth.PermTransactionsUpdate) {
		return nil, internal.ErrForbidden
	}

	txn, err := s.repo.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}

	if err := txn.State.Withdraw(actor.UserID, txn.CreatedBy); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, txn); err != nil {
		return nil, internal.NewInternalError("failed to update transaction", err)
	}

	s.publish(ctx, events.TransactionWithdrawn, txn, actor.UserID, "", "", nil)
	return txn, nil
}

// BatchApprove applies per item; one bad item never aborts the rest.
func (s *Service) BatchApprove(ctx context.Context, actor auth.Actor, ids []int64) ([]approval.BatchResult, error) {
	if !actor.HasPermission(auth.PermTransactionsApprove) {
		return nil, internal.ErrForbidden
	}

	results := make([]approval.BatchResult, 0, len(ids))
	for _, id := range ids {
		_, err := s.approveOne(ctx, actor, id)
		results = append(results, batchResult(id, err))
	}
	return results, nil
}

func (s *Service) BatchReject(ctx context.Context, actor auth.Actor, ids []int64, reason string) ([]approval.BatchResult, error) {
	if !actor.HasPermission(auth.PermTransactionsApprove) {
		return nil, internal.ErrForbidden
	}
	if reason == "" {
		return nil, internal.ErrReasonRequired
	}

	results := make([]approval.BatchResult, 0, len(ids))
	for _, id := range ids {
		_, err := s.rejectOne(ctx, actor, id, reason)
		results = append(results, batchResult(id, err))
	}
	return results, nil
}

func batchResult(id int64, err error) approval.BatchResult {
	if err != nil {
		return approval.BatchResult{ID: id, Success: false, Error: err.Error()}
	}
	return approval.BatchResult{ID: id, Success: true}
}

// AddPayment records who funded an expense. Duplicate rows for the
// same payer are rejected before the insert so the unique index is the
// backstop, not the primary defense.
func (s *Service) AddPayment(ctx context.Context, actor auth.Actor, id int64, dto AddPaymentDTO) (*Payment, error) {
	if !actor.HasPermission(auth.PermTransactionsPay) {
		return nil, internal.ErrForbidden
	}
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	txn, err := s.repo.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if txn.Direction != workflow.DirectionExpense {
		return nil, internal.NewValidationError("payments apply to expense transactions only", internal.ErrCodeValidationFailed)
	}

	var paidByUserID int64
	if dto.PaidByUserID != nil {
		paidByUserID = *dto.PaidByUserID
	}

	exists, err := s.payments.Exists(ctx, txn.ID, dto.PaidByType, paidByUserID)
	if err != nil {
		return nil, internal.NewInternalError("failed to check existing payments", err)
	}
	if exists {
		return nil, internal.ErrDuplicatePayment
	}

	paidAt := dto.PaidAt
	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	payment := &Payment{
		TransactionID:    txn.ID,
		CompanyID:        txn.CompanyID,
		PaidByType:       dto.PaidByType,
		PaidByUserID:     paidByUserID,
		AmountPaid:       dto.AmountPaid,
		SettlementStatus: SettlementPending,
		PaidAt:           paidAt,
		CreatedAt:        time.Now(),
	}

	if err := s.payments.Create(ctx, payment); err != nil {
		// A concurrent insert can slip past the existence check; the
		// unique index reports it as the duplicate-payment error.
		if errors.Is(err, internal.ErrDuplicatePayment) {
			return nil, internal.ErrDuplicatePayment
		}
		s.logger.Error("failed to record payment", "error", err, "transaction_id", txn.ID)
		return nil, internal.NewInternalError("failed to record payment", err)
	}

	s.publish(ctx, events.PaymentRecorded, txn, actor.UserID, "", "", map[string]interface{}{
		"payment_id":   payment.ID,
		"paid_by_type": payment.PaidByType,
		"amount_paid":  payment.AmountPaid.String(),
	})
	return payment, nil
}

// BookConvertedExpense creates an expense together with a settled
// COMPANY payment in one step. The reimbursement conversion uses it so
// payment writes stay inside this package.
func (s *Service) BookConvertedExpense(ctx context.Context, actor auth.Actor, dto CreateTransactionDTO) (*Transaction, error) {
	txn, err := s.Create(ctx, actor, dto)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	payment := &Payment{
		TransactionID:    txn.ID,
		CompanyID:        txn.CompanyID,
		PaidByType:       PaidByCompany,
		AmountPaid:       txn.NetAmount,
		SettlementStatus: SettlementSettled,
		PaidAt:           now,
		CreatedAt:        now,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		if errors.Is(err, internal.ErrDuplicatePayment) {
			return nil, internal.ErrDuplicatePayment
		}
		s.logger.Error("failed to record settled payment for converted expense", "error", err, "transaction_id", txn.ID)
		return nil, internal.NewInternalError("failed to record payment", err)
	}

	s.publish(ctx, events.PaymentRecorded, txn, actor.UserID, "", "", map[string]interface{}{
		"payment_id":   payment.ID,
		"paid_by_type": payment.PaidByType,
		"amount_paid":  payment.AmountPaid.String(),
		"converted":    true,
	})
	return txn, nil
}

func (s *Service) ListPayments(ctx context.Context, actor auth.Actor, id int64) ([]*Payment, error) {
	if !actor.HasPermission(auth.PermTransactionsRead) {
		return nil, internal.ErrForbidden
	}

	if _, err := s.repo.GetByID(ctx, actor.CompanyID, id); err != nil {
		return nil, err
	}
	return s.payments.ListByTransaction(ctx, actor.CompanyID, id)
}

package reimbursement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nattapongw/banchee/internal"
	"github.com/nattapongw/banchee/internal/auth"
	"github.com/nattapongw/banchee/internal/core/events"
	"github.com/nattapongw/banchee/internal/tax"
	"github.com/nattapongw/banchee/internal/transaction"
	"github.com/nattapongw/banchee/internal/workflow"
)

type Repository interface {
	Create(ctx context.Context, r *Reimbursement) error
	GetByID(ctx context.Context, companyID, id int64) (*Reimbursement, error)
	List(ctx context.Context, companyID int64, filter ListFilter) ([]*Reimbursement, error)
	Update(ctx context.Context, r *Reimbursement) error
}

// ExpenseBooker is the one-way door into the company books. The
// transaction package implements it so payment writes stay there.
type ExpenseBooker interface {
	BookConvertedExpense(ctx context.Context, actor auth.Actor, dto transaction.CreateTransactionDTO) (*transaction.Transaction, error)
}

type Service struct {
	repo     Repository
	expenses ExpenseBooker
	bus      *events.EventBus
	logger   *slog.Logger
}

func NewService(repo Repository, expenses ExpenseBooker, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		expenses: expenses,
		bus:      bus,
		logger:   logger,
	}
}

func (s *Service) publish(ctx context.Context, eventType string, claim *Reimbursement, actorID int64, extra map[string]interface{}) {
	event := events.NewDomainEvent(eventType, claim.CompanyID, actorID, claim.ID, "", claim.Status, extra)
	if err := s.bus.Publish(context.WithoutCancel(ctx), event); err != nil {
		s.logger.Error("failed to publish event", "event_type", eventType, "reimbursement_id", claim.ID, "error", err)
	}
}

func (s *Service) Create(ctx context.Context, actor auth.Actor, dto CreateReimbursementDTO) (*Reimbursement, error) {
	if !actor.HasPermission(auth.PermReimbursementsCreate) {
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
	claim := &Reimbursement{
		CompanyID:          actor.CompanyID,
		RequesterID:        actor.UserID,
		Description:        dto.Description,
		ClaimDate:          dto.ClaimDate,
		Amount:             dto.Amount,
		VATRate:            dto.VATRate,
		VATAmount:          breakdown.VATAmount,
		IsWHTApplied:       dto.IsWHTApplied,
		WHTRate:            dto.WHTRate,
		WHTType:            dto.WHTType,
		WHTAmount:          breakdown.WHTAmount,
		NetAmount:          breakdown.NetAmount,
		Status:             StatusPending,
		ReceiptAttachments: dto.ReceiptAttachments,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Create(ctx, claim); err != nil {
		s.logger.Error("failed to create reimbursement", "error", err, "company_id", actor.CompanyID)
		return nil, internal.NewInternalError("failed to create reimbursement", err)
	}

	s.logger.Info("reimbursement created",
		"reimbursement_id", claim.ID,
		"requester_id", claim.RequesterID,
		"net_amount", claim.NetAmount)

	s.publish(ctx, events.ReimbursementCreated, claim, actor.UserID, map[string]interface{}{
		"net_amount": claim.NetAmount.String(),
	})
	return claim, nil
}

func (s *Service) GetByID(ctx context.Context, actor auth.Actor, id int64) (*Reimbursement, error) {
	if !actor.HasPermission(auth.PermReimbursementsRead) {
		return nil, internal.ErrForbidden
	}
	return s.repo.GetByID(ctx, actor.CompanyID, id)
}

func (s *Service) List(ctx context.Context, actor auth.Actor, filter ListFilter) ([]*Reimbursement, error) {
	if !actor.HasPermission(auth.PermReimbursementsRead) {
		return nil, internal.ErrForbidden
	}
	filter.Normalize()
	return s.repo.List(ctx, actor.CompanyID, filter)
}

func (s *Service) Approve(ctx context.Context, actor auth.Actor, id int64) (*Reimbursement, error) {
	if !actor.HasPermission(auth.PermReimbursementsApprove) {
		return nil, internal.ErrForbidden
	}

	claim, err := s.repo.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}

	if err := claim.Approve(actor.UserID, time.Now()); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, claim); err != nil {
		return nil, internal.NewInternalError("failed to update reimbursement", err)
	}

	s.publish(ctx, events.ReimbursementApproved, claim, actor.UserID, nil)
	return claim, nil
}

func (s *Service) Reject(ctx context.Context, actor auth.Actor, id int64, reason string) (*Reimbursement, error) {
	if !actor.HasPermission(auth.PermReimbursementsApprove) {
		return nil, internal.ErrForbidden
	}

	claim, err := s.repo.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}

	if err := claim.Reject(actor.UserID, reason, time.Now()); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, claim); err != nil {
		return nil, internal.NewInternalError("failed to update reimbursement", err)
	}

	s.publish(ctx, events.ReimbursementRejected, claim, actor.UserID, map[string]interface{}{
		"reason": reason,
	})
	return claim, nil
}

// Flag parks a suspicious claim for a second look instead of deciding
// it outright.
func (s *Service) Flag(ctx context.Context, actor auth.Actor, id int64, reason string) (*Reimbursement, error) {
	if !actor.HasPermission(auth.PermReimbursementsApprove) {
		return nil, internal.ErrForbidden
	}

	claim, err := s.repo.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}

	if err := claim.Flag(reason, time.Now()); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, claim); err != nil {
		return nil, internal.NewInternalError("failed to update reimbursement", err)
	}

	s.publish(ctx, events.ReimbursementFlagged, claim, actor.UserID, map[string]interface{}{
		"reason": reason,
	})
	return claim, nil
}

func (s *Service) Pay(ctx context.Context, actor auth.Actor, id int64, dto PayReimbursementDTO) (*Reimbursement, error) {
	if !actor.HasPermission(auth.PermReimbursementsPay) {
		return nil, internal.ErrForbidden
	}

	claim, err := s.repo.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}

	if err := claim.Pay(actor.UserID, dto.PaymentRef, time.Now()); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, claim); err != nil {
		return nil, internal.NewInternalError("failed to update reimbursement", err)
	}

	s.logger.Info("reimbursement paid",
		"reimbursement_id", claim.ID,
		"paid_by", actor.UserID,
		"net_amount", claim.NetAmount)

	s.publish(ctx, events.ReimbursementPaid, claim, actor.UserID, map[string]interface{}{
		"payment_ref": dto.PaymentRef,
	})
	return claim, nil
}

// Convert aggregates paid claims by one requester into a single
// company expense with a settled COMPANY payment. The claims are
// marked consumed so they cannot be booked twice.
func (s *Service) Convert(ctx context.Context, actor auth.Actor, dto ConvertDTO) (*transaction.Transaction, error) {
	if !actor.HasPermission(auth.PermReimbursementsPay) {
		return nil, internal.ErrForbidden
	}
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	claims := make([]*Reimbursement, 0, len(dto.IDs))
	total := decimal.Zero
	var requesterID int64

	for _, id := range dto.IDs {
		claim, err := s.repo.GetByID(ctx, actor.CompanyID, id)
		if err != nil {
			return nil, err
		}
		if !claim.Convertible() {
			return nil, internal.NewConflictError(
				"สามารถรวมได้เฉพาะรายการที่จ่ายแล้วและยังไม่ถูกบันทึกเป็นค่าใช้จ่าย",
				internal.ErrCodeIllegalTransition,
			).WithDetails(map[string]interface{}{"reimbursement_id": claim.ID, "status": claim.Status})
		}
		if requesterID == 0 {
			requesterID = claim.RequesterID
		} else if claim.RequesterID != requesterID {
			return nil, internal.NewValidationError("claims must belong to the same requester", internal.ErrCodeValidationFailed)
		}
		total = total.Add(claim.NetAmount)
		claims = append(claims, claim)
	}

	description := dto.Description
	if description == "" {
		description = fmt.Sprintf("เบิกคืนพนักงาน %d รายการ", len(claims))
	}

	// The claim amounts already carry their own VAT/WHT; the aggregated
	// expense books the settled cash total without re-taxing it.
	expense, err := s.expenses.BookConvertedExpense(ctx, actor, transaction.CreateTransactionDTO{
		Direction:           workflow.DirectionExpense,
		Description:         description,
		TransactionDate:     time.Now(),
		Amount:              total,
		VATRate:             decimal.Zero,
		DocumentType:        workflow.DocumentCashReceipt,
		HasRequiredDocument: true,
	})
	if err != nil {
		return nil, err
	}

	for _, claim := range claims {
		claim.ConvertedExpenseID = &expense.ID
		claim.UpdatedAt = time.Now()
		if err := s.repo.Update(ctx, claim); err != nil {
			s.logger.Error("failed to mark reimbursement converted",
				"error", err,
				"reimbursement_id", claim.ID,
				"expense_id", expense.ID)
			return nil, internal.NewInternalError("failed to mark reimbursement converted", err)
		}
		s.publish(ctx, events.ReimbursementConverted, claim, actor.UserID, map[string]interface{}{
			"expense_id": expense.ID,
		})
	}

	s.logger.Info("reimbursements converted to expense",
		"expense_id", expense.ID,
		"claims", len(claims),
		"total", total)

	return expense, nil
}

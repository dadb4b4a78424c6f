package transaction

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nattapongw/banchee/internal/tax"
	"github.com/nattapongw/banchee/internal/workflow"
)

// CreateTransactionDTO carries the client input for a new record. The
// derived tax amounts are intentionally absent; they are always
// recomputed server-side.
type CreateTransactionDTO struct {
	Direction           workflow.Direction `json:"direction" validate:"required,oneof=expense income"`
	Description         string             `json:"description" validate:"required,max=500"`
	ContactName         string             `json:"contact_name,omitempty"`
	TransactionDate     time.Time          `json:"transaction_date" validate:"required"`
	Amount              decimal.Decimal    `json:"amount" validate:"required"`
	VATRate             decimal.Decimal    `json:"vat_rate"`
	IsWHTApplied        bool               `json:"is_wht_applied"`
	WHTRate             decimal.Decimal    `json:"wht_rate"`
	WHTType             string             `json:"wht_type,omitempty"`
	DocumentType        string             `json:"document_type" validate:"required"`
	HasRequiredDocument bool               `json:"has_required_document"`
	SlipAttachments     AttachmentList     `json:"slip_attachments,omitempty"`
	DocumentAttachments AttachmentList     `json:"document_attachments,omitempty"`
}

func (dto CreateTransactionDTO) Validate() error {
	if dto.Direction != workflow.DirectionExpense && dto.Direction != workflow.DirectionIncome {
		return errors.New("direction must be expense or income")
	}
	if dto.Description == "" {
		return errors.New("description is required")
	}
	if len(dto.Description) > 500 {
		return errors.New("description must be less than 500 characters")
	}
	if dto.TransactionDate.IsZero() {
		return errors.New("transaction date is required")
	}
	if dto.Amount.IsNegative() {
		return errors.New("amount must not be negative")
	}
	switch dto.DocumentType {
	case workflow.DocumentTaxInvoice, workflow.DocumentCashReceipt, workflow.DocumentNone:
	default:
		return errors.New("document type must be tax_invoice, cash_receipt or no_document")
	}
	if dto.IsWHTApplied {
		if !dto.WHTRate.IsPositive() {
			return errors.New("wht rate must be greater than 0 when wht is applied")
		}
		if !tax.ValidWHTType(dto.WHTType) {
			return errors.New("wht type must be one of service, rent, transport, advertising, other")
		}
	} else if !dto.WHTRate.IsZero() {
		return errors.New("wht rate must be 0 when wht is not applied")
	}
	return nil
}

// UpdateTransactionDTO is a patch; nil fields are left untouched. A
// non-nil WorkflowStatus is a direct status edit and is audited as a
// status change rather than a plain update.
type UpdateTransactionDTO struct {
	Description         *string          `json:"description,omitempty"`
	ContactName         *string          `json:"contact_name,omitempty"`
	TransactionDate     *time.Time       `json:"transaction_date,omitempty"`
	Amount              *decimal.Decimal `json:"amount,omitempty"`
	VATRate             *decimal.Decimal `json:"vat_rate,omitempty"`
	IsWHTApplied        *bool            `json:"is_wht_applied,omitempty"`
	WHTRate             *decimal.Decimal `json:"wht_rate,omitempty"`
	WHTType             *string          `json:"wht_type,omitempty"`
	DocumentType        *string          `json:"document_type,omitempty"`
	HasRequiredDocument *bool            `json:"has_required_document,omitempty"`
	WorkflowStatus      *workflow.Status `json:"workflow_status,omitempty"`
	SlipAttachments     *AttachmentList  `json:"slip_attachments,omitempty"`
	DocumentAttachments *AttachmentList  `json:"document_attachments,omitempty"`
	WHTCertAttachments  *AttachmentList  `json:"wht_cert_attachments,omitempty"`
}

func (dto UpdateTransactionDTO) Validate() error {
	if dto.Description != nil && *dto.Description == "" {
		return errors.New("description cannot be empty")
	}
	if dto.Amount != nil && dto.Amount.IsNegative() {
		return errors.New("amount must not be negative")
	}
	if dto.DocumentType != nil {
		switch *dto.DocumentType {
		case workflow.DocumentTaxInvoice, workflow.DocumentCashReceipt, workflow.DocumentNone:
		default:
			return errors.New("document type must be tax_invoice, cash_receipt or no_document")
		}
	}
	if dto.WHTType != nil && *dto.WHTType != "" && !tax.ValidWHTType(*dto.WHTType) {
		return errors.New("wht type must be one of service, rent, transport, advertising, other")
	}
	return nil
}

// touchesTax reports whether the patch changes any tax input, which
// forces a recompute of the derived amounts.
func (dto UpdateTransactionDTO) touchesTax() bool {
	return dto.Amount != nil || dto.VATRate != nil || dto.IsWHTApplied != nil || dto.WHTRate != nil
}

type RejectTransactionDTO struct {
	Reason string `json:"reason" validate:"required"`
}

func (dto RejectTransactionDTO) Validate() error {
	if dto.Reason == "" {
		return errors.New("reason is required when rejecting")
	}
	return nil
}

type BatchApproveDTO struct {
	IDs []int64 `json:"ids" validate:"required,min=1"`
}

func (dto BatchApproveDTO) Validate() error {
	if len(dto.IDs) == 0 {
		return errors.New("ids is required")
	}
	return nil
}

type BatchRejectDTO struct {
	IDs    []int64 `json:"ids" validate:"required,min=1"`
	Reason string  `json:"reason" validate:"required"`
}

func (dto BatchRejectDTO) Validate() error {
	if len(dto.IDs) == 0 {
		return errors.New("ids is required")
	}
	if dto.Reason == "" {
		return errors.New("reason is required when rejecting")
	}
	return nil
}

type AddPaymentDTO struct {
	PaidByType   string          `json:"paid_by_type" validate:"required,oneof=user petty_cash company"`
	PaidByUserID *int64          `json:"paid_by_user_id,omitempty"`
	AmountPaid   decimal.Decimal `json:"amount_paid" validate:"required"`
	PaidAt       time.Time       `json:"paid_at,omitempty"`
}

func (dto AddPaymentDTO) Validate() error {
	if !ValidPaidByType(dto.PaidByType) {
		return errors.New("paid_by_type must be user, petty_cash or company")
	}
	if dto.PaidByType == PaidByUser && dto.PaidByUserID == nil {
		return errors.New("paid_by_user_id is required for user payments")
	}
	if !dto.AmountPaid.IsPositive() {
		return errors.New("amount_paid must be greater than 0")
	}
	return nil
}

// ListFilter narrows the transaction listing. Zero values mean "any".
type ListFilter struct {
	Direction      workflow.Direction
	Status         workflow.Status
	ApprovalStatus string
	Limit          int
	Offset         int
}

func (f *ListFilter) Normalize() {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

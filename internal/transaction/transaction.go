// Package transaction owns the expense/income aggregate: tax amounts,
// the document workflow status and the approval state all live on one
// record and are only mutated through the operations defined here.
package transaction

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nattapongw/banchee/internal/approval"
	"github.com/nattapongw/banchee/internal/workflow"
)

// AttachmentList is stored as a JSON array column. The core only cares
// whether it is empty; the URLs are opaque.
type AttachmentList []string

type Transaction struct {
	ID              int64              `json:"id" gorm:"primaryKey"`
	CompanyID       int64              `json:"company_id" gorm:"column:company_id;not null;index"`
	Direction       workflow.Direction `json:"direction" gorm:"column:direction;not null"`
	Description     string             `json:"description" gorm:"not null"`
	ContactName     string             `json:"contact_name" gorm:"column:contact_name"`
	TransactionDate time.Time          `json:"transaction_date" gorm:"column:transaction_date;type:date"`

	Amount       decimal.Decimal `json:"amount" gorm:"column:amount;type:numeric(14,2);not null"`
	VATRate      decimal.Decimal `json:"vat_rate" gorm:"column:vat_rate;type:numeric(5,2)"`
	VATAmount    decimal.Decimal `json:"vat_amount" gorm:"column:vat_amount;type:numeric(14,2)"`
	IsWHTApplied bool            `json:"is_wht_applied" gorm:"column:is_wht_applied"`
	WHTRate      decimal.Decimal `json:"wht_rate" gorm:"column:wht_rate;type:numeric(5,2)"`
	WHTType      string          `json:"wht_type,omitempty" gorm:"column:wht_type"`
	WHTAmount    decimal.Decimal `json:"wht_amount" gorm:"column:wht_amount;type:numeric(14,2)"`
	NetAmount    decimal.Decimal `json:"net_amount" gorm:"column:net_amount;type:numeric(14,2)"`

	DocumentType        string          `json:"document_type" gorm:"column:document_type;not null"`
	HasRequiredDocument bool            `json:"has_required_document" gorm:"column:has_required_document"`
	WorkflowStatus      workflow.Status `json:"workflow_status" gorm:"column:workflow_status;default:draft;index"`

	approval.State `gorm:"embedded"`

	SlipAttachments     AttachmentList `json:"slip_attachments,omitempty" gorm:"column:slip_attachments;serializer:json"`
	DocumentAttachments AttachmentList `json:"document_attachments,omitempty" gorm:"column:document_attachments;serializer:json"`
	WHTCertAttachments  AttachmentList `json:"wht_cert_attachments,omitempty" gorm:"column:wht_cert_attachments;serializer:json"`

	CreatedBy int64          `json:"created_by" gorm:"column:created_by;not null"`
	CreatedAt time.Time      `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"column:updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// Flags derives the branch conditions the workflow engine evaluates.
func (t *Transaction) Flags() workflow.Flags {
	return workflow.Flags{
		DocumentType:        t.DocumentType,
		HasRequiredDocument: t.HasRequiredDocument,
		WHTApplied:          t.IsWHTApplied,
	}
}

// Payer funding sources for an expense.
const (
	PaidByUser      = "user"
	PaidByPettyCash = "petty_cash"
	PaidByCompany   = "company"
)

const (
	SettlementPending = "pending"
	SettlementSettled = "settled"
)

// Payment records who funded a settled expense. The unique index stops
// the same payer from being recorded twice for one transaction.
type Payment struct {
	ID               int64           `json:"id" gorm:"primaryKey"`
	TransactionID    int64           `json:"transaction_id" gorm:"column:transaction_id;not null;uniqueIndex:uniq_transaction_payer"`
	CompanyID        int64           `json:"company_id" gorm:"column:company_id;not null;index"`
	PaidByType       string          `json:"paid_by_type" gorm:"column:paid_by_type;not null;uniqueIndex:uniq_transaction_payer"`
	// Zero for petty-cash and company payers; part of the unique key so
	// a NULL cannot defeat the duplicate guard.
	PaidByUserID     int64           `json:"paid_by_user_id,omitempty" gorm:"column:paid_by_user_id;not null;default:0;uniqueIndex:uniq_transaction_payer"`
	AmountPaid       decimal.Decimal `json:"amount_paid" gorm:"column:amount_paid;type:numeric(14,2);not null"`
	SettlementStatus string          `json:"settlement_status" gorm:"column:settlement_status;default:pending"`
	PaidAt           time.Time       `json:"paid_at" gorm:"column:paid_at"`
	CreatedAt        time.Time       `json:"created_at" gorm:"column:created_at"`
}

func (Payment) TableName() string {
	return "expense_payments"
}

func ValidPaidByType(t string) bool {
	return t == PaidByUser || t == PaidByPettyCash || t == PaidByCompany
}

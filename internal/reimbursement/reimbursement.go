// Package reimbursement handles employee expense claims. A claim has
// its own lifecycle separate from the company expense books; paying an
// employee and booking the cost as a company expense are distinct
// accounting events with independent timing.
package reimbursement

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nattapongw/banchee/internal"
)

const (
	StatusPending  = "pending"
	StatusFlagged  = "flagged"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusPaid     = "paid"
)

type AttachmentList []string

type Reimbursement struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	CompanyID   int64     `json:"company_id" gorm:"column:company_id;not null;index"`
	RequesterID int64     `json:"requester_id" gorm:"column:requester_id;not null;index"`
	Description string    `json:"description" gorm:"not null"`
	ClaimDate   time.Time `json:"claim_date" gorm:"column:claim_date;type:date"`

	Amount       decimal.Decimal `json:"amount" gorm:"column:amount;type:numeric(14,2);not null"`
	VATRate      decimal.Decimal `json:"vat_rate" gorm:"column:vat_rate;type:numeric(5,2)"`
	VATAmount    decimal.Decimal `json:"vat_amount" gorm:"column:vat_amount;type:numeric(14,2)"`
	IsWHTApplied bool            `json:"is_wht_applied" gorm:"column:is_wht_applied"`
	WHTRate      decimal.Decimal `json:"wht_rate" gorm:"column:wht_rate;type:numeric(5,2)"`
	WHTType      string          `json:"wht_type,omitempty" gorm:"column:wht_type"`
	WHTAmount    decimal.Decimal `json:"wht_amount" gorm:"column:wht_amount;type:numeric(14,2)"`
	NetAmount    decimal.Decimal `json:"net_amount" gorm:"column:net_amount;type:numeric(14,2)"`

	Status         string     `json:"status" gorm:"column:status;default:pending;index"`
	ApprovedBy     *int64     `json:"approved_by,omitempty" gorm:"column:approved_by"`
	ApprovedAt     *time.Time `json:"approved_at,omitempty" gorm:"column:approved_at"`
	RejectedReason *string    `json:"rejected_reason,omitempty" gorm:"column:rejected_reason"`
	FlaggedReason  *string    `json:"flagged_reason,omitempty" gorm:"column:flagged_reason"`
	PaidBy         *int64     `json:"paid_by,omitempty" gorm:"column:paid_by"`
	PaidAt         *time.Time `json:"paid_at,omitempty" gorm:"column:paid_at"`
	PaymentRef     *string    `json:"payment_ref,omitempty" gorm:"column:payment_ref"`

	// Set once the claim has been aggregated into a company expense.
	ConvertedExpenseID *int64 `json:"converted_expense_id,omitempty" gorm:"column:converted_expense_id"`

	ReceiptAttachments AttachmentList `json:"receipt_attachments,omitempty" gorm:"column:receipt_attachments;serializer:json"`

	CreatedAt time.Time      `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"column:updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Reimbursement) TableName() string {
	return "reimbursements"
}

func illegalStatus(current string) error {
	return internal.ErrIllegalTransition.WithDetails(map[string]string{
		"status": current,
	})
}

// Approve signs off a pending or flagged claim. The requester may not
// approve their own claim.
func (r *Reimbursement) Approve(actorID int64, now time.Time) error {
	if r.Status != StatusPending && r.Status != StatusFlagged {
		return illegalStatus(r.Status)
	}
	if r.RequesterID == actorID {
		return internal.ErrSelfApproval
	}
	r.Status = StatusApproved
	r.ApprovedBy = &actorID
	r.ApprovedAt = &now
	r.FlaggedReason = nil
	return nil
}

func (r *Reimbursement) Reject(actorID int64, reason string, now time.Time) error {
	if reason == "" {
		return internal.ErrReasonRequired
	}
	if r.Status != StatusPending && r.Status != StatusFlagged {
		return illegalStatus(r.Status)
	}
	if r.RequesterID == actorID {
		return internal.ErrSelfApproval
	}
	r.Status = StatusRejected
	r.ApprovedBy = &actorID
	r.ApprovedAt = &now
	r.RejectedReason = &reason
	return nil
}

// Flag parks a pending claim for review instead of deciding it.
func (r *Reimbursement) Flag(reason string, _ time.Time) error {
	if reason == "" {
		return internal.ErrReasonRequired
	}
	if r.Status != StatusPending {
		return illegalStatus(r.Status)
	}
	r.Status = StatusFlagged
	r.FlaggedReason = &reason
	return nil
}

// Pay settles an approved claim to the employee.
func (r *Reimbursement) Pay(actorID int64, paymentRef string, now time.Time) error {
	if r.Status != StatusApproved {
		return illegalStatus(r.Status)
	}
	r.Status = StatusPaid
	r.PaidBy = &actorID
	r.PaidAt = &now
	if paymentRef != "" {
		r.PaymentRef = &paymentRef
	}
	return nil
}

// Convertible reports whether the claim can join an expense
// conversion: paid out and not already consumed.
func (r *Reimbursement) Convertible() bool {
	return r.Status == StatusPaid && r.ConvertedExpenseID == nil
}

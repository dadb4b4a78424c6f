// Package approval owns the sign-off lifecycle that sits next to the
// document workflow: a record may require approval before it can be
// marked paid or received, and nobody may approve their own submission.
package approval

import (
	"time"

	"github.com/nattapongw/banchee/internal"
)

type Status string

const (
	StatusNotRequired Status = "not_required"
	StatusPending     Status = "pending"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
)

// State is the approval slice of a transaction. The aggregate embeds
// it and persists the fields alongside the workflow status.
type State struct {
	Status         Status     `json:"approval_status" gorm:"column:approval_status;default:not_required"`
	SubmittedBy    *int64     `json:"submitted_by,omitempty" gorm:"column:submitted_by"`
	SubmittedAt    *time.Time `json:"submitted_at,omitempty" gorm:"column:submitted_at"`
	ApprovedBy     *int64     `json:"approved_by,omitempty" gorm:"column:approved_by"`
	ApprovedAt     *time.Time `json:"approved_at,omitempty" gorm:"column:approved_at"`
	RejectedReason *string    `json:"rejected_reason,omitempty" gorm:"column:rejected_reason"`
}

// GatePayment guards the mark-paid/mark-received entry point: a record
// still waiting for sign-off, or one that was refused it, cannot be
// settled.
func GatePayment(s Status) error {
	switch s {
	case StatusPending:
		return internal.ErrApprovalPending
	case StatusRejected:
		return internal.ErrApprovalRejected
	default:
		return nil
	}
}

// Submit moves a record into the pending queue.
func (s *State) Submit(actorID int64, now time.Time) error {
	if s.Status != StatusNotRequired {
		return internal.ErrIllegalTransition.WithDetails(map[string]string{
			"approval_status": string(s.Status),
		})
	}
	s.Status = StatusPending
	s.SubmittedBy = &actorID
	s.SubmittedAt = &now
	return nil
}

// Approve signs off a pending record. The submitter may not approve
// their own submission.
func (s *State) Approve(actorID int64, now time.Time) error {
	if s.Status != StatusPending {
		return internal.ErrIllegalTransition.WithDetails(map[string]string{
			"approval_status": string(s.Status),
		})
	}
	if s.SubmittedBy != nil && *s.SubmittedBy == actorID {
		return internal.ErrSelfApproval
	}
	s.Status = StatusApproved
	s.ApprovedBy = &actorID
	s.ApprovedAt = &now
	return nil
}

// Reject refuses a pending record; a reason is mandatory because the
// UI shows it to the submitter verbatim.
func (s *State) Reject(actorID int64, reason string, now time.Time) error {
	if reason == "" {
		return internal.ErrReasonRequired
	}
	if s.Status != StatusPending {
		return internal.ErrIllegalTransition.WithDetails(map[string]string{
			"approval_status": string(s.Status),
		})
	}
	if s.SubmittedBy != nil && *s.SubmittedBy == actorID {
		return internal.ErrSelfApproval
	}
	s.Status = StatusRejected
	s.ApprovedBy = &actorID
	s.ApprovedAt = &now
	s.RejectedReason = &reason
	return nil
}

// Withdraw pulls a pending submission back. Only the submitter (or the
// record creator, passed by the aggregate) may do it.
func (s *State) Withdraw(actorID, createdBy int64) error {
	if s.Status != StatusPending {
		return internal.ErrIllegalTransition.WithDetails(map[string]string{
			"approval_status": string(s.Status),
		})
	}
	if (s.SubmittedBy == nil || *s.SubmittedBy != actorID) && actorID != createdBy {
		return internal.ErrForbidden
	}
	s.Status = StatusNotRequired
	s.SubmittedBy = nil
	s.SubmittedAt = nil
	return nil
}

// BatchResult reports one item of a batch approve/reject. A failed
// item never aborts the rest of the batch.
type BatchResult struct {
	ID      int64  `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

package reimbursement

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nattapongw/banchee/internal/tax"
)

type CreateReimbursementDTO struct {
	Description        string          `json:"description" validate:"required,max=500"`
	ClaimDate          time.Time       `json:"claim_date" validate:"required"`
	Amount             decimal.Decimal `json:"amount" validate:"required"`
	VATRate            decimal.Decimal `json:"vat_rate"`
	IsWHTApplied       bool            `json:"is_wht_applied"`
	WHTRate            decimal.Decimal `json:"wht_rate"`
	WHTType            string          `json:"wht_type,omitempty"`
	ReceiptAttachments AttachmentList  `json:"receipt_attachments,omitempty"`
}

func (dto CreateReimbursementDTO) Validate() error {
	if dto.Description == "" {
		return errors.New("description is required")
	}
	if len(dto.Description) > 500 {
		return errors.New("description must be less than 500 characters")
	}
	if dto.ClaimDate.IsZero() {
		return errors.New("claim date is required")
	}
	if !dto.Amount.IsPositive() {
		return errors.New("amount must be greater than 0")
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

type RejectReimbursementDTO struct {
	Reason string `json:"reason" validate:"required"`
}

func (dto RejectReimbursementDTO) Validate() error {
	if dto.Reason == "" {
		return errors.New("reason is required when rejecting")
	}
	return nil
}

type FlagReimbursementDTO struct {
	Reason string `json:"reason" validate:"required"`
}

func (dto FlagReimbursementDTO) Validate() error {
	if dto.Reason == "" {
		return errors.New("reason is required when flagging")
	}
	return nil
}

type PayReimbursementDTO struct {
	PaymentRef string `json:"payment_ref,omitempty"`
}

// ConvertDTO books one or more paid claims by the same requester as a
// single company expense.
type ConvertDTO struct {
	IDs         []int64 `json:"ids" validate:"required,min=1"`
	Description string  `json:"description,omitempty"`
}

func (dto ConvertDTO) Validate() error {
	if len(dto.IDs) == 0 {
		return errors.New("ids is required")
	}
	return nil
}

type ListFilter struct {
	Status      string
	RequesterID int64
	Limit       int
	Offset      int
}

func (f *ListFilter) Normalize() {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

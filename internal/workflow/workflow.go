// Package workflow is the table-driven document workflow engine. Every
// entry point that moves a transaction between document states goes
// through Apply; nothing else may invent a transition.
package workflow

import "github.com/nattapongw/banchee/internal"

type Direction string

const (
	DirectionExpense Direction = "expense"
	DirectionIncome  Direction = "income"
)

type Status string

const (
	StatusDraft              Status = "draft"
	StatusReadyForAccounting Status = "ready_for_accounting"
	StatusSentToAccountant   Status = "sent_to_accountant"
	StatusCompleted          Status = "completed"

	// Expense branch: the company waits for a vendor tax invoice and
	// issues withholding certificates.
	StatusWaitingTaxInvoice  Status = "waiting_tax_invoice"
	StatusTaxInvoiceReceived Status = "tax_invoice_received"
	StatusWHTPendingIssue    Status = "wht_pending_issue"
	StatusWHTIssued          Status = "wht_issued"
	StatusWHTSentToVendor    Status = "wht_sent_to_vendor"

	// Income branch: the company issues the invoice and waits for the
	// customer's withholding certificate.
	StatusWaitingInvoiceIssue Status = "waiting_invoice_issue"
	StatusInvoiceIssued       Status = "invoice_issued"
	StatusWHTPendingCert      Status = "wht_pending_cert"
	StatusWHTCertReceived     Status = "wht_cert_received"
)

type Trigger string

const (
	TriggerMarkPaid         Trigger = "mark_paid"
	TriggerMarkReceived     Trigger = "mark_received"
	TriggerDocumentReceived Trigger = "document_received"
	TriggerWHTIssued        Trigger = "wht_issued"
	TriggerWHTSent          Trigger = "wht_sent"
	TriggerInvoiceIssued    Trigger = "invoice_issued"
	TriggerWHTCertReceived  Trigger = "wht_cert_received"
	TriggerProceed          Trigger = "proceed"
	TriggerSend             Trigger = "send"
	TriggerConfirm          Trigger = "confirm"
)

const (
	DocumentTaxInvoice  = "tax_invoice"
	DocumentCashReceipt = "cash_receipt"
	DocumentNone        = "no_document"
)

// Flags are the document attributes a transition may branch on.
type Flags struct {
	DocumentType        string
	HasRequiredDocument bool
	WHTApplied          bool
}

// whtOnTaxInvoice marks the only combination that forces the WHT
// certificate leg of the workflow.
func (f Flags) whtOnTaxInvoice() bool {
	return f.WHTApplied && f.DocumentType == DocumentTaxInvoice
}

type rule struct {
	from    Status
	trigger Trigger
	when    func(Flags) bool
	to      func(Flags) Status
}

func static(s Status) func(Flags) Status {
	return func(Flags) Status { return s }
}

func always(Flags) bool { return true }

// paymentTarget selects where a paid/received draft lands. With no
// counter-document expected it is immediately bookable; with the
// document in hand it is bookable unless a WHT certificate must still
// be issued or collected; otherwise it waits for the document.
func paymentTarget(whtLeg Status, waiting Status) func(Flags) Status {
	return func(f Flags) Status {
		switch {
		case f.DocumentType == DocumentNone:
			return StatusReadyForAccounting
		case f.HasRequiredDocument && f.whtOnTaxInvoice():
			return whtLeg
		case f.HasRequiredDocument:
			return StatusReadyForAccounting
		default:
			return waiting
		}
	}
}

func afterDocument(whtLeg Status) func(Flags) Status {
	return func(f Flags) Status {
		if f.WHTApplied {
			return whtLeg
		}
		return StatusReadyForAccounting
	}
}

var expenseRules = []rule{
	{StatusDraft, TriggerMarkPaid, always, paymentTarget(StatusWHTPendingIssue, StatusWaitingTaxInvoice)},
	{StatusWaitingTaxInvoice, TriggerDocumentReceived, always, static(StatusTaxInvoiceReceived)},
	{StatusTaxInvoiceReceived, TriggerProceed, always, afterDocument(StatusWHTPendingIssue)},
	{StatusWHTPendingIssue, TriggerWHTIssued, always, static(StatusWHTIssued)},
	{StatusWHTIssued, TriggerWHTSent, always, static(StatusWHTSentToVendor)},
	{StatusWHTIssued, TriggerProceed, always, static(StatusReadyForAccounting)},
	{StatusWHTSentToVendor, TriggerProceed, always, static(StatusReadyForAccounting)},
	{StatusReadyForAccounting, TriggerSend, always, static(StatusSentToAccountant)},
	{StatusSentToAccountant, TriggerConfirm, always, static(StatusCompleted)},
}

// The income branch ends at sent_to_accountant; there is no distinct
// completed state on this side.
var incomeRules = []rule{
	{StatusDraft, TriggerMarkReceived, always, paymentTarget(StatusWHTPendingCert, StatusWaitingInvoiceIssue)},
	{StatusWaitingInvoiceIssue, TriggerInvoiceIssued, always, static(StatusInvoiceIssued)},
	{StatusInvoiceIssued, TriggerProceed, always, afterDocument(StatusWHTPendingCert)},
	{StatusWHTPendingCert, TriggerWHTCertReceived, always, static(StatusWHTCertReceived)},
	{StatusWHTCertReceived, TriggerProceed, always, static(StatusReadyForAccounting)},
	{StatusReadyForAccounting, TriggerSend, always, static(StatusSentToAccountant)},
}

func rulesFor(dir Direction) []rule {
	if dir == DirectionIncome {
		return incomeRules
	}
	return expenseRules
}

// PaymentTrigger returns the draft entry trigger for a direction.
func PaymentTrigger(dir Direction) Trigger {
	if dir == DirectionIncome {
		return TriggerMarkReceived
	}
	return TriggerMarkPaid
}

// Terminal reports the final recorded state per direction.
func Terminal(dir Direction) Status {
	if dir == DirectionIncome {
		return StatusSentToAccountant
	}
	return StatusCompleted
}

func find(dir Direction, current Status, trigger Trigger, f Flags) (rule, bool) {
	for _, r := range rulesFor(dir) {
		if r.from == current && r.trigger == trigger && r.when(f) {
			return r, true
		}
	}
	return rule{}, false
}

// CanTransition reports whether the trigger is legal from the current
// state under the given flags.
func CanTransition(dir Direction, current Status, trigger Trigger, f Flags) bool {
	_, ok := find(dir, current, trigger, f)
	return ok
}

// Apply resolves the next state, or fails with an illegal-transition
// error carrying the current state for the user-facing message.
func Apply(dir Direction, current Status, trigger Trigger, f Flags) (Status, error) {
	r, ok := find(dir, current, trigger, f)
	if !ok {
		return current, internal.ErrIllegalTransition.WithDetails(map[string]string{
			"current_status": string(current),
			"trigger":        string(trigger),
		})
	}
	return r.to(f), nil
}

package transaction_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/nattapongw/banchee/internal"
	"github.com/nattapongw/banchee/internal/approval"
	"github.com/nattapongw/banchee/internal/auth"
	"github.com/nattapongw/banchee/internal/core/events"
	"github.com/nattapongw/banchee/internal/transaction"
	"github.com/nattapongw/banchee/internal/workflow"
)

// Mock repositories for testing
type mockTransactionRepo struct {
	txns      map[int64]*transaction.Transaction
	nextID    int64
	createErr error
	updateErr error
}

func newMockTransactionRepo() *mockTransactionRepo {
	return &mockTransactionRepo{
		txns:   make(map[int64]*transaction.Transaction),
		nextID: 1,
	}
}

func (m *mockTransactionRepo) Create(_ context.Context, txn *transaction.Transaction) error {
	if m.createErr != nil {
		return m.createErr
	}
	txn.ID = m.nextID
	m.nextID++
	m.txns[txn.ID] = txn
	return nil
}

func (m *mockTransactionRepo) GetByID(_ context.Context, companyID, id int64) (*transaction.Transaction, error) {
	txn, exists := m.txns[id]
	if !exists || txn.CompanyID != companyID {
		return nil, internal.ErrTransactionNotFound
	}
	// Copy so callers never mutate the stored row without Update.
	cp := *txn
	return &cp, nil
}

func (m *mockTransactionRepo) List(_ context.Context, companyID int64, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	var out []*transaction.Transaction
	for _, txn := range m.txns {
		if txn.CompanyID != companyID {
			continue
		}
		if filter.Direction != "" && txn.Direction != filter.Direction {
			continue
		}
		if filter.Status != "" && txn.WorkflowStatus != filter.Status {
			continue
		}
		out = append(out, txn)
	}
	return out, nil
}

func (m *mockTransactionRepo) Update(_ context.Context, txn *transaction.Transaction) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.txns[txn.ID] = txn
	return nil
}

func (m *mockTransactionRepo) UpdateStatusWhere(_ context.Context, companyID, id int64, expected, next workflow.Status) error {
	txn, exists := m.txns[id]
	if !exists || txn.CompanyID != companyID {
		return internal.ErrTransactionNotFound
	}
	if txn.WorkflowStatus != expected {
		return internal.ErrIllegalTransition
	}
	txn.WorkflowStatus = next
	return nil
}

func (m *mockTransactionRepo) SoftDelete(_ context.Context, companyID, id int64) error {
	txn, exists := m.txns[id]
	if !exists || txn.CompanyID != companyID {
		return internal.ErrTransactionNotFound
	}
	delete(m.txns, id)
	return nil
}

type mockPaymentRepo struct {
	payments  []*transaction.Payment
	nextID    int64
	createErr error
}

func newMockPaymentRepo() *mockPaymentRepo {
	return &mockPaymentRepo{nextID: 1}
}

func (m *mockPaymentRepo) Create(_ context.Context, p *transaction.Payment) error {
	if m.createErr != nil {
		return m.createErr
	}
	p.ID = m.nextID
	m.nextID++
	m.payments = append(m.payments, p)
	return nil
}

func (m *mockPaymentRepo) Exists(_ context.Context, transactionID int64, paidByType string, paidByUserID int64) (bool, error) {
	for _, p := range m.payments {
		if p.TransactionID == transactionID && p.PaidByType == paidByType && p.PaidByUserID == paidByUserID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockPaymentRepo) ListByTransaction(_ context.Context, companyID, transactionID int64) ([]*transaction.Payment, error) {
	var out []*transaction.Payment
	for _, p := range m.payments {
		if p.CompanyID == companyID && p.TransactionID == transactionID {
			out = append(out, p)
		}
	}
	return out, nil
}

var _ = Describe("Transaction Service", func() {
	var (
		repo     *mockTransactionRepo
		payments *mockPaymentRepo
		service  *transaction.Service
		ctx      context.Context

		owner    auth.Actor
		approver auth.Actor
		staff    auth.Actor
	)

	threshold := decimal.NewFromInt(50000)

	newExpenseDTO := func() transaction.CreateTransactionDTO {
		return transaction.CreateTransactionDTO{
			Direction:       workflow.DirectionExpense,
			Description:     "ค่าบริการทำบัญชี",
			ContactName:     "สำนักงานบัญชีเอ",
			TransactionDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			Amount:          decimal.NewFromInt(10000),
			VATRate:         decimal.NewFromInt(7),
			IsWHTApplied:    true,
			WHTRate:         decimal.NewFromInt(3),
			WHTType:         "service",
			DocumentType:    workflow.DocumentTaxInvoice,
		}
	}

	BeforeEach(func() {
		repo = newMockTransactionRepo()
		payments = newMockPaymentRepo()
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		bus := events.NewEventBus(logger)
		service = transaction.NewService(repo, payments, bus, logger, threshold)
		ctx = context.Background()

		owner = auth.Actor{UserID: 1, CompanyID: 1, IsOwner: true}
		approver = auth.Actor{
			UserID:    2,
			CompanyID: 1,
			Permissions: []auth.Permission{
				auth.PermTransactionsRead,
				auth.PermTransactionsApprove,
			},
		}
		staff = auth.Actor{
			UserID:    3,
			CompanyID: 1,
			Permissions: []auth.Permission{
				auth.PermTransactionsCreate,
				auth.PermTransactionsRead,
				auth.PermTransactionsUpdate,
				auth.PermTransactionsPay,
				auth.PermTransactionsSend,
			},
		}
	})

	Describe("Create", func() {
		It("should recompute the tax amounts server-side", func() {
			txn, err := service.Create(ctx, staff, newExpenseDTO())

			Expect(err).NotTo(HaveOccurred())
			Expect(txn.VATAmount.String()).To(Equal("700"))
			Expect(txn.WHTAmount.String()).To(Equal("300"))
			Expect(txn.NetAmount.String()).To(Equal("10400"))
			Expect(txn.WorkflowStatus).To(Equal(workflow.StatusDraft))
			Expect(txn.State.Status).To(Equal(approval.StatusNotRequired))
		})

		It("should seed a pending approval at or above the company threshold", func() {
			dto := newExpenseDTO()
			dto.Amount = decimal.NewFromInt(50000)

			txn, err := service.Create(ctx, staff, dto)

			Expect(err).NotTo(HaveOccurred())
			Expect(txn.State.Status).To(Equal(approval.StatusPending))
			Expect(*txn.State.SubmittedBy).To(Equal(staff.UserID))
		})

		It("should reject a create without permission", func() {
			noPerms := auth.Actor{UserID: 9, CompanyID: 1}

			_, err := service.Create(ctx, noPerms, newExpenseDTO())

			Expect(err).To(MatchError(internal.ErrForbidden))
		})

		It("should reject wht applied without a positive rate", func() {
			dto := newExpenseDTO()
			dto.WHTRate = decimal.Zero

			_, err := service.Create(ctx, staff, dto)

			Expect(err).To(HaveOccurred())
		})
	})

	Describe("MarkPaidOrReceived", func() {
		It("should route a wht tax-invoice expense with document to the wht leg", func() {
			dto := newExpenseDTO()
			dto.HasRequiredDocument = true
			txn, err := service.Create(ctx, staff, dto)
			Expect(err).NotTo(HaveOccurred())

			txn, err = service.MarkPaidOrReceived(ctx, staff, txn.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(txn.WorkflowStatus).To(Equal(workflow.StatusWHTPendingIssue))
		})

		It("should route a no-document expense straight to ready for accounting", func() {
			dto := newExpenseDTO()
			dto.DocumentType = workflow.DocumentNone
			dto.IsWHTApplied = false
			dto.WHTRate = decimal.Zero
			dto.WHTType = ""
			txn, err := service.Create(ctx, staff, dto)
			Expect(err).NotTo(HaveOccurred())

			txn, err = service.MarkPaidOrReceived(ctx, staff, txn.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(txn.WorkflowStatus).To(Equal(workflow.StatusReadyForAccounting))
		})

		It("should refuse while approval is pending", func() {
			dto := newExpenseDTO()
			dto.Amount = decimal.NewFromInt(80000)
			txn, err := service.Create(ctx, staff, dto)
			Expect(err).NotTo(HaveOccurred())
			Expect(txn.State.Status).To(Equal(approval.StatusPending))

			_, err = service.MarkPaidOrReceived(ctx, staff, txn.ID)

			Expect(err).To(MatchError(internal.ErrApprovalPending))
		})

		It("should refuse after a rejection", func() {
			dto := newExpenseDTO()
			dto.Amount = decimal.NewFromInt(80000)
			txn, err := service.Create(ctx, staff, dto)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Reject(ctx, approver, txn.ID, "เอกสารไม่ครบ")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.MarkPaidOrReceived(ctx, staff, txn.ID)

			Expect(err).To(MatchError(internal.ErrApprovalRejected))
		})

		It("should proceed once approved", func() {
			dto := newExpenseDTO()
			dto.Amount = decimal.NewFromInt(80000)
			dto.HasRequiredDocument = true
			txn, err := service.Create(ctx, staff, dto)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Approve(ctx, approver, txn.ID)
			Expect(err).NotTo(HaveOccurred())

			txn, err = service.MarkPaidOrReceived(ctx, staff, txn.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(txn.WorkflowStatus).To(Equal(workflow.StatusWHTPendingIssue))
		})

		It("should fail with illegal transition when already past draft", func() {
			dto := newExpenseDTO()
			dto.HasRequiredDocument = true
			txn, err := service.Create(ctx, staff, dto)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.MarkPaidOrReceived(ctx, staff, txn.ID)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.MarkPaidOrReceived(ctx, staff, txn.ID)

			Expect(err).To(MatchError(internal.ErrIllegalTransition))
		})
	})

	Describe("workflow legs", func() {
		It("should walk the full wht expense path to completed", func() {
			dto := newExpenseDTO()
			dto.HasRequiredDocument = true
			txn, err := service.Create(ctx, staff, dto)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.MarkPaidOrReceived(ctx, staff, txn.ID)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.WHTIssued(ctx, staff, txn.ID)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.WHTSent(ctx, staff, txn.ID)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Proceed(ctx, staff, txn.ID)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.SendToAccountant(ctx, staff, txn.ID)
			Expect(err).NotTo(HaveOccurred())

			txn, err = service.Confirm(ctx, staff, txn.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(txn.WorkflowStatus).To(Equal(workflow.StatusCompleted))
		})

		It("should require a document attachment before document-received", func() {
			dto := newExpenseDTO()
			txn, err := service.Create(ctx, staff, dto)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.MarkPaidOrReceived(ctx, staff, txn.ID)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.DocumentReceived(ctx, staff, txn.ID)
			Expect(err).To(HaveOccurred())

			_, err = service.Update(ctx, staff, txn.ID, transaction.UpdateTransactionDTO{
				DocumentAttachments: &transaction.AttachmentList{"https://files.example/inv-001.pdf"},
			})
			Expect(err).NotTo(HaveOccurred())

			txn, err = service.DocumentReceived(ctx, staff, txn.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(txn.WorkflowStatus).To(Equal(workflow.StatusTaxInvoiceReceived))
			Expect(txn.HasRequiredDocument).To(BeTrue())
		})

		It("should leave the status untouched when the document flag write fails", func() {
			txn, err := service.Create(ctx, staff, newExpenseDTO())
			Expect(err).NotTo(HaveOccurred())

			_, err = service.MarkPaidOrReceived(ctx, staff, txn.ID)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Update(ctx, staff, txn.ID, transaction.UpdateTransactionDTO{
				DocumentAttachments: &transaction.AttachmentList{"https://files.example/inv-002.pdf"},
			})
			Expect(err).NotTo(HaveOccurred())

			repo.updateErr = errors.New("connection reset")
			_, err = service.DocumentReceived(ctx, staff, txn.ID)
			Expect(err).To(HaveOccurred())
			repo.updateErr = nil

			loaded, err := service.GetByID(ctx, staff, txn.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.WorkflowStatus).To(Equal(workflow.StatusWaitingTaxInvoice))
			Expect(loaded.HasRequiredDocument).To(BeFalse())
		})

		It("should end an income at sent to accountant", func() {
			dto := newExpenseDTO()
			dto.Direction = workflow.DirectionIncome
			dto.DocumentType = workflow.DocumentNone
			dto.IsWHTApplied = false
			dto.WHTRate = decimal.Zero
			dto.WHTType = ""
			txn, err := service.Create(ctx, staff, dto)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.MarkPaidOrReceived(ctx, staff, txn.ID)
			Expect(err).NotTo(HaveOccurred())

			txn, err = service.SendToAccountant(ctx, staff, txn.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(txn.WorkflowStatus).To(Equal(workflow.StatusSentToAccountant))

			_, err = service.Confirm(ctx, staff, txn.ID)
			Expect(err).To(MatchError(internal.ErrIllegalTransition))
		})

		It("should record an issued invoice without an attachment", func() {
			dto := newExpenseDTO()
			dto.Direction = workflow.DirectionIncome
			dto.IsWHTApplied = false
			dto.WHTRate = decimal.Zero
			dto.WHTType = ""
			txn, err := service.Create(ctx, staff, dto)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.MarkPaidOrReceived(ctx, staff, txn.ID)
			Expect(err).NotTo(HaveOccurred())

			txn, err = service.InvoiceIssued(ctx, staff, txn.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(txn.WorkflowStatus).To(Equal(workflow.StatusInvoiceIssued))
			Expect(txn.HasRequiredDocument).To(BeTrue())
		})

		It("should refuse issuing an invoice out of order", func() {
			dto := newExpenseDTO()
			dto.Direction = workflow.DirectionIncome
			dto.IsWHTApplied = false
			dto.WHTRate = decimal.Zero
			dto.WHTType = ""
			txn, err := service.Create(ctx, staff, dto)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.InvoiceIssued(ctx, staff, txn.ID)
			Expect(err).To(MatchError(internal.ErrIllegalTransition))

			loaded, err := service.GetByID(ctx, staff, txn.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.HasRequiredDocument).To(BeFalse())
		})
	})

	Describe("Update", func() {
		It("should recompute derived amounts when the base amount changes", func() {
			txn, err := service.Create(ctx, staff, newExpenseDTO())
			Expect(err).NotTo(HaveOccurred())

			newAmount := decimal.NewFromInt(20000)
			txn, err = service.Update(ctx, staff, txn.ID, transaction.UpdateTransactionDTO{
				Amount: &newAmount,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(txn.VATAmount.String()).To(Equal("1400"))
			Expect(txn.WHTAmount.String()).To(Equal("600"))
			Expect(txn.NetAmount.String()).To(Equal("20800"))
		})

		It("should clear the wht fields when wht is switched off", func() {
			txn, err := service.Create(ctx, staff, newExpenseDTO())
			Expect(err).NotTo(HaveOccurred())

			off := false
			txn, err = service.Update(ctx, staff, txn.ID, transaction.UpdateTransactionDTO{
				IsWHTApplied: &off,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(txn.WHTAmount.IsZero()).To(BeTrue())
			Expect(txn.WHTType).To(BeEmpty())
			Expect(txn.NetAmount.String()).To(Equal("10700"))
		})

		It("should refuse switching wht on without a rate and type", func() {
			dto := newExpenseDTO()
			dto.IsWHTApplied = false
			dto.WHTRate = decimal.Zero
			dto.WHTType = ""
			txn, err := service.Create(ctx, staff, dto)
			Expect(err).NotTo(HaveOccurred())

			on := true
			_, err = service.Update(ctx, staff, txn.ID, transaction.UpdateTransactionDTO{
				IsWHTApplied: &on,
			})

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("wht rate must be greater than 0"))

			loaded, err := service.GetByID(ctx, staff, txn.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.IsWHTApplied).To(BeFalse())
		})

		It("should accept wht switched on together with its rate and type", func() {
			dto := newExpenseDTO()
			dto.IsWHTApplied = false
			dto.WHTRate = decimal.Zero
			dto.WHTType = ""
			txn, err := service.Create(ctx, staff, dto)
			Expect(err).NotTo(HaveOccurred())

			on := true
			rate := decimal.NewFromInt(3)
			whtType := "service"
			txn, err = service.Update(ctx, staff, txn.ID, transaction.UpdateTransactionDTO{
				IsWHTApplied: &on,
				WHTRate:      &rate,
				WHTType:      &whtType,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(txn.WHTAmount.String()).To(Equal("300"))
			Expect(txn.NetAmount.String()).To(Equal("10400"))
		})
	})

	Describe("approval lifecycle", func() {
		var txnID int64

		BeforeEach(func() {
			txn, err := service.Create(ctx, staff, newExpenseDTO())
			Expect(err).NotTo(HaveOccurred())
			txnID = txn.ID

			_, err = service.Submit(ctx, staff, txnID)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should forbid self-approval", func() {
			_, err := service.Approve(ctx, auth.Actor{
				UserID:      staff.UserID,
				CompanyID:   1,
				Permissions: []auth.Permission{auth.PermTransactionsApprove},
			}, txnID)

			Expect(err).To(MatchError(internal.ErrSelfApproval))
		})

		It("should let the owner approve without an explicit permission", func() {
			txn, err := service.Approve(ctx, owner, txnID)

			Expect(err).NotTo(HaveOccurred())
			Expect(txn.State.Status).To(Equal(approval.StatusApproved))
		})

		It("should require a reason on reject", func() {
			_, err := service.Reject(ctx, approver, txnID, "")

			Expect(err).To(MatchError(internal.ErrReasonRequired))
		})

		It("should let the submitter withdraw", func() {
			txn, err := service.Withdraw(ctx, staff, txnID)

			Expect(err).NotTo(HaveOccurred())
			Expect(txn.State.Status).To(Equal(approval.StatusNotRequired))
			Expect(txn.State.SubmittedBy).To(BeNil())
		})
	})

	Describe("BatchApprove", func() {
		It("should report per-item results without aborting the batch", func() {
			a, err := service.Create(ctx, staff, newExpenseDTO())
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Submit(ctx, staff, a.ID)
			Expect(err).NotTo(HaveOccurred())

			// Submitted by the approver, so approving it is self-approval.
			submitter := auth.Actor{
				UserID:    approver.UserID,
				CompanyID: 1,
				Permissions: []auth.Permission{
					auth.PermTransactionsCreate,
					auth.PermTransactionsUpdate,
				},
			}
			b, err := service.Create(ctx, submitter, newExpenseDTO())
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Submit(ctx, submitter, b.ID)
			Expect(err).NotTo(HaveOccurred())

			results, err := service.BatchApprove(ctx, approver, []int64{a.ID, b.ID, 999})

			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(3))
			Expect(results[0].Success).To(BeTrue())
			Expect(results[1].Success).To(BeFalse())
			Expect(results[2].Success).To(BeFalse())

			approved, err := service.GetByID(ctx, approver, a.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(approved.State.Status).To(Equal(approval.StatusApproved))
		})
	})

	Describe("AddPayment", func() {
		var txnID int64

		BeforeEach(func() {
			txn, err := service.Create(ctx, staff, newExpenseDTO())
			Expect(err).NotTo(HaveOccurred())
			txnID = txn.ID
		})

		It("should record a payment", func() {
			userID := staff.UserID
			payment, err := service.AddPayment(ctx, staff, txnID, transaction.AddPaymentDTO{
				PaidByType:   transaction.PaidByUser,
				PaidByUserID: &userID,
				AmountPaid:   decimal.NewFromInt(10400),
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(payment.SettlementStatus).To(Equal(transaction.SettlementPending))
		})

		It("should reject a duplicate payment for the same payer", func() {
			userID := staff.UserID
			dto := transaction.AddPaymentDTO{
				PaidByType:   transaction.PaidByUser,
				PaidByUserID: &userID,
				AmountPaid:   decimal.NewFromInt(10400),
			}

			_, err := service.AddPayment(ctx, staff, txnID, dto)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.AddPayment(ctx, staff, txnID, dto)

			Expect(err).To(MatchError(internal.ErrDuplicatePayment))
		})

		It("should surface a duplicate that wins the race past the existence check", func() {
			payments.createErr = internal.ErrDuplicatePayment

			_, err := service.AddPayment(ctx, staff, txnID, transaction.AddPaymentDTO{
				PaidByType: transaction.PaidByCompany,
				AmountPaid: decimal.NewFromInt(10400),
			})

			Expect(err).To(MatchError(internal.ErrDuplicatePayment))
		})

		It("should allow different payer types on the same transaction", func() {
			userID := staff.UserID
			_, err := service.AddPayment(ctx, staff, txnID, transaction.AddPaymentDTO{
				PaidByType:   transaction.PaidByUser,
				PaidByUserID: &userID,
				AmountPaid:   decimal.NewFromInt(5000),
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.AddPayment(ctx, staff, txnID, transaction.AddPaymentDTO{
				PaidByType: transaction.PaidByPettyCash,
				AmountPaid: decimal.NewFromInt(5400),
			})
			Expect(err).NotTo(HaveOccurred())

			list, err := service.ListPayments(ctx, staff, txnID)
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(2))
		})

		It("should refuse payments on an income transaction", func() {
			dto := newExpenseDTO()
			dto.Direction = workflow.DirectionIncome
			income, err := service.Create(ctx, staff, dto)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.AddPayment(ctx, staff, income.ID, transaction.AddPaymentDTO{
				PaidByType: transaction.PaidByCompany,
				AmountPaid: decimal.NewFromInt(100),
			})

			Expect(err).To(HaveOccurred())
		})
	})

	Describe("tenant scoping", func() {
		It("should not return another company's transaction", func() {
			txn, err := service.Create(ctx, staff, newExpenseDTO())
			Expect(err).NotTo(HaveOccurred())

			otherCompany := auth.Actor{UserID: 50, CompanyID: 2, IsOwner: true}
			_, err = service.GetByID(ctx, otherCompany, txn.ID)

			Expect(err).To(MatchError(internal.ErrTransactionNotFound))
		})
	})
})

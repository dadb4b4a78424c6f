package reimbursement_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/nattapongw/banchee/internal"
	"github.com/nattapongw/banchee/internal/auth"
	"github.com/nattapongw/banchee/internal/core/events"
	"github.com/nattapongw/banchee/internal/reimbursement"
	"github.com/nattapongw/banchee/internal/transaction"
	"github.com/nattapongw/banchee/internal/workflow"
)

type mockReimbursementRepo struct {
	claims map[int64]*reimbursement.Reimbursement
	nextID int64
}

func newMockReimbursementRepo() *mockReimbursementRepo {
	return &mockReimbursementRepo{
		claims: make(map[int64]*reimbursement.Reimbursement),
		nextID: 1,
	}
}

func (m *mockReimbursementRepo) Create(_ context.Context, claim *reimbursement.Reimbursement) error {
	claim.ID = m.nextID
	m.nextID++
	m.claims[claim.ID] = claim
	return nil
}

func (m *mockReimbursementRepo) GetByID(_ context.Context, companyID, id int64) (*reimbursement.Reimbursement, error) {
	claim, exists := m.claims[id]
	if !exists || claim.CompanyID != companyID {
		return nil, internal.ErrReimbursementNotFound
	}
	return claim, nil
}

func (m *mockReimbursementRepo) List(_ context.Context, companyID int64, filter reimbursement.ListFilter) ([]*reimbursement.Reimbursement, error) {
	var out []*reimbursement.Reimbursement
	for _, claim := range m.claims {
		if claim.CompanyID != companyID {
			continue
		}
		if filter.Status != "" && claim.Status != filter.Status {
			continue
		}
		out = append(out, claim)
	}
	return out, nil
}

func (m *mockReimbursementRepo) Update(_ context.Context, claim *reimbursement.Reimbursement) error {
	m.claims[claim.ID] = claim
	return nil
}

// mockBooker captures what the conversion would book as an expense.
type mockBooker struct {
	booked []transaction.CreateTransactionDTO
	nextID int64
	err    error
}

func (m *mockBooker) BookConvertedExpense(_ context.Context, _ auth.Actor, dto transaction.CreateTransactionDTO) (*transaction.Transaction, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.booked = append(m.booked, dto)
	m.nextID++
	return &transaction.Transaction{
		ID:        m.nextID,
		CompanyID: 1,
		Direction: dto.Direction,
		Amount:    dto.Amount,
		NetAmount: dto.Amount,
	}, nil
}

var _ = Describe("Reimbursement Service", func() {
	var (
		repo    *mockReimbursementRepo
		booker  *mockBooker
		service *reimbursement.Service
		ctx     context.Context

		requester auth.Actor
		finance   auth.Actor
	)

	newClaimDTO := func() reimbursement.CreateReimbursementDTO {
		return reimbursement.CreateReimbursementDTO{
			Description: "ค่าเดินทางพบลูกค้า",
			ClaimDate:   time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
			Amount:      decimal.NewFromInt(1500),
			VATRate:     decimal.NewFromInt(7),
		}
	}

	BeforeEach(func() {
		repo = newMockReimbursementRepo()
		booker = &mockBooker{}
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		bus := events.NewEventBus(logger)
		service = reimbursement.NewService(repo, booker, bus, logger)
		ctx = context.Background()

		requester = auth.Actor{
			UserID:    10,
			CompanyID: 1,
			Permissions: []auth.Permission{
				auth.PermReimbursementsCreate,
				auth.PermReimbursementsRead,
			},
		}
		finance = auth.Actor{
			UserID:      20,
			CompanyID:   1,
			Permissions: []auth.Permission{auth.Permission("reimbursements:*")},
		}
	})

	createPending := func() *reimbursement.Reimbursement {
		claim, err := service.Create(ctx, requester, newClaimDTO())
		Expect(err).NotTo(HaveOccurred())
		return claim
	}

	createPaid := func() *reimbursement.Reimbursement {
		claim := createPending()
		_, err := service.Approve(ctx, finance, claim.ID)
		Expect(err).NotTo(HaveOccurred())
		claim, err = service.Pay(ctx, finance, claim.ID, reimbursement.PayReimbursementDTO{PaymentRef: "TRF-001"})
		Expect(err).NotTo(HaveOccurred())
		return claim
	}

	Describe("Create", func() {
		It("should start pending with recomputed tax amounts", func() {
			claim := createPending()

			Expect(claim.Status).To(Equal(reimbursement.StatusPending))
			Expect(claim.VATAmount.String()).To(Equal("105"))
			Expect(claim.NetAmount.String()).To(Equal("1605"))
			Expect(claim.RequesterID).To(Equal(requester.UserID))
		})
	})

	Describe("approval decisions", func() {
		It("should forbid the requester approving their own claim", func() {
			claim := createPending()

			selfApprover := auth.Actor{
				UserID:      requester.UserID,
				CompanyID:   1,
				Permissions: []auth.Permission{auth.PermReimbursementsApprove},
			}
			_, err := service.Approve(ctx, selfApprover, claim.ID)

			Expect(err).To(MatchError(internal.ErrSelfApproval))
		})

		It("should require a reason on reject", func() {
			claim := createPending()

			_, err := service.Reject(ctx, finance, claim.ID, "")

			Expect(err).To(MatchError(internal.ErrReasonRequired))
		})

		It("should allow deciding a flagged claim either way", func() {
			claim := createPending()

			flagged, err := service.Flag(ctx, finance, claim.ID, "ใบเสร็จไม่ชัดเจน")
			Expect(err).NotTo(HaveOccurred())
			Expect(flagged.Status).To(Equal(reimbursement.StatusFlagged))

			approved, err := service.Approve(ctx, finance, claim.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(approved.Status).To(Equal(reimbursement.StatusApproved))
			Expect(approved.FlaggedReason).To(BeNil())
		})

		It("should not flag anything but a pending claim", func() {
			claim := createPending()
			_, err := service.Approve(ctx, finance, claim.ID)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Flag(ctx, finance, claim.ID, "สงสัย")

			Expect(err).To(MatchError(internal.ErrIllegalTransition))
		})
	})

	Describe("Pay", func() {
		It("should settle an approved claim with a payment reference", func() {
			claim := createPaid()

			Expect(claim.Status).To(Equal(reimbursement.StatusPaid))
			Expect(*claim.PaidBy).To(Equal(finance.UserID))
			Expect(*claim.PaymentRef).To(Equal("TRF-001"))
		})

		It("should refuse paying a pending claim", func() {
			claim := createPending()

			_, err := service.Pay(ctx, finance, claim.ID, reimbursement.PayReimbursementDTO{})

			Expect(err).To(MatchError(internal.ErrIllegalTransition))
		})
	})

	Describe("Convert", func() {
		It("should aggregate paid claims into one expense and mark them consumed", func() {
			a := createPaid()
			b := createPaid()

			expense, err := service.Convert(ctx, finance, reimbursement.ConvertDTO{
				IDs: []int64{a.ID, b.ID},
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(booker.booked).To(HaveLen(1))
			Expect(booker.booked[0].Direction).To(Equal(workflow.DirectionExpense))
			Expect(booker.booked[0].Amount.String()).To(Equal("3210"))

			updated, err := service.GetByID(ctx, finance, a.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(*updated.ConvertedExpenseID).To(Equal(expense.ID))
		})

		It("should refuse converting the same claim twice", func() {
			claim := createPaid()

			_, err := service.Convert(ctx, finance, reimbursement.ConvertDTO{IDs: []int64{claim.ID}})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Convert(ctx, finance, reimbursement.ConvertDTO{IDs: []int64{claim.ID}})

			Expect(err).To(HaveOccurred())
		})

		It("should refuse an unpaid claim", func() {
			claim := createPending()

			_, err := service.Convert(ctx, finance, reimbursement.ConvertDTO{IDs: []int64{claim.ID}})

			Expect(err).To(HaveOccurred())
		})

		It("should refuse mixing requesters", func() {
			a := createPaid()

			other := auth.Actor{
				UserID:      11,
				CompanyID:   1,
				Permissions: []auth.Permission{auth.PermReimbursementsCreate},
			}
			claim, err := service.Create(ctx, other, newClaimDTO())
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Approve(ctx, finance, claim.ID)
			Expect(err).NotTo(HaveOccurred())
			b, err := service.Pay(ctx, finance, claim.ID, reimbursement.PayReimbursementDTO{})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Convert(ctx, finance, reimbursement.ConvertDTO{IDs: []int64{a.ID, b.ID}})

			Expect(err).To(HaveOccurred())
		})
	})
})

package approval_test

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nattapongw/banchee/internal"
	"github.com/nattapongw/banchee/internal/approval"
)

var _ = Describe("State", func() {
	var (
		state *approval.State
		now   time.Time
	)

	BeforeEach(func() {
		state = &approval.State{Status: approval.StatusNotRequired}
		now = time.Now()
	})

	Describe("Submit", func() {
		It("should move to pending and record the submitter", func() {
			err := state.Submit(11, now)

			Expect(err).ToNot(HaveOccurred())
			Expect(state.Status).To(Equal(approval.StatusPending))
			Expect(*state.SubmittedBy).To(Equal(int64(11)))
			Expect(*state.SubmittedAt).To(Equal(now))
		})

		It("should refuse a second submission while pending", func() {
			Expect(state.Submit(11, now)).To(Succeed())

			err := state.Submit(11, now)

			Expect(errors.Is(err, internal.ErrIllegalTransition)).To(BeTrue())
		})
	})

	Describe("Approve", func() {
		BeforeEach(func() {
			Expect(state.Submit(11, now)).To(Succeed())
		})

		It("should approve a pending record by a different actor", func() {
			err := state.Approve(22, now)

			Expect(err).ToNot(HaveOccurred())
			Expect(state.Status).To(Equal(approval.StatusApproved))
			Expect(*state.ApprovedBy).To(Equal(int64(22)))
		})

		It("should block self-approval", func() {
			err := state.Approve(11, now)

			Expect(errors.Is(err, internal.ErrSelfApproval)).To(BeTrue())
			Expect(state.Status).To(Equal(approval.StatusPending))
		})

		It("should refuse approving twice", func() {
			Expect(state.Approve(22, now)).To(Succeed())

			err := state.Approve(33, now)

			Expect(errors.Is(err, internal.ErrIllegalTransition)).To(BeTrue())
		})
	})

	Describe("Reject", func() {
		BeforeEach(func() {
			Expect(state.Submit(11, now)).To(Succeed())
		})

		It("should record the reason and the rejecting actor", func() {
			err := state.Reject(22, "ใบกำกับภาษีไม่ครบ", now)

			Expect(err).ToNot(HaveOccurred())
			Expect(state.Status).To(Equal(approval.StatusRejected))
			Expect(*state.RejectedReason).To(Equal("ใบกำกับภาษีไม่ครบ"))
		})

		It("should require a reason", func() {
			err := state.Reject(22, "", now)

			Expect(errors.Is(err, internal.ErrReasonRequired)).To(BeTrue())
			Expect(state.Status).To(Equal(approval.StatusPending))
		})

		It("should fail the second rejection because the record is no longer pending", func() {
			Expect(state.Reject(22, "duplicate receipt", now)).To(Succeed())

			err := state.Reject(22, "duplicate receipt", now)

			Expect(errors.Is(err, internal.ErrIllegalTransition)).To(BeTrue())
		})

		It("should block rejecting one's own submission", func() {
			err := state.Reject(11, "changed my mind", now)

			Expect(errors.Is(err, internal.ErrSelfApproval)).To(BeTrue())
		})
	})

	Describe("Withdraw", func() {
		BeforeEach(func() {
			Expect(state.Submit(11, now)).To(Succeed())
		})

		It("should reset to not required and clear submission fields", func() {
			err := state.Withdraw(11, 99)

			Expect(err).ToNot(HaveOccurred())
			Expect(state.Status).To(Equal(approval.StatusNotRequired))
			Expect(state.SubmittedBy).To(BeNil())
			Expect(state.SubmittedAt).To(BeNil())
		})

		It("should allow the record creator to withdraw", func() {
			err := state.Withdraw(99, 99)

			Expect(err).ToNot(HaveOccurred())
			Expect(state.Status).To(Equal(approval.StatusNotRequired))
		})

		It("should refuse anyone else", func() {
			err := state.Withdraw(55, 99)

			Expect(errors.Is(err, internal.ErrForbidden)).To(BeTrue())
			Expect(state.Status).To(Equal(approval.StatusPending))
		})

		It("should refuse withdrawing an approved record", func() {
			Expect(state.Approve(22, now)).To(Succeed())

			err := state.Withdraw(11, 99)

			Expect(errors.Is(err, internal.ErrIllegalTransition)).To(BeTrue())
		})
	})
})

var _ = Describe("GatePayment", func() {
	It("should pass records that need no approval or already have it", func() {
		Expect(approval.GatePayment(approval.StatusNotRequired)).To(Succeed())
		Expect(approval.GatePayment(approval.StatusApproved)).To(Succeed())
	})

	It("should block pending records with the pending error", func() {
		err := approval.GatePayment(approval.StatusPending)

		Expect(errors.Is(err, internal.ErrApprovalPending)).To(BeTrue())
	})

	It("should block rejected records with the rejected error", func() {
		err := approval.GatePayment(approval.StatusRejected)

		Expect(errors.Is(err, internal.ErrApprovalRejected)).To(BeTrue())
	})
})

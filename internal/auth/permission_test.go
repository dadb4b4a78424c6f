package auth_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nattapongw/banchee/internal/auth"
)

var _ = Describe("Permission", func() {
	Describe("Covers", func() {
		It("should match an exact permission", func() {
			Expect(auth.PermTransactionsApprove.Covers(auth.PermTransactionsApprove)).To(BeTrue())
		})

		It("should not match a different action in the same module", func() {
			Expect(auth.PermTransactionsRead.Covers(auth.PermTransactionsApprove)).To(BeFalse())
		})

		It("should let a module wildcard cover every action in that module", func() {
			wildcard := auth.Permission("transactions:*")

			Expect(wildcard.Covers(auth.PermTransactionsCreate)).To(BeTrue())
			Expect(wildcard.Covers(auth.PermTransactionsApprove)).To(BeTrue())
			Expect(wildcard.Covers(auth.PermReimbursementsApprove)).To(BeFalse())
		})

		It("should not let a required wildcard be satisfied by a plain permission", func() {
			Expect(auth.PermTransactionsRead.Covers(auth.Permission("transactions:*"))).To(BeFalse())
		})
	})

	Describe("Actor.HasPermission", func() {
		It("should bypass the permission list for company owners", func() {
			owner := auth.Actor{UserID: 1, CompanyID: 1, IsOwner: true}

			Expect(owner.HasPermission(auth.PermTransactionsApprove)).To(BeTrue())
			Expect(owner.HasPermission(auth.PermReimbursementsPay)).To(BeTrue())
		})

		It("should check the list for everyone else", func() {
			staff := auth.Actor{
				UserID:      2,
				CompanyID:   1,
				Permissions: []auth.Permission{auth.PermTransactionsCreate, "reimbursements:*"},
			}

			Expect(staff.HasPermission(auth.PermTransactionsCreate)).To(BeTrue())
			Expect(staff.HasPermission(auth.PermTransactionsApprove)).To(BeFalse())
			Expect(staff.HasPermission(auth.PermReimbursementsApprove)).To(BeTrue())
		})

		It("should deny an actor with no permissions", func() {
			Expect(auth.Actor{UserID: 3}.HasPermission(auth.PermTransactionsRead)).To(BeFalse())
		})
	})
})

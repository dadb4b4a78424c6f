package auth

import "strings"

// Permission is a "module:action" capability string, e.g.
// "transactions:approve". The action part may be the wildcard "*",
// which grants every action in the module.
type Permission string

const (
	PermTransactionsCreate  Permission = "transactions:create"
	PermTransactionsRead    Permission = "transactions:read"
	PermTransactionsUpdate  Permission = "transactions:update"
	PermTransactionsDelete  Permission = "transactions:delete"
	PermTransactionsPay     Permission = "transactions:pay"
	PermTransactionsApprove Permission = "transactions:approve"
	PermTransactionsSend    Permission = "transactions:send"

	PermReimbursementsCreate  Permission = "reimbursements:create"
	PermReimbursementsRead    Permission = "reimbursements:read"
	PermReimbursementsApprove Permission = "reimbursements:approve"
	PermReimbursementsPay     Permission = "reimbursements:pay"
)

func (p Permission) Module() string {
	if i := strings.IndexByte(string(p), ':'); i >= 0 {
		return string(p)[:i]
	}
	return string(p)
}

func (p Permission) Action() string {
	if i := strings.IndexByte(string(p), ':'); i >= 0 {
		return string(p)[i+1:]
	}
	return ""
}

// Covers reports whether holding p satisfies the required permission.
// "transactions:*" covers every transactions action.
func (p Permission) Covers(required Permission) bool {
	if p == required {
		return true
	}
	return p.Action() == "*" && p.Module() == required.Module()
}

// HasPermission is the single authorization check for mutating
// operations: company owners bypass the permission list entirely.
func (a Actor) HasPermission(required Permission) bool {
	if a.IsOwner {
		return true
	}
	for _, p := range a.Permissions {
		if p.Covers(required) {
			return true
		}
	}
	return false
}

func (a Actor) HasAnyPermission(required ...Permission) bool {
	for _, r := range required {
		if a.HasPermission(r) {
			return true
		}
	}
	return false
}

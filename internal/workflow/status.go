package workflow

// ApprovalStatus is the maker-checker review state carried by maintained
// records (members, products, transactions, saccos, roles).
type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "Pending"
	StatusApproved ApprovalStatus = "Approved"
	StatusReturned ApprovalStatus = "Returned"
	StatusRejected ApprovalStatus = "Rejected"
)

// OperationalStatus is the running state of an account. It shares storage
// column conventions with ApprovalStatus in the legacy schema but is a
// different state machine, so it gets its own type.
type OperationalStatus string

const (
	AccountActive    OperationalStatus = "Active"
	AccountInactive  OperationalStatus = "Inactive"
	AccountSuspended OperationalStatus = "Suspended"
	AccountClosed    OperationalStatus = "Closed"
)

// ValidStatus reports whether s is one of the four approval states.
func ValidStatus(s ApprovalStatus) bool {
	switch s {
	case StatusPending, StatusApproved, StatusReturned, StatusRejected:
		return true
	}
	return false
}

// ValidTarget reports whether s is a status a verifier may move a record to.
// Pending is only ever an initial state, never a target.
func ValidTarget(s ApprovalStatus) bool {
	switch s {
	case StatusApproved, StatusReturned, StatusRejected:
		return true
	}
	return false
}

// ValidOperationalStatus reports whether s is a known account running state.
func ValidOperationalStatus(s OperationalStatus) bool {
	switch s {
	case AccountActive, AccountInactive, AccountSuspended, AccountClosed:
		return true
	}
	return false
}

// AllowedTargets returns the statuses a record in state from may move to.
// Pending and Returned records are open for review; Approved and Rejected
// are terminal.
func AllowedTargets(from ApprovalStatus) []ApprovalStatus {
	switch from {
	case StatusPending, StatusReturned:
		return []ApprovalStatus{StatusApproved, StatusReturned, StatusRejected}
	}
	return nil
}

// CanTransition reports whether a record may move from one status to another.
// adminOverride lets an administrator reopen terminal records, e.g. to reject
// an approval made in error.
func CanTransition(from, to ApprovalStatus, adminOverride bool) bool {
	if !ValidTarget(to) {
		return false
	}
	if adminOverride {
		return true
	}
	for _, allowed := range AllowedTargets(from) {
		if allowed == to {
			return true
		}
	}
	return false
}

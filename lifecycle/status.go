package lifecycle

// Status represents the lifecycle state of an internship request
type Status string

const (
	// StatusSubmitted is the initial state set when a student submits a request
	StatusSubmitted Status = "submitted"
	// StatusAdvisorApproved means the department advisor approved the request
	StatusAdvisorApproved Status = "advisor_approved"
	// StatusAdminApproved is the terminal success state
	StatusAdminApproved Status = "admin_approved"
	// StatusRejected is the terminal rejection state, reachable from either review stage
	StatusRejected Status = "rejected"
)

// AllStatuses lists every valid status, in normal progression order
var AllStatuses = []Status{
	StatusSubmitted,
	StatusAdvisorApproved,
	StatusAdminApproved,
	StatusRejected,
}

// IsValid reports whether s is a member of the closed status set
func (s Status) IsValid() bool {
	switch s {
	case StatusSubmitted, StatusAdvisorApproved, StatusAdminApproved, StatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are permitted from s
func (s Status) IsTerminal() bool {
	return s == StatusAdminApproved || s == StatusRejected
}

// Action is a reviewer's intent on a request
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// IsValid reports whether a is a recognized action
func (a Action) IsValid() bool {
	return a == ActionApprove || a == ActionReject
}

// Decision is the output of a successful Decide call
type Decision struct {
	Next Status
	// RejectReason and RejectedBy are set only when Next is StatusRejected
	RejectReason string
	RejectedBy   Role
}

// Decide computes the next status for a request given the acting role and
// intended action. It is a pure function: no I/O, no side effects, so the
// full (status, role, action) space can be tested exhaustively.
//
// Legal transitions:
//
//	approve: (advisor, submitted)        -> advisor_approved
//	         (admin, advisor_approved)   -> admin_approved
//	reject:  (advisor, submitted)        -> rejected, tagged "advisor"
//	         (admin, advisor_approved)   -> rejected, tagged "admin"
//
// Terminal statuses fail with ErrInvalidState. Rejections require a non-empty
// reason. Every other combination fails with ErrUnauthorizedTransition.
func Decide(current Status, role Role, action Action, reason string) (Decision, error) {
	if !current.IsValid() {
		return Decision{}, ErrInvalidState
	}
	if current.IsTerminal() {
		return Decision{}, ErrInvalidState
	}
	if !action.IsValid() {
		return Decision{}, ErrUnauthorizedTransition
	}

	switch action {
	case ActionApprove:
		if role == RoleAdvisor && current == StatusSubmitted {
			return Decision{Next: StatusAdvisorApproved}, nil
		}
		if role == RoleAdmin && current == StatusAdvisorApproved {
			return Decision{Next: StatusAdminApproved}, nil
		}
	case ActionReject:
		if reason == "" {
			return Decision{}, &ValidationError{Field: "reason", Message: "rejection reason is required"}
		}
		if role == RoleAdvisor && current == StatusSubmitted {
			return Decision{Next: StatusRejected, RejectReason: reason, RejectedBy: RoleAdvisor}, nil
		}
		if role == RoleAdmin && current == StatusAdvisorApproved {
			return Decision{Next: StatusRejected, RejectReason: reason, RejectedBy: RoleAdmin}, nil
		}
	}

	return Decision{}, ErrUnauthorizedTransition
}

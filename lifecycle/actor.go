package lifecycle

// Role identifies a participant type in the placement workflow
type Role string

const (
	// RoleStudent submits requests and can only see their own
	RoleStudent Role = "student"
	// RoleAdvisor is the first-stage reviewer, scoped to one department
	RoleAdvisor Role = "advisor"
	// RoleAdmin is the second-stage reviewer with final authority, unscoped
	RoleAdmin Role = "admin"
	// RoleCompanyContact is reserved for external company contacts; they hold
	// no transition rights yet
	RoleCompanyContact Role = "company_contact"
)

// IsValid reports whether r is a recognized role
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleAdvisor, RoleAdmin, RoleCompanyContact:
		return true
	}
	return false
}

// Actor is the identity context passed explicitly into every core call.
// The core trusts the caller to have authenticated it; it never reads
// identity out of ambient state.
type Actor struct {
	UserID     uint
	Role       Role
	Department string
	StudentID  string
}

// CanViewRequest reports whether the actor may observe a request owned by
// studentID in department. Admins see everything, students see their own
// requests regardless of state, advisors see their department only.
func (a Actor) CanViewRequest(studentID, department string) bool {
	switch a.Role {
	case RoleAdmin:
		return true
	case RoleStudent:
		return a.StudentID != "" && a.StudentID == studentID
	case RoleAdvisor:
		return a.Department != "" && a.Department == department
	}
	return false
}

// CanActOnRequest reports whether the actor is within scope to attempt a
// transition on a request in department. Whether the transition itself is
// legal is Decide's job; this only covers advisor department scoping.
func (a Actor) CanActOnRequest(department string) bool {
	switch a.Role {
	case RoleAdmin:
		return true
	case RoleAdvisor:
		return a.Department != "" && a.Department == department
	}
	return false
}

package model

import (
	"time"

	"gorm.io/gorm"

	"github.com/internship-hub/placement-api/lifecycle"
)

// InternshipRequest is the aggregate record for one placement request.
// Identity and submission fields are fixed at creation; Status, RejectReason,
// RejectedBy and the decision fields change only through store transitions.
type InternshipRequest struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Submitting student, denormalized at submission time
	StudentID   string `gorm:"type:varchar(20);not null;index" json:"student_id"`
	StudentName string `gorm:"type:varchar(255);not null" json:"student_name"`
	Department  string `gorm:"type:varchar(255);not null;index" json:"department"`

	// Placement payload
	Company        string `gorm:"type:varchar(255);not null" json:"company"`
	Position       string `gorm:"type:varchar(255);not null" json:"position"`
	CompanyAddress string `gorm:"type:text" json:"company_address"`
	ContactName    string `gorm:"type:varchar(255)" json:"contact_name"`
	ContactEmail   string `gorm:"type:varchar(255)" json:"contact_email"`
	StartDate      string `gorm:"type:varchar(10)" json:"start_date"` // YYYY-MM-DD
	EndDate        string `gorm:"type:varchar(10)" json:"end_date"`   // YYYY-MM-DD
	JobDescription string `gorm:"type:text" json:"job_description"`
	RequiredSkills string `gorm:"type:text" json:"required_skills"`

	// Lifecycle state, writable only via Storage.ApplyTransition
	Status        lifecycle.Status `gorm:"type:varchar(20);not null;index" json:"status"`
	SubmittedDate time.Time        `gorm:"autoCreateTime" json:"submitted_date"`
	RejectReason  string           `gorm:"type:text" json:"reject_reason,omitempty"`
	RejectedBy    string           `gorm:"type:varchar(20)" json:"rejected_by,omitempty"` // advisor or admin
	DecidedAt     *time.Time       `json:"decided_at,omitempty"`
	DecidedBy     *uint            `json:"decided_by,omitempty"` // user id of the last reviewer

	AuditLog []RequestAuditLog `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for InternshipRequest
func (InternshipRequest) TableName() string {
	return "internship_requests"
}

// Validate checks the required submission fields, mirroring the construction
// contract: studentId, company and position must be present.
func (r *InternshipRequest) Validate() error {
	if r.StudentID == "" {
		return &lifecycle.ValidationError{Field: "student_id", Message: "student id is required"}
	}
	if r.Company == "" {
		return &lifecycle.ValidationError{Field: "company", Message: "company is required"}
	}
	if r.Position == "" {
		return &lifecycle.ValidationError{Field: "position", Message: "position is required"}
	}
	return nil
}

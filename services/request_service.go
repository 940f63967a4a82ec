package services

import (
	"context"

	"github.com/internship-hub/placement-api/database"
	"github.com/internship-hub/placement-api/lifecycle"
	"github.com/internship-hub/placement-api/model"
	"github.com/internship-hub/placement-api/utils/validation"
)

// RequestService is the inbound boundary for submissions and transitions.
// Identity arrives as an explicit lifecycle.Actor on every call.
type RequestService struct {
	store     database.Storage
	validator *validation.Validator
}

// NewRequestService creates a new request service
func NewRequestService(store database.Storage) *RequestService {
	return &RequestService{
		store:     store,
		validator: validation.NewValidator(),
	}
}

// CreateRequestInput is the submission payload
type CreateRequestInput struct {
	Company        string `json:"company" validate:"required,max=255"`
	Position       string `json:"position" validate:"required,max=255"`
	CompanyAddress string `json:"company_address" validate:"omitempty,max=2000"`
	ContactName    string `json:"contact_name" validate:"omitempty,max=255"`
	ContactEmail   string `json:"contact_email" validate:"omitempty,email,max=255"`
	StartDate      string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate        string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	JobDescription string `json:"job_description" validate:"omitempty,max=10000"`
	RequiredSkills string `json:"required_skills" validate:"omitempty,max=10000"`
}

// Create submits a new placement request on behalf of the acting student.
// Ownership is forced to the actor: a student cannot submit for someone else.
// studentName is denormalized onto the request and fixed from then on.
func (s *RequestService) Create(ctx context.Context, actor lifecycle.Actor, studentName string, input CreateRequestInput) (*model.InternshipRequest, error) {
	if actor.Role != lifecycle.RoleStudent {
		return nil, lifecycle.ErrUnauthorizedTransition
	}
	if actor.StudentID == "" {
		return nil, &lifecycle.ValidationError{Field: "student_id", Message: "student id is required"}
	}

	if err := s.validator.ValidateStruct(input); err != nil {
		return nil, validation.FirstViolation(err)
	}

	req := &model.InternshipRequest{
		StudentID:      actor.StudentID,
		StudentName:    studentName,
		Department:     actor.Department,
		Company:        validation.SanitizeString(input.Company),
		Position:       validation.SanitizeString(input.Position),
		CompanyAddress: validation.SanitizeString(input.CompanyAddress),
		ContactName:    validation.SanitizeString(input.ContactName),
		ContactEmail:   validation.SanitizeString(input.ContactEmail),
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		JobDescription: validation.SanitizeString(input.JobDescription),
		RequiredSkills: validation.SanitizeString(input.RequiredSkills),
		Status:         lifecycle.StatusSubmitted,
	}
	if err := s.store.CreateRequest(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// CreateForStudent is the admin path: submits on behalf of a named student.
func (s *RequestService) CreateForStudent(ctx context.Context, actor lifecycle.Actor, studentID, studentName, department string, input CreateRequestInput) (*model.InternshipRequest, error) {
	if actor.Role != lifecycle.RoleAdmin {
		return nil, lifecycle.ErrUnauthorizedTransition
	}
	if err := s.validator.ValidateStruct(input); err != nil {
		return nil, validation.FirstViolation(err)
	}

	req := &model.InternshipRequest{
		StudentID:      studentID,
		StudentName:    studentName,
		Department:     department,
		Company:        validation.SanitizeString(input.Company),
		Position:       validation.SanitizeString(input.Position),
		CompanyAddress: validation.SanitizeString(input.CompanyAddress),
		ContactName:    validation.SanitizeString(input.ContactName),
		ContactEmail:   validation.SanitizeString(input.ContactEmail),
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		JobDescription: validation.SanitizeString(input.JobDescription),
		RequiredSkills: validation.SanitizeString(input.RequiredSkills),
		Status:         lifecycle.StatusSubmitted,
	}
	if err := s.store.CreateRequest(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Get returns a single request if the actor is in scope for it
func (s *RequestService) Get(ctx context.Context, actor lifecycle.Actor, id uint) (*model.InternshipRequest, error) {
	req, err := s.store.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanViewRequest(req.StudentID, req.Department) {
		return nil, lifecycle.ErrUnauthorizedTransition
	}
	return req, nil
}

// History returns the transition audit trail for a request in scope
func (s *RequestService) History(ctx context.Context, actor lifecycle.Actor, id uint) ([]model.RequestAuditLog, error) {
	req, err := s.store.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanViewRequest(req.StudentID, req.Department) {
		return nil, lifecycle.ErrUnauthorizedTransition
	}
	return s.store.ListAuditLog(ctx, id)
}

// Transition applies a review action on a request. Advisor department scope
// is enforced here before the engine runs; department is immutable, so the
// check cannot be invalidated by a concurrent transition.
func (s *RequestService) Transition(ctx context.Context, actor lifecycle.Actor, id uint, action lifecycle.Action, reason string) (*model.InternshipRequest, error) {
	req, err := s.store.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanActOnRequest(req.Department) {
		return nil, lifecycle.ErrUnauthorizedTransition
	}
	return s.store.ApplyTransition(ctx, id, actor, action, reason)
}

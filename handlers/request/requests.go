package request

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/internship-hub/placement-api/database"
	"github.com/internship-hub/placement-api/lifecycle"
	"github.com/internship-hub/placement-api/services"
	"github.com/internship-hub/placement-api/utils/middleware"
	"github.com/internship-hub/placement-api/utils/response"
)

// RequestHandler handles internship request endpoints
type RequestHandler struct {
	service *services.RequestService
	query   *services.QueryService
}

// NewRequestHandler creates a new request handler
func NewRequestHandler(service *services.RequestService, query *services.QueryService) *RequestHandler {
	return &RequestHandler{
		service: service,
		query:   query,
	}
}

// CreateRequest is the submission payload. An admin may submit on behalf of a
// student by setting the student_* fields; students always submit as themselves.
type CreateRequest struct {
	services.CreateRequestInput
	StudentID   string `json:"student_id,omitempty"`
	StudentName string `json:"student_name,omitempty"`
	Department  string `json:"department,omitempty"`
}

// TransitionRequest is the decision payload
type TransitionRequest struct {
	Action lifecycle.Action `json:"action"`
	Reason string           `json:"reason,omitempty"`
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// List returns the actor-scoped request listing with filter and sort params:
// ?department=&student_id=&status=a,b&q=&sort=student_id&desc=true
func (h *RequestHandler) List(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	filter := database.RequestFilter{
		StudentID:  c.Query("student_id"),
		Department: c.Query("department"),
		SearchText: c.Query("q"),
	}

	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			status := lifecycle.Status(strings.TrimSpace(s))
			if !status.IsValid() {
				return response.ValidationFailed(c, "status", "unknown status "+strconv.Quote(string(status)))
			}
			filter.StatusIn = append(filter.StatusIn, status)
		}
	}

	sortSpec := services.SortSpec{
		Key:        services.SortKey(c.Query("sort")),
		Descending: c.Query("desc") == "true",
	}

	requests, err := h.query.List(c.Context(), actor, filter, sortSpec)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, requests)
}

// Get returns one request if the caller is in scope for it
func (h *RequestHandler) Get(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid request id")
	}

	req, err := h.service.Get(c.Context(), actor, id)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, req)
}

// History returns the audit trail for a request
func (h *RequestHandler) History(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid request id")
	}

	entries, err := h.service.History(c.Context(), actor, id)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, entries)
}

// Create submits a new internship request
func (h *RequestHandler) Create(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if actor.Role == lifecycle.RoleAdmin {
		created, err := h.service.CreateForStudent(c.Context(), actor, req.StudentID, req.StudentName, req.Department, req.CreateRequestInput)
		if err != nil {
			return response.DomainError(c, err)
		}
		return response.Created(c, created)
	}

	user, _ := middleware.GetUser(c)
	studentName := ""
	if user != nil {
		studentName = user.Name
	}

	created, err := h.service.Create(c.Context(), actor, studentName, req.CreateRequestInput)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Created(c, created)
}

// Transition applies an approve/reject decision to a request
func (h *RequestHandler) Transition(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid request id")
	}

	var req TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Action == "" {
		return response.ValidationFailed(c, "action", "action is required")
	}

	updated, err := h.service.Transition(c.Context(), actor, id, req.Action, req.Reason)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, updated)
}

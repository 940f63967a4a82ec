package database

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/internship-hub/placement-api/lifecycle"
	"github.com/internship-hub/placement-api/model"
)

func newRequest(studentID, name, department, company, position string) *model.InternshipRequest {
	return &model.InternshipRequest{
		StudentID:   studentID,
		StudentName: name,
		Department:  department,
		Company:     company,
		Position:    position,
	}
}

func seedStore(t *testing.T) *MemoryStore {
	t.Helper()
	store := NewMemoryStore()
	ctx := context.Background()

	requests := []*model.InternshipRequest{
		newRequest("65012345", "Anan", "Computer Science", "Acme Software", "Backend Intern"),
		newRequest("65054321", "Beam", "Computer Science", "Globex", "QA Intern"),
		newRequest("64011111", "Chai", "Business", "Initech", "Marketing Intern"),
	}
	for _, req := range requests {
		if err := store.CreateRequest(ctx, req); err != nil {
			t.Fatalf("seed request: %v", err)
		}
	}
	return store
}

func TestCreateRequestValidation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	cases := []struct {
		name  string
		req   *model.InternshipRequest
		field string
	}{
		{"missing student id", newRequest("", "Anan", "CS", "Acme", "Intern"), "student_id"},
		{"missing company", newRequest("65012345", "Anan", "CS", "", "Intern"), "company"},
		{"missing position", newRequest("65012345", "Anan", "CS", "Acme", ""), "position"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := store.CreateRequest(ctx, tc.req)
			ve, ok := lifecycle.IsValidationError(err)
			if !ok {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tc.field {
				t.Errorf("expected field %s, got %s", tc.field, ve.Field)
			}
		})
	}
}

func TestCreateRequestDefaults(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	req := newRequest("65012345", "Anan", "Computer Science", "Acme Software", "Backend Intern")
	if err := store.CreateRequest(ctx, req); err != nil {
		t.Fatalf("create: %v", err)
	}
	if req.ID == 0 {
		t.Error("expected id to be assigned")
	}
	if req.Status != lifecycle.StatusSubmitted {
		t.Errorf("expected submitted, got %s", req.Status)
	}
	if req.SubmittedDate.IsZero() {
		t.Error("expected submitted date to be set")
	}
}

func TestGetRequestNotFound(t *testing.T) {
	store := NewMemoryStore()
	if _, err := store.GetRequest(context.Background(), 42); !errors.Is(err, lifecycle.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListRequestsDepartmentFilter(t *testing.T) {
	store := seedStore(t)

	requests, err := store.ListRequests(context.Background(), RequestFilter{Department: "Computer Science"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(requests))
	}
	// Insertion order when no sort key is set
	if requests[0].StudentID != "65012345" || requests[1].StudentID != "65054321" {
		t.Errorf("expected insertion order, got %s then %s", requests[0].StudentID, requests[1].StudentID)
	}
	for _, req := range requests {
		if req.Department != "Computer Science" {
			t.Errorf("filter leaked department %s", req.Department)
		}
	}
}

func TestListRequestsSearchText(t *testing.T) {
	store := seedStore(t)

	requests, err := store.ListRequests(context.Background(), RequestFilter{SearchText: "globex"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(requests) != 1 || requests[0].Company != "Globex" {
		t.Fatalf("case-insensitive company search failed: %+v", requests)
	}

	requests, err = store.ListRequests(context.Background(), RequestFilter{SearchText: "INTERN"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(requests) != 3 {
		t.Errorf("case-insensitive position search expected 3, got %d", len(requests))
	}
}

func TestListRequestsStatusIn(t *testing.T) {
	store := seedStore(t)
	ctx := context.Background()
	advisor := lifecycle.Actor{UserID: 10, Role: lifecycle.RoleAdvisor, Department: "Computer Science"}

	if _, err := store.ApplyTransition(ctx, 1, advisor, lifecycle.ActionApprove, ""); err != nil {
		t.Fatalf("approve: %v", err)
	}

	requests, err := store.ListRequests(ctx, RequestFilter{StatusIn: []lifecycle.Status{lifecycle.StatusAdvisorApproved}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(requests) != 1 || requests[0].ID != 1 {
		t.Fatalf("status filter failed: %+v", requests)
	}
}

func TestApplyTransitionApproveChain(t *testing.T) {
	store := seedStore(t)
	ctx := context.Background()
	advisor := lifecycle.Actor{UserID: 10, Role: lifecycle.RoleAdvisor, Department: "Computer Science"}
	admin := lifecycle.Actor{UserID: 20, Role: lifecycle.RoleAdmin}

	req, err := store.ApplyTransition(ctx, 1, advisor, lifecycle.ActionApprove, "")
	if err != nil {
		t.Fatalf("advisor approve: %v", err)
	}
	if req.Status != lifecycle.StatusAdvisorApproved {
		t.Fatalf("expected advisor_approved, got %s", req.Status)
	}

	req, err = store.ApplyTransition(ctx, 1, admin, lifecycle.ActionApprove, "")
	if err != nil {
		t.Fatalf("admin approve: %v", err)
	}
	if req.Status != lifecycle.StatusAdminApproved {
		t.Fatalf("expected admin_approved, got %s", req.Status)
	}

	// Terminal: any further action fails, no silent no-op
	if _, err := store.ApplyTransition(ctx, 1, admin, lifecycle.ActionApprove, ""); !errors.Is(err, lifecycle.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState after terminal approve, got %v", err)
	}
	if _, err := store.ApplyTransition(ctx, 1, admin, lifecycle.ActionReject, "late"); !errors.Is(err, lifecycle.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState on reject after approval, got %v", err)
	}

	entries, err := store.ListAuditLog(ctx, 1)
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected exactly one audit row per transition, got %d", len(entries))
	}
	if entries[0].ToStatus != string(lifecycle.StatusAdvisorApproved) || entries[1].ToStatus != string(lifecycle.StatusAdminApproved) {
		t.Errorf("audit rows out of order: %+v", entries)
	}
}

// rejectReason is present iff status is rejected, and a second reject on an
// already rejected request leaves the first reason untouched.
func TestApplyTransitionRejectIdempotence(t *testing.T) {
	store := seedStore(t)
	ctx := context.Background()
	advisor := lifecycle.Actor{UserID: 10, Role: lifecycle.RoleAdvisor, Department: "Computer Science"}

	before, _ := store.GetRequest(ctx, 1)
	if before.RejectReason != "" {
		t.Fatal("reject reason must be empty before rejection")
	}

	req, err := store.ApplyTransition(ctx, 1, advisor, lifecycle.ActionReject, "ข้อมูลไม่ครบ")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if req.Status != lifecycle.StatusRejected {
		t.Fatalf("expected rejected, got %s", req.Status)
	}
	if req.RejectReason != "ข้อมูลไม่ครบ" {
		t.Errorf("expected thai reject reason preserved, got %q", req.RejectReason)
	}
	if req.RejectedBy != string(lifecycle.RoleAdvisor) {
		t.Errorf("expected reject tagged advisor, got %s", req.RejectedBy)
	}

	if _, err := store.ApplyTransition(ctx, 1, advisor, lifecycle.ActionReject, "second reason"); !errors.Is(err, lifecycle.ErrInvalidState) {
		t.Fatalf("second reject expected ErrInvalidState, got %v", err)
	}

	after, _ := store.GetRequest(ctx, 1)
	if after.RejectReason != "ข้อมูลไม่ครบ" {
		t.Errorf("second reject must not overwrite the reason, got %q", after.RejectReason)
	}
}

func TestApplyTransitionEmptyReasonNoWrite(t *testing.T) {
	store := seedStore(t)
	ctx := context.Background()
	advisor := lifecycle.Actor{UserID: 10, Role: lifecycle.RoleAdvisor, Department: "Computer Science"}

	_, err := store.ApplyTransition(ctx, 1, advisor, lifecycle.ActionReject, "")
	if _, ok := lifecycle.IsValidationError(err); !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	req, _ := store.GetRequest(ctx, 1)
	if req.Status != lifecycle.StatusSubmitted {
		t.Errorf("empty reason must not change state, got %s", req.Status)
	}
	entries, _ := store.ListAuditLog(ctx, 1)
	if len(entries) != 0 {
		t.Errorf("failed transition must not write audit rows, got %d", len(entries))
	}
}

func TestApplyTransitionNotFound(t *testing.T) {
	store := NewMemoryStore()
	admin := lifecycle.Actor{UserID: 20, Role: lifecycle.RoleAdmin}
	if _, err := store.ApplyTransition(context.Background(), 99, admin, lifecycle.ActionApprove, ""); !errors.Is(err, lifecycle.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// Two admins racing to approve the same advisor_approved request: exactly one
// wins, the other observes the already-updated state as ErrInvalidState.
func TestApplyTransitionConcurrentApprovalRace(t *testing.T) {
	store := seedStore(t)
	ctx := context.Background()
	advisor := lifecycle.Actor{UserID: 10, Role: lifecycle.RoleAdvisor, Department: "Computer Science"}

	if _, err := store.ApplyTransition(ctx, 1, advisor, lifecycle.ActionApprove, ""); err != nil {
		t.Fatalf("advisor approve: %v", err)
	}

	const racers = 8
	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			admin := lifecycle.Actor{UserID: uint(100 + i), Role: lifecycle.RoleAdmin}
			_, errs[i] = store.ApplyTransition(ctx, 1, admin, lifecycle.ActionApprove, "")
		}(i)
	}
	wg.Wait()

	wins, losses := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, lifecycle.ErrInvalidState):
			losses++
		default:
			t.Fatalf("unexpected race error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}
	if losses != racers-1 {
		t.Fatalf("expected %d losers, got %d", racers-1, losses)
	}

	req, _ := store.GetRequest(ctx, 1)
	if req.Status != lifecycle.StatusAdminApproved {
		t.Errorf("expected admin_approved after race, got %s", req.Status)
	}
	entries, _ := store.ListAuditLog(ctx, 1)
	if len(entries) != 2 {
		t.Errorf("race must produce exactly one admin audit row, got %d total", len(entries))
	}
}

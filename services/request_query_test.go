package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/internship-hub/placement-api/database"
	"github.com/internship-hub/placement-api/lifecycle"
	"github.com/internship-hub/placement-api/model"
)

func seedQueryStore(t *testing.T) *database.MemoryStore {
	t.Helper()
	store := database.NewMemoryStore()
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	seed := []model.InternshipRequest{
		{StudentID: "65012345", StudentName: "Anan", Department: "Computer Science", Company: "Acme Software", Position: "Backend Intern", SubmittedDate: base.Add(48 * time.Hour)},
		{StudentID: "CS-650099", StudentName: "Beam", Department: "Computer Science", Company: "Globex", Position: "QA Intern", SubmittedDate: base},
		{StudentID: "64011111", StudentName: "Chai", Department: "Business", Company: "Initech", Position: "Marketing Intern", SubmittedDate: base.Add(24 * time.Hour)},
		{StudentID: "65000500", StudentName: "Dao", Department: "Business", Company: "Acme Software", Position: "Sales Intern"},
	}
	for i := range seed {
		req := seed[i]
		if err := store.CreateRequest(ctx, &req); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return store
}

func studentIDs(requests []model.InternshipRequest) []string {
	ids := make([]string, len(requests))
	for i, r := range requests {
		ids[i] = r.StudentID
	}
	return ids
}

func TestListRoleScopedDefaults(t *testing.T) {
	store := seedQueryStore(t)
	svc := NewQueryService(store)
	ctx := context.Background()

	own, err := svc.List(ctx, studentAnan, database.RequestFilter{}, SortSpec{})
	if err != nil {
		t.Fatalf("student list: %v", err)
	}
	if len(own) != 1 || own[0].StudentID != "65012345" {
		t.Errorf("student must see only own requests: %v", studentIDs(own))
	}

	dept, err := svc.List(ctx, advisorCS, database.RequestFilter{}, SortSpec{})
	if err != nil {
		t.Fatalf("advisor list: %v", err)
	}
	if len(dept) != 2 {
		t.Errorf("advisor must see own department only, got %v", studentIDs(dept))
	}

	all, err := svc.List(ctx, adminActor, database.RequestFilter{}, SortSpec{})
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("admin must see everything, got %d", len(all))
	}
}

// Scenario E: exact department filter, insertion order when no sort key set
func TestListDepartmentFilterInsertionOrder(t *testing.T) {
	store := seedQueryStore(t)
	svc := NewQueryService(store)

	requests, err := svc.List(context.Background(), adminActor, database.RequestFilter{Department: "Business"}, SortSpec{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	got := studentIDs(requests)
	want := []string{"64011111", "65000500"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected insertion order %v, got %v", want, got)
		}
	}
}

func TestListAdvisorCannotWidenScope(t *testing.T) {
	store := seedQueryStore(t)
	svc := NewQueryService(store)

	_, err := svc.List(context.Background(), advisorCS, database.RequestFilter{Department: "Business"}, SortSpec{})
	if !errors.Is(err, lifecycle.ErrUnauthorizedTransition) {
		t.Errorf("advisor filtering a foreign department expected ErrUnauthorizedTransition, got %v", err)
	}
}

// student_id sorting strips non-digits and compares numerically
func TestListSortByStudentID(t *testing.T) {
	store := seedQueryStore(t)
	svc := NewQueryService(store)

	requests, err := svc.List(context.Background(), adminActor, database.RequestFilter{}, SortSpec{Key: SortByStudentID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	got := studentIDs(requests)
	// 64011111 < 65000500 < 65012345 < 650099 stripped from CS-650099?
	// No: CS-650099 strips to 650099 which is < 64011111 numerically? 650099
	// has 6 digits, the others 8, so it sorts first.
	want := []string{"CS-650099", "64011111", "65000500", "65012345"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("numeric-aware sort expected %v, got %v", want, got)
		}
	}

	requests, err = svc.List(context.Background(), adminActor, database.RequestFilter{}, SortSpec{Key: SortByStudentID, Descending: true})
	if err != nil {
		t.Fatalf("list desc: %v", err)
	}
	got = studentIDs(requests)
	if got[0] != "65012345" || got[3] != "CS-650099" {
		t.Errorf("descending sort wrong: %v", got)
	}
}

// submitted_date sorting is chronological with missing dates earliest
func TestListSortBySubmittedDate(t *testing.T) {
	store := database.NewMemoryStore()
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	// The store backfills zero submitted dates, so build one directly
	reqs := []model.InternshipRequest{
		{StudentID: "1", Company: "A", Position: "x", SubmittedDate: base.Add(time.Hour)},
		{StudentID: "2", Company: "B", Position: "x", SubmittedDate: base},
		{StudentID: "3", Company: "C", Position: "x", SubmittedDate: base.Add(2 * time.Hour)},
	}
	for i := range reqs {
		r := reqs[i]
		if err := store.CreateRequest(ctx, &r); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	svc := NewQueryService(store)
	requests, err := svc.List(ctx, adminActor, database.RequestFilter{}, SortSpec{Key: SortBySubmittedDate})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	got := studentIDs(requests)
	want := []string{"2", "1", "3"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("chronological sort expected %v, got %v", want, got)
		}
	}
}

func TestListSortByTextField(t *testing.T) {
	store := seedQueryStore(t)
	svc := NewQueryService(store)

	requests, err := svc.List(context.Background(), adminActor, database.RequestFilter{}, SortSpec{Key: SortByCompany})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	companies := make([]string, len(requests))
	for i, r := range requests {
		companies[i] = r.Company
	}
	want := []string{"Acme Software", "Acme Software", "Globex", "Initech"}
	for i := range want {
		if companies[i] != want[i] {
			t.Fatalf("text sort expected %v, got %v", want, companies)
		}
	}
}

func TestListUnknownSortKey(t *testing.T) {
	store := seedQueryStore(t)
	svc := NewQueryService(store)

	_, err := svc.List(context.Background(), adminActor, database.RequestFilter{}, SortSpec{Key: SortKey("salary")})
	if _, ok := lifecycle.IsValidationError(err); !ok {
		t.Errorf("unknown sort key expected ValidationError, got %v", err)
	}
}

func TestNextSortToggleAndReset(t *testing.T) {
	spec := NextSort(SortSpec{}, SortByCompany)
	if spec.Key != SortByCompany || spec.Descending {
		t.Fatalf("new key must start ascending: %+v", spec)
	}

	spec = NextSort(spec, SortByCompany)
	if !spec.Descending {
		t.Fatalf("same key must toggle to descending: %+v", spec)
	}

	spec = NextSort(spec, SortByCompany)
	if spec.Descending {
		t.Fatalf("same key must toggle back to ascending: %+v", spec)
	}

	spec = NextSort(SortSpec{Key: SortByCompany, Descending: true}, SortByStudentID)
	if spec.Key != SortByStudentID || spec.Descending {
		t.Fatalf("new key must reset to ascending: %+v", spec)
	}
}

func TestStatsCounts(t *testing.T) {
	store := seedQueryStore(t)
	svc := NewQueryService(store)
	ctx := context.Background()

	buckets, _, err := svc.Stats(ctx, adminActor, StatByDepartment)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	counts := map[string]int{}
	for _, b := range buckets {
		counts[b.Key] = b.Count
	}
	if counts["Computer Science"] != 2 || counts["Business"] != 2 {
		t.Errorf("department counts wrong: %v", counts)
	}

	buckets, _, err = svc.Stats(ctx, adminActor, StatByCompany)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if buckets[0].Key != "Acme Software" || buckets[0].Count != 2 {
		t.Errorf("expected largest company bucket first, got %+v", buckets)
	}

	buckets, _, err = svc.Stats(ctx, adminActor, StatByStatus)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(buckets) != 1 || buckets[0].Key != string(lifecycle.StatusSubmitted) || buckets[0].Count != 4 {
		t.Errorf("status counts wrong: %+v", buckets)
	}
}

func TestStatsScopedToActor(t *testing.T) {
	store := seedQueryStore(t)
	svc := NewQueryService(store)

	buckets, _, err := svc.Stats(context.Background(), advisorCS, StatByDepartment)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(buckets) != 1 || buckets[0].Key != "Computer Science" || buckets[0].Count != 2 {
		t.Errorf("advisor stats must cover own department only: %+v", buckets)
	}
}

func TestStatsRecent(t *testing.T) {
	store := seedQueryStore(t)
	svc := NewQueryService(store)

	_, recent, err := svc.Stats(context.Background(), adminActor, StatRecent)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(recent) != 4 {
		t.Fatalf("expected 4 recent requests, got %d", len(recent))
	}
	for i := 1; i < len(recent); i++ {
		if recent[i].SubmittedDate.After(recent[i-1].SubmittedDate) {
			t.Fatalf("recent not reverse chronological: %v before %v", recent[i-1].SubmittedDate, recent[i].SubmittedDate)
		}
	}
}

func TestStatsUnknownDimension(t *testing.T) {
	store := seedQueryStore(t)
	svc := NewQueryService(store)

	_, _, err := svc.Stats(context.Background(), adminActor, StatDimension("gpa"))
	if _, ok := lifecycle.IsValidationError(err); !ok {
		t.Errorf("unknown dimension expected ValidationError, got %v", err)
	}
}

package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/internship-hub/placement-api/database"
	"github.com/internship-hub/placement-api/lifecycle"
	"github.com/internship-hub/placement-api/model"
)

// SortKey selects a column to order request listings by
type SortKey string

const (
	SortByStudentID     SortKey = "student_id"
	SortBySubmittedDate SortKey = "submitted_date"
	SortByStudentName   SortKey = "student_name"
	SortByDepartment    SortKey = "department"
	SortByCompany       SortKey = "company"
	SortByPosition      SortKey = "position"
	SortByStatus        SortKey = "status"
)

// IsValid reports whether k is a recognized sort key
func (k SortKey) IsValid() bool {
	switch k {
	case SortByStudentID, SortBySubmittedDate, SortByStudentName,
		SortByDepartment, SortByCompany, SortByPosition, SortByStatus:
		return true
	}
	return false
}

// SortSpec is a sort key with direction. The zero value means no sorting:
// listings keep insertion order.
type SortSpec struct {
	Key        SortKey
	Descending bool
}

// NextSort computes the sort state after the user selects a key: selecting
// the current key flips direction, selecting a new key resets to ascending.
func NextSort(current SortSpec, selected SortKey) SortSpec {
	if current.Key == selected {
		return SortSpec{Key: selected, Descending: !current.Descending}
	}
	return SortSpec{Key: selected}
}

// StatDimension selects an aggregate projection
type StatDimension string

const (
	StatByDepartment StatDimension = "department"
	StatByCompany    StatDimension = "company"
	StatByStatus     StatDimension = "status"
	StatRecent       StatDimension = "recent"
)

// StatBucket is one count in an aggregate projection
type StatBucket struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// RecentLimit caps the recent-requests projection
const RecentLimit = 10

// QueryService derives role-scoped, filtered, sorted projections over the
// store for the presentation layer. Results are recomputed per call from the
// current list snapshot; nothing is cached.
type QueryService struct {
	store    database.Storage
	collator *collate.Collator
}

// NewQueryService creates a new query service. Text sorting collates Thai
// first with an und fallback, matching the dashboard's locale.
func NewQueryService(store database.Storage) *QueryService {
	return &QueryService{
		store:    store,
		collator: collate.New(language.Thai),
	}
}

// scopeFilter clamps a caller-supplied filter to what the actor may see:
// students their own requests, advisors their department, admins everything.
func scopeFilter(actor lifecycle.Actor, filter database.RequestFilter) (database.RequestFilter, error) {
	switch actor.Role {
	case lifecycle.RoleAdmin:
		return filter, nil
	case lifecycle.RoleStudent:
		if actor.StudentID == "" {
			return filter, lifecycle.ErrUnauthorizedTransition
		}
		filter.StudentID = actor.StudentID
		return filter, nil
	case lifecycle.RoleAdvisor:
		if actor.Department == "" {
			return filter, lifecycle.ErrUnauthorizedTransition
		}
		if filter.Department != "" && filter.Department != actor.Department {
			return filter, lifecycle.ErrUnauthorizedTransition
		}
		filter.Department = actor.Department
		return filter, nil
	}
	return filter, lifecycle.ErrUnauthorizedTransition
}

// List returns the actor-scoped, filtered, sorted request projection
func (s *QueryService) List(ctx context.Context, actor lifecycle.Actor, filter database.RequestFilter, sortSpec SortSpec) ([]model.InternshipRequest, error) {
	scoped, err := scopeFilter(actor, filter)
	if err != nil {
		return nil, err
	}

	requests, err := s.store.ListRequests(ctx, scoped)
	if err != nil {
		return nil, err
	}

	if sortSpec.Key != "" {
		if !sortSpec.Key.IsValid() {
			return nil, &lifecycle.ValidationError{Field: "sort", Message: fmt.Sprintf("unknown sort key %q", sortSpec.Key)}
		}
		s.sortRequests(requests, sortSpec)
	}
	return requests, nil
}

func (s *QueryService) sortRequests(requests []model.InternshipRequest, spec SortSpec) {
	less := s.lessFunc(spec.Key)
	sort.SliceStable(requests, func(i, j int) bool {
		if spec.Descending {
			return less(&requests[j], &requests[i])
		}
		return less(&requests[i], &requests[j])
	})
}

func (s *QueryService) lessFunc(key SortKey) func(a, b *model.InternshipRequest) bool {
	switch key {
	case SortByStudentID:
		return func(a, b *model.InternshipRequest) bool {
			return compareStudentIDs(a.StudentID, b.StudentID) < 0
		}
	case SortBySubmittedDate:
		// Zero (missing) timestamps sort earliest by time.Before already
		return func(a, b *model.InternshipRequest) bool {
			return a.SubmittedDate.Before(b.SubmittedDate)
		}
	case SortByStudentName:
		return s.textLess(func(r *model.InternshipRequest) string { return r.StudentName })
	case SortByDepartment:
		return s.textLess(func(r *model.InternshipRequest) string { return r.Department })
	case SortByCompany:
		return s.textLess(func(r *model.InternshipRequest) string { return r.Company })
	case SortByPosition:
		return s.textLess(func(r *model.InternshipRequest) string { return r.Position })
	case SortByStatus:
		return s.textLess(func(r *model.InternshipRequest) string { return string(r.Status) })
	}
	return func(a, b *model.InternshipRequest) bool { return a.ID < b.ID }
}

func (s *QueryService) textLess(field func(*model.InternshipRequest) string) func(a, b *model.InternshipRequest) bool {
	return func(a, b *model.InternshipRequest) bool {
		return s.collator.CompareString(field(a), field(b)) < 0
	}
}

// compareStudentIDs orders ids numerically after stripping non-digit
// characters; ids without digits fall back to plain lexicographic order.
func compareStudentIDs(a, b string) int {
	da, db := stripNonDigits(a), stripNonDigits(b)
	if da != "" && db != "" {
		da, db = strings.TrimLeft(da, "0"), strings.TrimLeft(db, "0")
		if len(da) != len(db) {
			if len(da) < len(db) {
				return -1
			}
			return 1
		}
		if c := strings.Compare(da, db); c != 0 {
			return c
		}
	}
	return strings.Compare(a, b)
}

func stripNonDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Stats computes one aggregate projection over the actor-scoped snapshot
func (s *QueryService) Stats(ctx context.Context, actor lifecycle.Actor, dimension StatDimension) ([]StatBucket, []model.InternshipRequest, error) {
	scoped, err := scopeFilter(actor, database.RequestFilter{})
	if err != nil {
		return nil, nil, err
	}

	requests, err := s.store.ListRequests(ctx, scoped)
	if err != nil {
		return nil, nil, err
	}

	switch dimension {
	case StatByDepartment:
		return countBy(requests, func(r *model.InternshipRequest) string { return r.Department }), nil, nil
	case StatByCompany:
		return countBy(requests, func(r *model.InternshipRequest) string { return r.Company }), nil, nil
	case StatByStatus:
		return countBy(requests, func(r *model.InternshipRequest) string { return string(r.Status) }), nil, nil
	case StatRecent:
		return nil, recentRequests(requests, RecentLimit), nil
	}
	return nil, nil, &lifecycle.ValidationError{Field: "dimension", Message: fmt.Sprintf("unknown stats dimension %q", dimension)}
}

func countBy(requests []model.InternshipRequest, key func(*model.InternshipRequest) string) []StatBucket {
	counts := make(map[string]int)
	order := []string{}
	for i := range requests {
		k := key(&requests[i])
		if _, seen := counts[k]; !seen {
			order = append(order, k)
		}
		counts[k]++
	}

	buckets := make([]StatBucket, 0, len(order))
	for _, k := range order {
		buckets = append(buckets, StatBucket{Key: k, Count: counts[k]})
	}
	// Largest buckets first, first-seen order breaking ties
	sort.SliceStable(buckets, func(i, j int) bool { return buckets[i].Count > buckets[j].Count })
	return buckets
}

// recentRequests returns the last n requests in reverse chronological order,
// ties broken by id descending so same-instant submissions order stably.
func recentRequests(requests []model.InternshipRequest, n int) []model.InternshipRequest {
	recent := make([]model.InternshipRequest, len(requests))
	copy(recent, requests)
	sort.SliceStable(recent, func(i, j int) bool {
		if recent[i].SubmittedDate.Equal(recent[j].SubmittedDate) {
			return recent[i].ID > recent[j].ID
		}
		return recent[i].SubmittedDate.After(recent[j].SubmittedDate)
	})
	if len(recent) > n {
		recent = recent[:n]
	}
	return recent
}

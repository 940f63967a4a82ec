package database

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"gorm.io/datatypes"

	"github.com/internship-hub/placement-api/lifecycle"
	"github.com/internship-hub/placement-api/model"
)

// MemoryStore is an in-memory Storage implementation. It backs tests and the
// GO_ENV=test bootstrap so the lifecycle semantics run without Postgres.
// Transitions take a per-request-id lock so the read-decide-write sequence is
// atomic per identifier while other ids stay unblocked.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID uint
	byID   map[uint]*model.InternshipRequest
	order  []uint
	audit  map[uint][]model.RequestAuditLog

	lockMu sync.Mutex
	locks  map[uint]*sync.Mutex
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:  make(map[uint]*model.InternshipRequest),
		audit: make(map[uint][]model.RequestAuditLog),
		locks: make(map[uint]*sync.Mutex),
	}
}

func (s *MemoryStore) Init() error        { return nil }
func (s *MemoryStore) Close() error       { return nil }
func (s *MemoryStore) HealthCheck() error { return nil }

// GetDB returns nil: there is no underlying connection
func (s *MemoryStore) GetDB() interface{} { return nil }

func (s *MemoryStore) lockFor(id uint) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

func (s *MemoryStore) CreateRequest(ctx context.Context, req *model.InternshipRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	req.ID = s.nextID
	if req.Status == "" {
		req.Status = lifecycle.StatusSubmitted
	}
	now := time.Now()
	if req.SubmittedDate.IsZero() {
		req.SubmittedDate = now
	}
	req.CreatedAt = now
	req.UpdatedAt = now

	stored := *req
	s.byID[req.ID] = &stored
	s.order = append(s.order, req.ID)
	return nil
}

func (s *MemoryStore) GetRequest(ctx context.Context, id uint) (*model.InternshipRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.byID[id]
	if !ok {
		return nil, lifecycle.ErrNotFound
	}
	req := *stored
	return &req, nil
}

func (s *MemoryStore) ListRequests(ctx context.Context, filter RequestFilter) ([]model.InternshipRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	requests := []model.InternshipRequest{}
	for _, id := range s.order {
		req := s.byID[id]
		if matchesFilter(req, filter) {
			requests = append(requests, *req)
		}
	}
	return requests, nil
}

func matchesFilter(req *model.InternshipRequest, filter RequestFilter) bool {
	if filter.StudentID != "" && req.StudentID != filter.StudentID {
		return false
	}
	if filter.Department != "" && req.Department != filter.Department {
		return false
	}
	if len(filter.StatusIn) > 0 {
		found := false
		for _, status := range filter.StatusIn {
			if req.Status == status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.SearchText != "" {
		needle := strings.ToLower(filter.SearchText)
		if !strings.Contains(strings.ToLower(req.Company), needle) &&
			!strings.Contains(strings.ToLower(req.Position), needle) {
			return false
		}
	}
	return true
}

func (s *MemoryStore) ApplyTransition(ctx context.Context, id uint, actor lifecycle.Actor, action lifecycle.Action, reason string) (*model.InternshipRequest, error) {
	// Per-identifier exclusion: concurrent transitions on the same request
	// serialize here, other requests proceed in parallel.
	idLock := s.lockFor(id)
	idLock.Lock()
	defer idLock.Unlock()

	s.mu.RLock()
	stored, ok := s.byID[id]
	var current lifecycle.Status
	if ok {
		current = stored.Status
	}
	s.mu.RUnlock()

	if !ok {
		return nil, lifecycle.ErrNotFound
	}

	decision, err := lifecycle.Decide(current, actor.Role, action, reason)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(map[string]interface{}{
		"previous_status": current,
		"next_status":     decision.Next,
		"actor_id":        actor.UserID,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	actorID := actor.UserID

	s.mu.Lock()
	defer s.mu.Unlock()

	// Status, reject fields and the audit row change together under the
	// write lock, so readers never observe a partially applied transition.
	stored.Status = decision.Next
	stored.DecidedAt = &now
	stored.DecidedBy = &actorID
	stored.UpdatedAt = now
	if decision.Next == lifecycle.StatusRejected {
		stored.RejectReason = decision.RejectReason
		stored.RejectedBy = string(decision.RejectedBy)
	}

	s.audit[id] = append(s.audit[id], model.RequestAuditLog{
		ID:         uint(len(s.audit[id]) + 1),
		RequestID:  id,
		ActorID:    actor.UserID,
		ActorRole:  string(actor.Role),
		Action:     string(action),
		FromStatus: string(current),
		ToStatus:   string(decision.Next),
		Reason:     decision.RejectReason,
		Payload:    datatypes.JSON(payload),
		CreatedAt:  now,
	})

	req := *stored
	return &req, nil
}

func (s *MemoryStore) ListAuditLog(ctx context.Context, requestID uint) ([]model.RequestAuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]model.RequestAuditLog, len(s.audit[requestID]))
	copy(entries, s.audit[requestID])
	return entries, nil
}

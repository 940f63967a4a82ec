package database

import (
	"context"

	"github.com/internship-hub/placement-api/lifecycle"
	"github.com/internship-hub/placement-api/model"
)

// RequestFilter narrows ListRequests results. Zero-value fields are ignored.
type RequestFilter struct {
	StudentID  string             // exact match
	Department string             // exact match
	StatusIn   []lifecycle.Status // any-of match
	SearchText string             // case-insensitive substring over company and position
}

// Storage is the lifecycle store contract. Requests are never deleted:
// approval and rejection are retained terminal states.
type Storage interface {
	Init() error
	Close() error
	HealthCheck() error
	// GetDB exposes the underlying connection for collaborators that need it
	// (auth, migrations). Returns nil for stores without one.
	GetDB() interface{}

	CreateRequest(ctx context.Context, req *model.InternshipRequest) error
	GetRequest(ctx context.Context, id uint) (*model.InternshipRequest, error)
	// ListRequests returns matching requests in insertion order.
	ListRequests(ctx context.Context, filter RequestFilter) ([]model.InternshipRequest, error)
	// ApplyTransition looks up the request, runs lifecycle.Decide, and
	// persists the outcome plus an audit row atomically per request id.
	// On engine rejection nothing is written and the engine error surfaces.
	ApplyTransition(ctx context.Context, id uint, actor lifecycle.Actor, action lifecycle.Action, reason string) (*model.InternshipRequest, error)
	ListAuditLog(ctx context.Context, requestID uint) ([]model.RequestAuditLog, error)
}

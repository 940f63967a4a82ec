package model

import (
	"time"

	"gorm.io/datatypes"
)

// RequestAuditLog records one successful lifecycle transition. Rows are
// append-only and written in the same transaction as the status update, so
// every non-initial status a request reaches has exactly one entry.
type RequestAuditLog struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	RequestID  uint           `gorm:"not null;index" json:"request_id"`
	ActorID    uint           `gorm:"not null;index" json:"actor_id"`
	ActorRole  string         `gorm:"type:varchar(20);not null" json:"actor_role"`
	Action     string         `gorm:"type:varchar(20);not null" json:"action"` // approve, reject
	FromStatus string         `gorm:"type:varchar(20);not null" json:"from_status"`
	ToStatus   string         `gorm:"type:varchar(20);not null" json:"to_status"`
	Reason     string         `gorm:"type:text" json:"reason,omitempty"`
	Payload    datatypes.JSON `gorm:"type:jsonb" json:"payload,omitempty"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for RequestAuditLog
func (RequestAuditLog) TableName() string {
	return "request_audit_logs"
}

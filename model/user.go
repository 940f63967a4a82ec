package model

import (
	"time"

	"gorm.io/gorm"

	"github.com/internship-hub/placement-api/lifecycle"
)

// User represents a registered participant: student, advisor, or admin
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"` // Never expose password in JSON
	Name         string         `gorm:"not null" json:"name"`
	Role         string         `gorm:"type:varchar(20);default:'student'" json:"role"` // student, advisor, admin
	Department   string         `gorm:"type:varchar(255);index" json:"department"`
	StudentID    string         `gorm:"type:varchar(20);index" json:"student_id"` // empty for advisors and admins
	TokenVersion int            `gorm:"default:0" json:"-"`                       // Increment to invalidate all user tokens

	// Relationships
	TokenBlacklist []JWTTokenBlacklist `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// Actor builds the identity context passed into core calls
func (u *User) Actor() lifecycle.Actor {
	return lifecycle.Actor{
		UserID:     u.ID,
		Role:       lifecycle.Role(u.Role),
		Department: u.Department,
		StudentID:  u.StudentID,
	}
}

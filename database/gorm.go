package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/internship-hub/placement-api/config"
	"github.com/internship-hub/placement-api/lifecycle"
	"github.com/internship-hub/placement-api/model"
)

type GORMStore struct {
	db *gorm.DB
}

// StartGORM initializes a GORM connection to PostgreSQL
func StartGORM() (*GORMStore, error) {
	getEnv, err := config.Get()
	if err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		getEnv.DB_HOST,
		getEnv.DB_USER_NAME,
		getEnv.DB_PASSWORD,
		getEnv.DB_NAME,
		getEnv.DB_PORT,
		getEnv.DB_SSL_MODE,
	)

	gormLogger := logger.Default.LogMode(logger.Info)
	if getEnv.GO_ENV == "production" {
		gormLogger = logger.Default.LogMode(logger.Error)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: false,
		PrepareStmt:            true,
	})
	if err != nil {
		log.Println("Unable to connect to PostgreSQL with GORM:", err)
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// Connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Println("Successfully connected to PostgreSQL Database with GORM.")

	return &GORMStore{db: db}, nil
}

// Init runs AutoMigrate for all models
func (s *GORMStore) Init() error {
	log.Println("Running GORM AutoMigrate for all models...")

	return s.db.AutoMigrate(
		&model.User{},
		&model.InternshipRequest{},
		&model.RequestAuditLog{},
		&model.JWTTokenBlacklist{},
		&model.CronJobLog{},
	)
}

// Close closes the underlying database connection
func (s *GORMStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetDB returns the underlying GORM instance
func (s *GORMStore) GetDB() interface{} {
	return s.db
}

// HealthCheck pings the database
func (s *GORMStore) HealthCheck() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (s *GORMStore) CreateRequest(ctx context.Context, req *model.InternshipRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if req.Status == "" {
		req.Status = lifecycle.StatusSubmitted
	}
	return s.db.WithContext(ctx).Create(req).Error
}

func (s *GORMStore) GetRequest(ctx context.Context, id uint) (*model.InternshipRequest, error) {
	var req model.InternshipRequest
	if err := s.db.WithContext(ctx).First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, lifecycle.ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (s *GORMStore) ListRequests(ctx context.Context, filter RequestFilter) ([]model.InternshipRequest, error) {
	query := s.db.WithContext(ctx).Model(&model.InternshipRequest{})

	if filter.StudentID != "" {
		query = query.Where("student_id = ?", filter.StudentID)
	}
	if filter.Department != "" {
		query = query.Where("department = ?", filter.Department)
	}
	if len(filter.StatusIn) > 0 {
		query = query.Where("status IN ?", filter.StatusIn)
	}
	if filter.SearchText != "" {
		pattern := "%" + filter.SearchText + "%"
		query = query.Where("company ILIKE ? OR position ILIKE ?", pattern, pattern)
	}

	// Insertion order is the default ordering contract
	requests := []model.InternshipRequest{}
	if err := query.Order("id ASC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// ApplyTransition serializes the read-decide-write sequence per request row
// with SELECT ... FOR UPDATE, so two racing valid transitions resolve to one
// winner; the loser re-reads the updated row and gets ErrInvalidState from
// the engine. The status update and audit row commit together.
func (s *GORMStore) ApplyTransition(ctx context.Context, id uint, actor lifecycle.Actor, action lifecycle.Action, reason string) (*model.InternshipRequest, error) {
	var req model.InternshipRequest

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&req, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return lifecycle.ErrNotFound
			}
			return fmt.Errorf("fetch request for transition: %w", err)
		}

		decision, err := lifecycle.Decide(req.Status, actor.Role, action, reason)
		if err != nil {
			return err
		}

		now := time.Now()
		fromStatus := req.Status
		updates := map[string]interface{}{
			"status":     decision.Next,
			"decided_at": now,
			"decided_by": actor.UserID,
		}
		if decision.Next == lifecycle.StatusRejected {
			updates["reject_reason"] = decision.RejectReason
			updates["rejected_by"] = string(decision.RejectedBy)
		}

		if err := tx.Model(&model.InternshipRequest{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fmt.Errorf("update request status: %w", err)
		}

		payload, err := json.Marshal(map[string]interface{}{
			"previous_status": fromStatus,
			"next_status":     decision.Next,
			"actor_id":        actor.UserID,
		})
		if err != nil {
			return err
		}

		audit := model.RequestAuditLog{
			RequestID:  req.ID,
			ActorID:    actor.UserID,
			ActorRole:  string(actor.Role),
			Action:     string(action),
			FromStatus: string(fromStatus),
			ToStatus:   string(decision.Next),
			Reason:     decision.RejectReason,
			Payload:    datatypes.JSON(payload),
		}
		if err := tx.Create(&audit).Error; err != nil {
			return fmt.Errorf("insert audit log: %w", err)
		}

		req.Status = decision.Next
		req.RejectReason = decision.RejectReason
		req.RejectedBy = string(decision.RejectedBy)
		req.DecidedAt = &now
		actorID := actor.UserID
		req.DecidedBy = &actorID
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &req, nil
}

func (s *GORMStore) ListAuditLog(ctx context.Context, requestID uint) ([]model.RequestAuditLog, error) {
	entries := []model.RequestAuditLog{}
	err := s.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

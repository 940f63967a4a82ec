package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"gorm.io/datatypes"

	"github.com/internship-hub/placement-api/model"
	"github.com/internship-hub/placement-api/utils/auth"
)

// CleanupExpiredBlacklistTokens removes blacklist entries whose tokens have
// already expired; they can no longer validate anyway.
func (m *CronManager) CleanupExpiredBlacklistTokens() {
	jobLog := m.startJobLog("cleanup_token_blacklist")

	blacklist := auth.NewBlacklistService(m.db)
	if err := blacklist.CleanupExpiredTokens(context.Background()); err != nil {
		m.finishJobLog(jobLog, "", err)
		return
	}

	m.finishJobLog(jobLog, "expired blacklist entries removed", nil)
}

// SnapshotRequestStatuses logs the current request counts per status. The
// snapshot is informational; queries always recompute live.
func (m *CronManager) SnapshotRequestStatuses() {
	jobLog := m.startJobLog("snapshot_request_statuses")

	type statusCount struct {
		Status string
		Count  int64
	}
	counts := []statusCount{}
	err := m.db.Model(&model.InternshipRequest{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&counts).Error
	if err != nil {
		m.finishJobLog(jobLog, "", err)
		return
	}

	byStatus := make(map[string]int64, len(counts))
	var total int64
	for _, c := range counts {
		byStatus[c.Status] = c.Count
		total += c.Count
	}

	if metadata, err := json.Marshal(byStatus); err == nil {
		jobLog.Metadata = datatypes.JSON(metadata)
	}
	m.finishJobLog(jobLog, fmt.Sprintf("%d requests across %d statuses", total, len(counts)), nil)
}

func (m *CronManager) startJobLog(name string) *model.CronJobLog {
	jobLog := &model.CronJobLog{
		JobName:   name,
		Status:    "started",
		StartedAt: time.Now(),
	}
	if err := m.db.Create(jobLog).Error; err != nil {
		log.Printf("cron: failed to record start of %s: %v", name, err)
	}
	return jobLog
}

func (m *CronManager) finishJobLog(jobLog *model.CronJobLog, message string, jobErr error) {
	now := time.Now()
	jobLog.CompletedAt = &now
	jobLog.Duration = int(now.Sub(jobLog.StartedAt).Milliseconds())
	if jobErr != nil {
		jobLog.Status = "failed"
		jobLog.ErrorMsg = jobErr.Error()
		log.Printf("cron: %s failed: %v", jobLog.JobName, jobErr)
	} else {
		jobLog.Status = "completed"
		jobLog.Message = message
	}
	if err := m.db.Save(jobLog).Error; err != nil {
		log.Printf("cron: failed to record completion of %s: %v", jobLog.JobName, err)
	}
}

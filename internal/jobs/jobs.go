// Package jobs holds the periodic maintenance tasks run by the worker.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/models"
	"gorm.io/gorm"
)

type Jobs struct {
	db               *gorm.DB
	logger           *slog.Logger
	inactivityDays   int
	logRetentionDays int
	now              func() time.Time
}

func New(db *gorm.DB, logger *slog.Logger, inactivityDays, logRetentionDays int) *Jobs {
	return &Jobs{
		db:               db,
		logger:           logger,
		inactivityDays:   inactivityDays,
		logRetentionDays: logRetentionDays,
		now:              time.Now,
	}
}

// DeactivateInactiveUsers marks active users whose last login is at or before
// now minus the inactivity window as inactive. Users who never logged in are
// left alone.
func (j *Jobs) DeactivateInactiveUsers(ctx context.Context, now time.Time) (int64, error) {
	cutoff := now.AddDate(0, 0, -j.inactivityDays)
	result := j.db.WithContext(ctx).
		Model(&models.User{}).
		Where("is_active = ? AND last_login IS NOT NULL AND last_login <= ?", true, cutoff).
		Update("is_active", false)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// PruneSystemLogs deletes system_logs older than the retention window.
func (j *Jobs) PruneSystemLogs(ctx context.Context, now time.Time) (int64, error) {
	cutoff := now.AddDate(0, 0, -j.logRetentionDays)
	result := j.db.WithContext(ctx).Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (j *Jobs) runDeactivate() {
	n, err := j.DeactivateInactiveUsers(context.Background(), j.now())
	if err != nil {
		j.logger.Error("deactivate inactive users failed", "action", "deactivate_users", "error", err)
		return
	}
	j.logger.Info("inactive users deactivated", "count", n, "inactivity_days", j.inactivityDays)
}

func (j *Jobs) runPrune() {
	n, err := j.PruneSystemLogs(context.Background(), j.now())
	if err != nil {
		j.logger.Error("log cleanup failed", "action", "prune_logs", "error", err)
		return
	}
	if n > 0 {
		j.logger.Info("log cleanup completed", "deleted", n)
	}
}

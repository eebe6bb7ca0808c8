package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"uptime-report-backend/internal/model"
	"uptime-report-backend/internal/uptime"
)

// ResetJob puts the sentinel into the complete state, creating it if needed.
// Called once at startup: a sentinel still running at that point belongs to a
// process that died mid-run.
func (s *gormStore) ResetJob(ctx context.Context) error {
	sentinel := model.JobSentinel{
		ID:        model.SentinelID,
		Status:    model.ReportComplete,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
	}).Create(&sentinel).Error; err != nil {
		return fmt.Errorf("failed to reset job sentinel: %w", err)
	}
	return nil
}

// AcquireJob flips the sentinel from complete to running for reportID in a
// single conditional update. When another run holds it, acquired is false and
// current names that run.
func (s *gormStore) AcquireJob(ctx context.Context, reportID string) (bool, string, error) {
	for attempt := 0; attempt < 2; attempt++ {
		res := s.db.WithContext(ctx).
			Model(&model.JobSentinel{}).
			Where("id = ? AND status = ?", model.SentinelID, model.ReportComplete).
			Updates(map[string]any{
				"status":     model.ReportRunning,
				"report_id":  reportID,
				"updated_at": time.Now().UTC(),
			})
		if res.Error != nil {
			return false, "", fmt.Errorf("failed to acquire job sentinel: %w", res.Error)
		}
		if res.RowsAffected == 1 {
			return true, reportID, nil
		}

		state, err := s.JobState(ctx)
		switch {
		case errors.Is(err, ErrNotFound):
			if err := s.ResetJob(ctx); err != nil {
				return false, "", err
			}
		case err != nil:
			return false, "", err
		case state.Status == model.ReportRunning:
			return false, state.ReportID, nil
		}
		// The sentinel was missing or released in between; try once more.
	}
	return false, "", fmt.Errorf("failed to acquire job sentinel: contention")
}

// ReleaseJob marks the sentinel complete if reportID still holds it.
func (s *gormStore) ReleaseJob(ctx context.Context, reportID string) error {
	err := s.db.WithContext(ctx).
		Model(&model.JobSentinel{}).
		Where("id = ? AND report_id = ?", model.SentinelID, reportID).
		Updates(map[string]any{
			"status":     model.ReportComplete,
			"updated_at": time.Now().UTC(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to release job sentinel for report %s: %w", reportID, err)
	}
	return nil
}

// JobState returns the current sentinel.
func (s *gormStore) JobState(ctx context.Context) (model.JobSentinel, error) {
	var sentinel model.JobSentinel
	res := s.db.WithContext(ctx).Where("id = ?", model.SentinelID).Limit(1).Find(&sentinel)
	if res.Error != nil {
		return model.JobSentinel{}, fmt.Errorf("failed to read job sentinel: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return model.JobSentinel{}, ErrNotFound
	}
	return sentinel, nil
}

// CreateReport records a new running report.
func (s *gormStore) CreateReport(ctx context.Context, reportID string) error {
	report := model.Report{
		ReportID:  reportID,
		Status:    model.ReportRunning,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&report).Error; err != nil {
		return fmt.Errorf("failed to create report %s: %w", reportID, err)
	}
	return nil
}

// CompleteReport stores the rows and marks the report complete in one
// transaction. A report that is not running is left untouched.
func (s *gormStore) CompleteReport(ctx context.Context, reportID string, rows []uptime.Row) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		res := tx.Model(&model.Report{}).
			Where("report_id = ? AND status = ?", reportID, model.ReportRunning).
			Updates(map[string]any{"status": model.ReportComplete, "completed_at": now})
		if res.Error != nil {
			return fmt.Errorf("failed to complete report %s: %w", reportID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("report %s: %w", reportID, ErrNotRunning)
		}

		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(toModelRows(reportID, rows), 500).Error; err != nil {
			return fmt.Errorf("failed to store rows for report %s: %w", reportID, err)
		}
		return nil
	})
}

// FindReport returns a report with its rows in discovery order.
func (s *gormStore) FindReport(ctx context.Context, reportID string) (*model.Report, error) {
	var report model.Report
	err := s.db.WithContext(ctx).
		Preload("Rows", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("report_id = ?", reportID).
		First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load report %s: %w", reportID, err)
	}
	return &report, nil
}

func toModelRows(reportID string, rows []uptime.Row) []model.ReportRow {
	out := make([]model.ReportRow, len(rows))
	for i, r := range rows {
		out[i] = model.ReportRow{
			ReportID:         reportID,
			Position:         i,
			StoreID:          r.SiteID,
			UptimeLastHour:   r.UptimeLastHourMinutes,
			DowntimeLastHour: r.DowntimeLastHourMinutes,
			UptimeLastDay:    r.UptimeLastDayHours,
			DowntimeLastDay:  r.DowntimeLastDayHours,
			UptimeLastWeek:   r.UptimeLastWeekHours,
			DowntimeLastWeek: r.DowntimeLastWeekHours,
		}
	}
	return out
}

// ReportRows converts stored rows back to report lines.
func ReportRows(report *model.Report) []uptime.Row {
	out := make([]uptime.Row, len(report.Rows))
	for i, r := range report.Rows {
		out[i] = uptime.Row{
			SiteID:                  r.StoreID,
			UptimeLastHourMinutes:   r.UptimeLastHour,
			DowntimeLastHourMinutes: r.DowntimeLastHour,
			UptimeLastDayHours:      r.UptimeLastDay,
			DowntimeLastDayHours:    r.DowntimeLastDay,
			UptimeLastWeekHours:     r.UptimeLastWeek,
			DowntimeLastWeekHours:   r.DowntimeLastWeek,
		}
	}
	return out
}

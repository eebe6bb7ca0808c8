package store

import (
	"context"
	"fmt"
	"log"

	"gorm.io/gorm/clause"

	"uptime-report-backend/internal/model"
)

const importBatchSize = 1000

// InsertObservations appends raw status pings.
func (s *gormStore) InsertObservations(ctx context.Context, rows []model.StoreStatus) error {
	if len(rows) == 0 {
		return nil
	}
	log.Printf("Batch inserting %d store status rows...", len(rows))
	if err := s.db.WithContext(ctx).CreateInBatches(&rows, importBatchSize).Error; err != nil {
		return fmt.Errorf("batch insert store status failed: %w", err)
	}
	return nil
}

// UpsertTimezones creates or replaces timezone assignments.
func (s *gormStore) UpsertTimezones(ctx context.Context, rows []model.StoreTimezone) error {
	if len(rows) == 0 {
		return nil
	}
	log.Printf("Batch upserting %d store timezones...", len(rows))
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "store_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"timezone_str"}),
	}).CreateInBatches(&rows, importBatchSize).Error; err != nil {
		return fmt.Errorf("batch upsert timezones failed: %w", err)
	}
	return nil
}

// InsertBusinessHours appends business-hours rules.
func (s *gormStore) InsertBusinessHours(ctx context.Context, rows []model.BusinessHours) error {
	if len(rows) == 0 {
		return nil
	}
	log.Printf("Batch inserting %d business hours rows...", len(rows))
	if err := s.db.WithContext(ctx).CreateInBatches(&rows, importBatchSize).Error; err != nil {
		return fmt.Errorf("batch insert business hours failed: %w", err)
	}
	return nil
}

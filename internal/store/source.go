package store

import (
	"context"
	"fmt"

	"uptime-report-backend/internal/model"
	"uptime-report-backend/internal/uptime"
)

// SiteIDs returns every store that has observations, in the order the stores
// first appeared.
func (s *gormStore) SiteIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).
		Model(&model.StoreStatus{}).
		Select("store_id").
		Group("store_id").
		Order("MIN(id)").
		Pluck("store_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list store ids: %w", err)
	}
	return ids, nil
}

// Observations returns the raw pings of one store in insertion order.
func (s *gormStore) Observations(ctx context.Context, siteID string) ([]uptime.Observation, error) {
	var rows []model.StoreStatus
	if err := s.db.WithContext(ctx).
		Where("store_id = ?", siteID).
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load observations for store %s: %w", siteID, err)
	}

	obs := make([]uptime.Observation, len(rows))
	for i, r := range rows {
		obs[i] = uptime.Observation{SiteID: r.StoreID, TimestampUTC: r.TimestampUTC, Status: r.Status}
	}
	return obs, nil
}

// Timezone returns the store's timezone name, if one is assigned.
func (s *gormStore) Timezone(ctx context.Context, siteID string) (string, bool, error) {
	var tz model.StoreTimezone
	res := s.db.WithContext(ctx).Where("store_id = ?", siteID).Limit(1).Find(&tz)
	if res.Error != nil {
		return "", false, fmt.Errorf("failed to load timezone for store %s: %w", siteID, res.Error)
	}
	if res.RowsAffected == 0 {
		return "", false, nil
	}
	return tz.TimezoneStr, true, nil
}

// BusinessHours returns the store's declared open intervals.
func (s *gormStore) BusinessHours(ctx context.Context, siteID string) ([]uptime.HoursRule, error) {
	var rows []model.BusinessHours
	if err := s.db.WithContext(ctx).
		Where("store_id = ?", siteID).
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load business hours for store %s: %w", siteID, err)
	}

	rules := make([]uptime.HoursRule, len(rows))
	for i, r := range rows {
		rules[i] = uptime.HoursRule{Weekday: r.Day, StartTimeLocal: r.StartTimeLocal, EndTimeLocal: r.EndTimeLocal}
	}
	return rules, nil
}

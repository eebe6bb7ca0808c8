package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm/clause"

	"uptime-report-backend/internal/model"
)

// SaveSubscription creates or refreshes the keys of a subscription.
func (s *gormStore) SaveSubscription(ctx context.Context, sub model.PushSubscription) error {
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}, {Name: "report_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
	}).Create(&sub).Error
	if err != nil {
		return fmt.Errorf("failed to save subscription for report %s: %w", sub.ReportID, err)
	}
	return nil
}

// DeleteSubscription removes a subscription. An empty reportID removes every
// subscription of the endpoint.
func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint, reportID string) error {
	q := s.db.WithContext(ctx).Where("endpoint = ?", endpoint)
	if reportID != "" {
		q = q.Where("report_id = ?", reportID)
	}
	if err := q.Delete(&model.PushSubscription{}).Error; err != nil {
		return fmt.Errorf("failed to delete subscription %s: %w", endpoint, err)
	}
	return nil
}

// SubscriptionsForReport lists the subscriptions waiting for reportID.
func (s *gormStore) SubscriptionsForReport(ctx context.Context, reportID string) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Where("report_id = ?", reportID).Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch subscriptions for report %s: %w", reportID, err)
	}
	return subs, nil
}

// SubscriptionsForEndpoint lists the reports a push endpoint is waiting on.
func (s *gormStore) SubscriptionsForEndpoint(ctx context.Context, endpoint string) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Where("endpoint = ?", endpoint).Order("created_at").Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch subscriptions for %s: %w", endpoint, err)
	}
	return subs, nil
}

package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"uptime-report-backend/internal/model"
	"uptime-report-backend/internal/uptime"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrNotRunning is returned when completing a report that is not running.
	ErrNotRunning = errors.New("report is not running")
)

// Store defines the interface for all database operations.
type Store interface {
	SiteSource
	JobStore
	SubscriptionStore
	ImportStore
}

// SiteSource reads the observation, timezone and business-hours data sets.
type SiteSource interface {
	SiteIDs(ctx context.Context) ([]string, error)
	Observations(ctx context.Context, siteID string) ([]uptime.Observation, error)
	Timezone(ctx context.Context, siteID string) (string, bool, error)
	BusinessHours(ctx context.Context, siteID string) ([]uptime.HoursRule, error)
}

// JobStore persists the job sentinel and generated reports.
type JobStore interface {
	ResetJob(ctx context.Context) error
	AcquireJob(ctx context.Context, reportID string) (acquired bool, current string, err error)
	ReleaseJob(ctx context.Context, reportID string) error
	JobState(ctx context.Context) (model.JobSentinel, error)

	CreateReport(ctx context.Context, reportID string) error
	CompleteReport(ctx context.Context, reportID string, rows []uptime.Row) error
	FindReport(ctx context.Context, reportID string) (*model.Report, error)
}

// SubscriptionStore manages push subscriptions waiting for a report.
type SubscriptionStore interface {
	SaveSubscription(ctx context.Context, sub model.PushSubscription) error
	DeleteSubscription(ctx context.Context, endpoint, reportID string) error
	SubscriptionsForReport(ctx context.Context, reportID string) ([]model.PushSubscription, error)
	SubscriptionsForEndpoint(ctx context.Context, endpoint string) ([]model.PushSubscription, error)
}

// ImportStore bulk-loads the source data sets.
type ImportStore interface {
	InsertObservations(ctx context.Context, rows []model.StoreStatus) error
	UpsertTimezones(ctx context.Context, rows []model.StoreTimezone) error
	InsertBusinessHours(ctx context.Context, rows []model.BusinessHours) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

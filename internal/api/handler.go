package api

import (
	"context"

	"github.com/SherClockHolmes/webpush-go"

	"uptime-report-backend/internal/model"
	"uptime-report-backend/internal/report"
	"uptime-report-backend/internal/uptime"
)

// Reports starts and reads report runs.
type Reports interface {
	Start(ctx context.Context) (report.StartResult, error)
	Get(ctx context.Context, reportID string) (report.Lookup, error)
}

// SiteEstimator computes a live row for one site.
type SiteEstimator interface {
	EstimateSite(ctx context.Context, siteID string) (uptime.Row, error)
}

// Subscriptions stores push clients waiting for a report.
type Subscriptions interface {
	SaveSubscription(ctx context.Context, sub model.PushSubscription) error
	DeleteSubscription(ctx context.Context, endpoint, reportID string) error
	SubscriptionsForEndpoint(ctx context.Context, endpoint string) ([]model.PushSubscription, error)
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	reports Reports
	sites   SiteEstimator
	subs    Subscriptions
	webpush *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(reports Reports, sites SiteEstimator, subs Subscriptions, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		reports: reports,
		sites:   sites,
		subs:    subs,
		webpush: webpushOptions,
	}
}

// Package report runs the uptime pipeline over every known site and gates
// report generation behind a single job slot.
package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"uptime-report-backend/internal/metrics"
	"uptime-report-backend/internal/uptime"
)

// ErrUnknownSite is returned by EstimateSite for a site without observations.
var ErrUnknownSite = errors.New("unknown site")

// Source provides the sites and their observations.
type Source interface {
	SiteIDs(ctx context.Context) ([]string, error)
	Observations(ctx context.Context, siteID string) ([]uptime.Observation, error)
}

// GeneratorConfig holds the optional collaborators of a Generator.
type GeneratorConfig struct {
	// Parallelism bounds how many sites are processed at once. Values below 1 mean 1.
	Parallelism int
	// Now returns the processing instant. Defaults to the wall clock in UTC.
	Now     func() time.Time
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Generator builds report rows for all sites.
type Generator struct {
	source      Source
	estimator   *uptime.Estimator
	parallelism int
	now         func() time.Time
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// NewGenerator creates a generator.
func NewGenerator(source Source, estimator *uptime.Estimator, cfg GeneratorConfig) *Generator {
	g := &Generator{
		source:      source,
		estimator:   estimator,
		parallelism: cfg.Parallelism,
		now:         cfg.Now,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
	}
	if g.parallelism < 1 {
		g.parallelism = 1
	}
	if g.now == nil {
		g.now = func() time.Time { return time.Now().UTC() }
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g
}

// Generate returns one row per site, in the order sites were discovered.
// A site whose pipeline fails is logged and left out; only failing to list
// the sites is an error.
func (g *Generator) Generate(ctx context.Context, reportID string) ([]uptime.Row, error) {
	ids, err := g.source.SiteIDs(ctx)
	if err != nil {
		return nil, err
	}

	now := g.now()
	logger := g.logger.With("report_id", reportID)
	logger.Info("generating report", "sites", len(ids), "now", now)

	results := make([]*uptime.Row, len(ids))
	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(g.parallelism)
	for i, siteID := range ids {
		i, siteID := i, siteID
		grp.Go(func() error {
			row, err := g.estimate(gctx, siteID, now)
			if err != nil {
				logger.Error("site skipped", "site_id", siteID, "error", err)
				g.metrics.SiteFailed()
				return nil
			}
			results[i] = &row
			return nil
		})
	}
	_ = grp.Wait()

	rows := make([]uptime.Row, 0, len(ids))
	for _, r := range results {
		if r != nil {
			rows = append(rows, *r)
		}
	}
	logger.Info("report rows ready", "rows", len(rows), "skipped", len(ids)-len(rows))
	return rows, nil
}

// EstimateSite computes the current row for a single site.
func (g *Generator) EstimateSite(ctx context.Context, siteID string) (uptime.Row, error) {
	obs, err := g.source.Observations(ctx, siteID)
	if err != nil {
		return uptime.Row{}, err
	}
	if len(obs) == 0 {
		return uptime.Row{}, ErrUnknownSite
	}
	res, err := g.estimator.Estimate(ctx, siteID, obs, g.now())
	if err != nil {
		return uptime.Row{}, err
	}
	return res.Row, nil
}

// estimate runs the pipeline for one site, turning a panic into an error.
func (g *Generator) estimate(ctx context.Context, siteID string, now time.Time) (row uptime.Row, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	obs, err := g.source.Observations(ctx, siteID)
	if err != nil {
		return uptime.Row{}, err
	}
	res, err := g.estimator.Estimate(ctx, siteID, obs, now)
	if err != nil {
		return uptime.Row{}, err
	}
	g.metrics.Skipped("future", res.Stats.Future)
	g.metrics.Skipped("malformed", res.Stats.Malformed)
	if res.Stats.Malformed > 0 {
		g.logger.Warn("malformed observations skipped", "site_id", siteID, "count", res.Stats.Malformed)
	}
	return res.Row, nil
}

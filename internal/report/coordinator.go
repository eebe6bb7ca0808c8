package report

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"uptime-report-backend/internal/metrics"
	"uptime-report-backend/internal/model"
	"uptime-report-backend/internal/store"
	"uptime-report-backend/internal/uptime"
)

// Notifier is told about every report that completes.
type Notifier interface {
	Notify(ctx context.Context, reportID string)
}

// StartResult describes the outcome of Start.
type StartResult struct {
	ReportID string
	// AlreadyRunning is set when another run held the job slot; ReportID then
	// names that run.
	AlreadyRunning bool
	Rows           int
}

// LookupStatus is the outcome of Get.
type LookupStatus int

const (
	LookupNotFound LookupStatus = iota
	LookupRunning
	LookupComplete
)

// Lookup is a report as seen by a reader.
type Lookup struct {
	Status LookupStatus
	// ReportID is the requested report, or the in-flight one while Running.
	ReportID    string
	Rows        []uptime.Row
	CompletedAt *time.Time
}

// CoordinatorConfig holds the optional collaborators of a Coordinator.
type CoordinatorConfig struct {
	NewID    func() string
	Notifier Notifier
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
}

// Coordinator allows at most one report generation at a time.
type Coordinator struct {
	jobs      store.JobStore
	generator *Generator
	newID     func() string
	notifier  Notifier
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// NewCoordinator creates a coordinator over jobs.
func NewCoordinator(jobs store.JobStore, generator *Generator, cfg CoordinatorConfig) *Coordinator {
	c := &Coordinator{
		jobs:      jobs,
		generator: generator,
		newID:     cfg.NewID,
		notifier:  cfg.Notifier,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
	}
	if c.newID == nil {
		c.newID = uuid.NewString
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Init resets the job slot. Call once at startup.
func (c *Coordinator) Init(ctx context.Context) error {
	return c.jobs.ResetJob(ctx)
}

// Start generates a new report synchronously, unless one is already running.
// The run ignores cancellation of ctx once the job slot is taken.
func (c *Coordinator) Start(ctx context.Context) (StartResult, error) {
	reportID := c.newID()
	acquired, current, err := c.jobs.AcquireJob(ctx, reportID)
	if err != nil {
		return StartResult{}, err
	}
	if !acquired {
		c.metrics.ReportRejected()
		return StartResult{ReportID: current, AlreadyRunning: true}, nil
	}
	c.metrics.ReportStarted()

	runCtx := context.WithoutCancel(ctx)
	res, err := c.run(runCtx, reportID)
	if err != nil {
		c.logger.Error("report generation failed", "report_id", reportID, "error", err)
		return res, err
	}
	if c.notifier != nil {
		c.notifier.Notify(runCtx, reportID)
	}
	return res, nil
}

// run holds the job slot for its whole duration and always gives it back.
func (c *Coordinator) run(ctx context.Context, reportID string) (StartResult, error) {
	started := time.Now()
	defer func() {
		if err := c.jobs.ReleaseJob(ctx, reportID); err != nil {
			c.logger.Error("failed to release job slot", "report_id", reportID, "error", err)
		}
		c.metrics.ObserveReport(time.Since(started))
	}()

	res := StartResult{ReportID: reportID}
	if err := c.jobs.CreateReport(ctx, reportID); err != nil {
		return res, err
	}
	rows, err := c.generator.Generate(ctx, reportID)
	if err != nil {
		return res, err
	}
	if err := c.jobs.CompleteReport(ctx, reportID, rows); err != nil {
		return res, err
	}
	res.Rows = len(rows)
	c.logger.Info("report complete", "report_id", reportID, "rows", res.Rows, "elapsed", time.Since(started))
	return res, nil
}

// Get returns a completed report. While any run is in flight every lookup
// reports Running with the in-flight id.
func (c *Coordinator) Get(ctx context.Context, reportID string) (Lookup, error) {
	state, err := c.jobs.JobState(ctx)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return Lookup{}, err
	}
	if state.Status == model.ReportRunning {
		return Lookup{Status: LookupRunning, ReportID: state.ReportID}, nil
	}

	report, err := c.jobs.FindReport(ctx, reportID)
	if errors.Is(err, store.ErrNotFound) {
		return Lookup{Status: LookupNotFound, ReportID: reportID}, nil
	}
	if err != nil {
		return Lookup{}, err
	}
	if report.Status != model.ReportComplete {
		return Lookup{Status: LookupNotFound, ReportID: reportID}, nil
	}
	return Lookup{
		Status:      LookupComplete,
		ReportID:    reportID,
		Rows:        store.ReportRows(report),
		CompletedAt: report.CompletedAt,
	}, nil
}

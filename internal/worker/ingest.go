// Package worker provides background job processing for SafeWalk.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/safewalk/safewalk/internal/hazard"
	"github.com/safewalk/safewalk/pkg/geo"
)

// HazardIntake is the slice of the hazard service the ingest job needs.
type HazardIntake interface {
	CreateReport(ctx context.Context, input hazard.CreateInput) (*hazard.Report, error)
	ResolveReport(ctx context.Context, id string) (*hazard.Report, error)
	ListReports(ctx context.Context, opts hazard.ListOptions) (*hazard.ListResult, error)
}

// Message job types published by the citizen reporting app.
const (
	JobTypeHazardReport  = "hazard_report"
	JobTypeHazardResolve = "hazard_resolve"
	JobTypeHealthCheck   = "health_check"
)

// IngestMessage is the wire format of a hazard event.
type IngestMessage struct {
	JobType string `json:"job_type"`

	// Report fields, set for hazard_report.
	Point         *MessagePoint `json:"point,omitempty"`
	Category      string        `json:"category,omitempty"`
	Severity      int           `json:"severity,omitempty"`
	PriorityScore *float64      `json:"priority_score,omitempty"`
	Description   string        `json:"description,omitempty"`
	ReporterRef   *string       `json:"reporter_ref,omitempty"`

	// ReportID is set for hazard_resolve.
	ReportID string `json:"report_id,omitempty"`
}

// MessagePoint is a coordinate as published on the topic.
type MessagePoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ErrPermanent marks a message that will never succeed on redelivery.
var ErrPermanent = errors.New("permanent ingest failure")

// IngestMetrics tracks ingest job statistics.
type IngestMetrics struct {
	mu sync.RWMutex

	ReportsCreated  int64
	ReportsResolved int64
	Rejected        int64
	Failed          int64

	LastMessageAt time.Time
}

// Snapshot returns a copy of the current counters.
func (m *IngestMetrics) Snapshot() IngestMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return IngestMetrics{
		ReportsCreated:  m.ReportsCreated,
		ReportsResolved: m.ReportsResolved,
		Rejected:        m.Rejected,
		Failed:          m.Failed,
		LastMessageAt:   m.LastMessageAt,
	}
}

// IngestJobConfig holds configuration for creating an IngestJob.
type IngestJobConfig struct {
	Hazards HazardIntake
	Logger  zerolog.Logger

	// Timeout bounds each message handler. Default: 10 seconds.
	Timeout time.Duration
}

// IngestJob applies hazard events to the hazard store.
type IngestJob struct {
	intake  HazardIntake
	logger  zerolog.Logger
	timeout time.Duration
	metrics *IngestMetrics
}

// NewIngestJob creates a new ingest job processor.
func NewIngestJob(cfg IngestJobConfig) *IngestJob {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &IngestJob{
		intake:  cfg.Hazards,
		logger:  cfg.Logger,
		timeout: timeout,
		metrics: &IngestMetrics{},
	}
}

// Metrics returns the job's metrics collector.
func (j *IngestJob) Metrics() *IngestMetrics {
	return j.metrics
}

// Handle applies one message. A nil return means the message is done and
// should be acked. ErrPermanent-wrapped returns mean the message is broken
// and should be acked rather than redelivered; anything else is transient
// and should be nacked.
func (j *IngestJob) Handle(ctx context.Context, msg IngestMessage) error {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	j.metrics.mu.Lock()
	j.metrics.LastMessageAt = time.Now()
	j.metrics.mu.Unlock()

	switch msg.JobType {
	case JobTypeHazardReport:
		return j.handleReport(ctx, msg)
	case JobTypeHazardResolve:
		return j.handleResolve(ctx, msg)
	case JobTypeHealthCheck:
		return j.handleHealthCheck(ctx)
	default:
		j.logger.Warn().Str("job_type", msg.JobType).Msg("unknown job type")
		return fmt.Errorf("%w: unknown job type %q", ErrPermanent, msg.JobType)
	}
}

func (j *IngestJob) handleReport(ctx context.Context, msg IngestMessage) error {
	if msg.Point == nil {
		j.bumpRejected()
		return fmt.Errorf("%w: hazard_report without point", ErrPermanent)
	}

	report, err := j.intake.CreateReport(ctx, hazard.CreateInput{
		Point:         geo.LatLng{Lat: msg.Point.Lat, Lng: msg.Point.Lng},
		Category:      msg.Category,
		Severity:      msg.Severity,
		PriorityScore: msg.PriorityScore,
		Description:   msg.Description,
		ReporterRef:   msg.ReporterRef,
	})
	if err != nil {
		if hazard.IsValidation(err) {
			j.bumpRejected()
			j.logger.Warn().Err(err).Msg("rejected hazard report message")
			return fmt.Errorf("%w: %s", ErrPermanent, err.Error())
		}
		j.bumpFailed()
		return err
	}

	j.metrics.mu.Lock()
	j.metrics.ReportsCreated++
	j.metrics.mu.Unlock()

	j.logger.Info().
		Str("report_id", report.ID).
		Str("category", report.Category).
		Int("severity", report.Severity).
		Msg("hazard report ingested")

	return nil
}

func (j *IngestJob) handleResolve(ctx context.Context, msg IngestMessage) error {
	if msg.ReportID == "" {
		j.bumpRejected()
		return fmt.Errorf("%w: hazard_resolve without report_id", ErrPermanent)
	}

	report, err := j.intake.ResolveReport(ctx, msg.ReportID)
	if err != nil {
		if errors.Is(err, hazard.ErrReportNotFound) {
			j.bumpRejected()
			j.logger.Warn().Str("report_id", msg.ReportID).Msg("resolve for unknown report")
			return fmt.Errorf("%w: report %s not found", ErrPermanent, msg.ReportID)
		}
		j.bumpFailed()
		return err
	}

	j.metrics.mu.Lock()
	j.metrics.ReportsResolved++
	j.metrics.mu.Unlock()

	j.logger.Info().Str("report_id", report.ID).Msg("hazard report resolved")

	return nil
}

func (j *IngestJob) handleHealthCheck(ctx context.Context) error {
	j.logger.Debug().Msg("running health check")

	// A one-row list verifies store connectivity end to end.
	if _, err := j.intake.ListReports(ctx, hazard.ListOptions{Limit: 1}); err != nil {
		j.bumpFailed()
		return fmt.Errorf("health check failed: %w", err)
	}

	j.logger.Debug().Msg("health check passed")
	return nil
}

func (j *IngestJob) bumpRejected() {
	j.metrics.mu.Lock()
	j.metrics.Rejected++
	j.metrics.mu.Unlock()
}

func (j *IngestJob) bumpFailed() {
	j.metrics.mu.Lock()
	j.metrics.Failed++
	j.metrics.mu.Unlock()
}

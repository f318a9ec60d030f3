package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
const (
	attrCommand    = "command"
	attrStatus     = "status"
	attrMode       = "mode"
	attrUserDomain = "user_domain"
)

// Metrics provides methods for recording observability metrics.
// The zero value and a nil *Metrics are valid no-op recorders.
type Metrics struct {
	// doveadm subprocess metrics
	commandsTotal   metric.Int64Counter
	commandDuration metric.Float64Histogram

	// Archive metrics
	foldersTotal metric.Int64Counter
	runDuration  metric.Float64Histogram

	// detailedLabels controls whether high-cardinality labels are included
	detailedLabels bool
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{
		detailedLabels: detailedLabels,
	}

	var err error

	m.commandsTotal, err = meter.Int64Counter(
		"doveadm_commands_total",
		metric.WithDescription("Total number of doveadm invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create doveadm_commands_total counter: %w", err)
	}

	m.commandDuration, err = meter.Float64Histogram(
		"doveadm_command_duration_seconds",
		metric.WithDescription("doveadm invocation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 30.0, 120.0, 600.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create doveadm_command_duration_seconds histogram: %w", err)
	}

	m.foldersTotal, err = meter.Int64Counter(
		"archive_folders_total",
		metric.WithDescription("Total number of processed folder plans by result"),
		metric.WithUnit("{folder}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive_folders_total counter: %w", err)
	}

	m.runDuration, err = meter.Float64Histogram(
		"archive_run_duration_seconds",
		metric.WithDescription("Duration of a complete archive run in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(1, 10, 60, 300, 900, 3600, 14400),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive_run_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordCommand records one doveadm invocation.
//
// Parameters:
//   - command: doveadm subcommand ("search", "move", "mailbox list", ...)
//   - status: Result status ("success", "absent" or "error")
//   - duration: Time taken by the subprocess
func (m *Metrics) RecordCommand(ctx context.Context, command, status string, duration time.Duration) {
	if m == nil || m.commandsTotal == nil || m.commandDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := metric.WithAttributes(
		attribute.String(attrCommand, command),
		attribute.String(attrStatus, status),
	)

	m.commandsTotal.Add(ctx, 1, attrs)
	m.commandDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordFolder records the outcome of one folder plan.
// The user's mail domain is only attached when detailed labels are enabled.
func (m *Metrics) RecordFolder(ctx context.Context, mode, status, user string) {
	if m == nil || m.foldersTotal == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrMode, mode),
		attribute.String(attrStatus, status),
	}
	if m.detailedLabels && user != "" {
		attrs = append(attrs, attribute.String(attrUserDomain, ExtractUserDomain(user)))
	}

	m.foldersTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRun records the duration of a complete archive run.
func (m *Metrics) RecordRun(ctx context.Context, status string, duration time.Duration) {
	if m == nil || m.runDuration == nil {
		return // Instrumentation not initialized
	}

	m.runDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.String(attrStatus, status)))
}

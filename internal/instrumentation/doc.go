// Package instrumentation provides OpenTelemetry instrumentation for
// dovecot-archive runs.
//
// dovecot-archive is usually started from cron, so telemetry is flushed when
// the run ends rather than scraped:
//   - OTLP export (metrics and traces) to a collector
//   - Prometheus metrics pushed to a Pushgateway on Shutdown
//   - stdout export for debugging
//
// # Metrics
//
//   - doveadm_commands_total: Counter of doveadm invocations by command and status
//   - doveadm_command_duration_seconds: Histogram of doveadm invocation durations
//   - archive_folders_total: Counter of folder plans by mode (move/copy) and result
//   - archive_run_duration_seconds: Histogram of complete run durations
//
// # Tracing
//
// Spans are created for the whole run (archive.run), each folder plan
// (archive.folder) and each doveadm invocation (doveadm.<command>).
//
// # Configuration
//
// Instrumentation is configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable instrumentation (default: false)
//   - METRICS_EXPORTER: prometheus, otlp, stdout or none (default: none)
//   - TRACING_EXPORTER: otlp, stdout or none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_EXPORTER_OTLP_INSECURE: Use plain HTTP for OTLP
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 1.0)
//   - PROMETHEUS_PUSHGATEWAY_URL: Pushgateway for the prometheus exporter
//   - PROMETHEUS_PUSH_JOB: Pushgateway job name (default: dovecot-archive)
//   - OTEL_SERVICE_NAME: Service name (default: dovecot-archive)
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	provider.Metrics().RecordCommand(ctx, "search", instrumentation.StatusSuccess, time.Since(start))
package instrumentation

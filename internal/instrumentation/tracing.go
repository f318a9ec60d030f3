package instrumentation

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the default tracer name for dovecot-archive.
const TracerName = "github.com/teemow/dovecot-archive"

// Span attribute keys.
const (
	// SpanAttrCommand is the doveadm subcommand.
	SpanAttrCommand = "doveadm.command"

	// SpanAttrExitCode is the doveadm exit code.
	SpanAttrExitCode = "doveadm.exit_code"

	// SpanAttrUser is the source mail user.
	SpanAttrUser = "mail.user"

	// SpanAttrDstUser is the destination mail user.
	SpanAttrDstUser = "mail.dst_user"

	// SpanAttrFolder is the source folder.
	SpanAttrFolder = "mail.folder"

	// SpanAttrDestination is the destination folder.
	SpanAttrDestination = "mail.destination"

	// SpanAttrYear is the year a split-by-year plan covers.
	SpanAttrYear = "archive.year"

	// SpanAttrStatus is the folder plan outcome.
	SpanAttrStatus = "archive.status"
)

// SpanAttributeBuilder helps construct OpenTelemetry span attributes
// with consistent naming.
type SpanAttributeBuilder struct {
	attrs []attribute.KeyValue
}

// NewSpanAttributeBuilder creates a new SpanAttributeBuilder.
func NewSpanAttributeBuilder() *SpanAttributeBuilder {
	return &SpanAttributeBuilder{
		attrs: make([]attribute.KeyValue, 0, 8),
	}
}

// WithUsers adds source and destination user attributes.
func (b *SpanAttributeBuilder) WithUsers(user, dstUser string) *SpanAttributeBuilder {
	if user != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrUser, user))
	}
	if dstUser != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrDstUser, dstUser))
	}
	return b
}

// WithFolders adds source and destination folder attributes.
func (b *SpanAttributeBuilder) WithFolders(folder, destination string) *SpanAttributeBuilder {
	b.attrs = append(b.attrs,
		attribute.String(SpanAttrFolder, folder),
		attribute.String(SpanAttrDestination, destination),
	)
	return b
}

// WithYear adds the year attribute when year is set.
func (b *SpanAttributeBuilder) WithYear(year int) *SpanAttributeBuilder {
	if year != 0 {
		b.attrs = append(b.attrs, attribute.Int(SpanAttrYear, year))
	}
	return b
}

// Build returns the constructed attributes.
func (b *SpanAttributeBuilder) Build() []attribute.KeyValue {
	return b.attrs
}

// StartSpan starts a new span with the given name and attributes.
// The caller is responsible for ending the span with defer span.End().
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// StartCommandSpan starts a client span for a doveadm invocation.
func StartCommandSpan(ctx context.Context, command string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := make([]attribute.KeyValue, 0, len(attrs)+1)
	allAttrs = append(allAttrs, attribute.String(SpanAttrCommand, command))
	allAttrs = append(allAttrs, attrs...)

	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, "doveadm."+command,
		trace.WithAttributes(allAttrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// SetSpanError records an error on the span and sets the status to error.
func SetSpanError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanSuccess sets the span status to OK.
func SetSpanSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// GetTraceID returns the trace ID from the current span in context.
// Returns empty string if no valid span is present.
func GetTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		return span.SpanContext().TraceID().String()
	}
	return ""
}

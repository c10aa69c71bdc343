package orders

import (
	"context"
	"time"
)

// Logger interface for operational logging, warnings, and error reporting.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// ContextualLogger interface for context-aware logging with automatic trace
// correlation. Implementations can derive trace/span IDs from the context.
type ContextualLogger interface {
	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}

// MetricsCollector interface for collecting performance and operational metrics.
type MetricsCollector interface {
	RecordDuration(metric string, duration time.Duration, labels map[string]string)
	IncrementCounter(metric string, labels map[string]string)
	RecordValue(metric string, value float64, labels map[string]string)
}

// SpanContext represents an active tracing span that can be finished and updated with attributes.
type SpanContext interface {
	SetStatus(status string)
	AddAttribute(key, value string)
}

// TracingCollector interface for collecting distributed tracing information.
// Dependency-free so any tracing backend can be plugged in.
type TracingCollector interface {
	StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, SpanContext)
	FinishSpan(spanCtx SpanContext, status string, attrs map[string]string)
}

// CreationMetrics is the per-attempt record emitted by the creation
// orchestrator - success or failure - so every attempt is observable with
// identical shape. ErrorReason is empty on success.
type CreationMetrics struct {
	OperationID         string
	OrderTitle          string
	ISBN                string
	Category            Category
	ValidationDuration  time.Duration
	PersistenceDuration time.Duration
	TotalDuration       time.Duration
	Success             bool
	ErrorReason         string
}

// MetricsSink receives one CreationMetrics record per creation attempt.
// The orchestrator constructs the record and hands it over explicitly
// instead of writing to an ambient side channel.
type MetricsSink interface {
	Record(ctx context.Context, metrics CreationMetrics)
}

// Creation phases, reported as the phase label on logs and metrics.
const (
	PhaseStarted    = "started"
	PhaseValidating = "validating"
	PhasePersisting = "persisting"
	PhaseDeriving   = "deriving"
	PhaseCompleted  = "completed"
	PhaseFailed     = "failed"
)

const (
	logMsgCreationStarted     = "order creation started"
	logMsgCreationCompleted   = "order creation completed"
	logMsgCreationFailed      = "order creation failed"
	logMsgValidationPerformed = "validation performed"
	logMsgStockValidation     = "stock validation performed"
	logMsgDatabaseOperation   = "database operation completed"
	logMsgMetricsRecord       = "order creation metrics"

	logAttrOperationID  = "operation_id"
	logAttrOrderID      = "order_id"
	logAttrTitle        = "title"
	logAttrAuthor       = "author"
	logAttrCategory     = "category"
	logAttrISBN         = "isbn"
	logAttrPhase        = "phase"
	logAttrError        = "error"
	logAttrSuccess      = "success"
	logAttrValidationMS = "validation_ms"
	logAttrDatabaseMS   = "database_ms"
	logAttrTotalMS      = "total_ms"

	metricCreationDuration    = "order_creation_duration_seconds"
	metricValidationDuration  = "order_validation_duration_seconds"
	metricPersistenceDuration = "order_persistence_duration_seconds"
	metricCreationAttempts    = "order_creation_attempts_total"

	statusSuccess = "success"
	statusError   = "error"

	spanNameCreateOrder = "orders.create"
)

// LoggingMetricsSink writes each creation record as a single structured
// info log entry.
type LoggingMetricsSink struct {
	logger Logger
}

// NewLoggingMetricsSink creates a sink that logs creation records.
func NewLoggingMetricsSink(logger Logger) LoggingMetricsSink {
	return LoggingMetricsSink{logger: logger}
}

// Record logs the creation metrics record.
func (s LoggingMetricsSink) Record(_ context.Context, metrics CreationMetrics) {
	if s.logger == nil {
		return
	}

	s.logger.Info(logMsgMetricsRecord,
		logAttrOperationID, metrics.OperationID,
		logAttrTitle, metrics.OrderTitle,
		logAttrISBN, metrics.ISBN,
		logAttrCategory, string(metrics.Category),
		logAttrValidationMS, toMilliseconds(metrics.ValidationDuration),
		logAttrDatabaseMS, toMilliseconds(metrics.PersistenceDuration),
		logAttrTotalMS, toMilliseconds(metrics.TotalDuration),
		logAttrSuccess, metrics.Success,
		logAttrError, metrics.ErrorReason,
	)
}

func toMilliseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}

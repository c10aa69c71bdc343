package orders

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CreateOrderHandler orchestrates order creation:
// validation -> entity construction -> persistence -> profile derivation.
// Every attempt - success or failure - emits one CreationMetrics record
// through the configured sink, so all failures funnel through a single
// observable path.
type CreateOrderHandler struct {
	storage          Storage
	validator        *Validator
	logger           Logger
	contextualLogger ContextualLogger
	metricsCollector MetricsCollector
	tracingCollector TracingCollector
	metricsSink      MetricsSink
	clock            func() time.Time
}

// HandlerOption defines a functional option for configuring CreateOrderHandler.
type HandlerOption func(*CreateOrderHandler) error

// WithLogger sets the basic logger for the handler and its validator.
func WithLogger(logger Logger) HandlerOption {
	return func(h *CreateOrderHandler) error {
		h.logger = logger
		return nil
	}
}

// WithContextualLogger sets the context-aware logger for the handler and its validator.
func WithContextualLogger(logger ContextualLogger) HandlerOption {
	return func(h *CreateOrderHandler) error {
		h.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector receiving duration histograms and
// attempt counters.
func WithMetrics(collector MetricsCollector) HandlerOption {
	return func(h *CreateOrderHandler) error {
		h.metricsCollector = collector
		return nil
	}
}

// WithMetricsSink sets the sink receiving the per-attempt CreationMetrics record.
func WithMetricsSink(sink MetricsSink) HandlerOption {
	return func(h *CreateOrderHandler) error {
		h.metricsSink = sink
		return nil
	}
}

// WithTracing sets the tracing collector for the handler.
func WithTracing(collector TracingCollector) HandlerOption {
	return func(h *CreateOrderHandler) error {
		h.tracingCollector = collector
		return nil
	}
}

// WithClock replaces the time source, for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *CreateOrderHandler) error {
		h.clock = clock
		return nil
	}
}

// NewCreateOrderHandler creates the creation orchestrator over the given
// storage with optional configuration.
func NewCreateOrderHandler(storage Storage, options ...HandlerOption) (CreateOrderHandler, error) {
	if storage == nil {
		return CreateOrderHandler{}, ErrNilStorage
	}

	h := CreateOrderHandler{
		storage: storage,
		clock:   time.Now,
	}

	for _, option := range options {
		if err := option(&h); err != nil {
			return CreateOrderHandler{}, err
		}
	}

	h.validator = NewValidator(storage, h.logger, h.contextualLogger).WithClock(h.clock)

	return h, nil
}

// Handle processes one creation request. On success it returns the freshly
// derived OrderProfile. Rule failures come back as *ValidationError carrying
// the full failure list; storage-level uniqueness races are mapped into the
// same shape. Any other failure propagates unchanged after being recorded
// in metrics.
func (h CreateOrderHandler) Handle(ctx context.Context, request CreateOrderRequest) (OrderProfile, error) {
	totalStart := time.Now()
	var validationDuration, persistenceDuration time.Duration

	operationID := newOperationID()
	phase := PhaseStarted

	ctx, span := h.startSpan(ctx, operationID)

	h.info(ctx, logMsgCreationStarted,
		logAttrOperationID, operationID,
		logAttrTitle, request.Title,
		logAttrAuthor, request.Author,
		logAttrCategory, string(request.Category),
		logAttrISBN, request.ISBN,
	)

	fail := func(err error) (OrderProfile, error) {
		h.error(ctx, logMsgCreationFailed,
			logAttrOperationID, operationID,
			logAttrPhase, phase,
			logAttrError, err.Error(),
		)
		h.record(ctx, request, operationID, validationDuration, persistenceDuration,
			time.Since(totalStart), PhaseFailed, err)
		h.finishSpan(span, statusError, err)

		return OrderProfile{}, err
	}

	// Validating.
	phase = PhaseValidating
	h.info(ctx, logMsgValidationPerformed, logAttrOperationID, operationID)

	validationStart := time.Now()
	failures, validateErr := h.validator.Validate(ctx, request)
	validationDuration = time.Since(validationStart)

	if validateErr != nil {
		return fail(validateErr)
	}

	if len(failures) > 0 {
		return fail(&ValidationError{Failures: failures})
	}

	h.info(ctx, logMsgStockValidation, logAttrOperationID, operationID)

	// Persisting.
	phase = PhasePersisting
	order := NewOrder(request, h.clock().UTC())

	persistenceStart := time.Now()
	insertErr := h.storage.Insert(ctx, order)
	persistenceDuration = time.Since(persistenceStart)

	if insertErr != nil {
		// A concurrent request may win the race between the uniqueness
		// check and the insert; surface the constraint violation as the
		// same field-level failure a validator hit would have produced.
		var uniqueErr *UniqueConstraintError
		if errors.As(insertErr, &uniqueErr) {
			return fail(uniquenessFailure(uniqueErr))
		}

		return fail(insertErr)
	}

	h.info(ctx, logMsgDatabaseOperation,
		logAttrOperationID, operationID,
		logAttrOrderID, order.ID.String(),
	)

	// Deriving.
	phase = PhaseDeriving
	profile := BuildProfile(order, h.clock().UTC())

	phase = PhaseCompleted
	h.info(ctx, logMsgCreationCompleted,
		logAttrOperationID, operationID,
		logAttrOrderID, order.ID.String(),
	)
	h.record(ctx, request, operationID, validationDuration, persistenceDuration,
		time.Since(totalStart), phase, nil)
	h.finishSpan(span, statusSuccess, nil)

	return profile, nil
}

// newOperationID returns a fresh short random token, one per creation attempt.
func newOperationID() string {
	return strings.SplitN(uuid.NewString(), "-", 2)[0]
}

// uniquenessFailure maps a storage constraint violation onto the matching
// field-level validation failure.
func uniquenessFailure(uniqueErr *UniqueConstraintError) error {
	failure := FieldFailure{Field: fieldISBN, Message: msgISBNNotUnique}
	if uniqueErr.Column == fieldTitle {
		failure = FieldFailure{Field: fieldTitle, Message: msgTitleNotUnique}
	}

	return &ValidationError{Failures: []FieldFailure{failure}}
}

// record emits the per-attempt metrics: the CreationMetrics record to the
// sink and durations/counters to the metrics collector.
func (h CreateOrderHandler) record(
	ctx context.Context,
	request CreateOrderRequest,
	operationID string,
	validationDuration time.Duration,
	persistenceDuration time.Duration,
	totalDuration time.Duration,
	phase string,
	err error,
) {
	success := err == nil

	if h.metricsSink != nil {
		errorReason := ""
		if err != nil {
			errorReason = err.Error()
		}

		h.metricsSink.Record(ctx, CreationMetrics{
			OperationID:         operationID,
			OrderTitle:          request.Title,
			ISBN:                request.ISBN,
			Category:            request.Category,
			ValidationDuration:  validationDuration,
			PersistenceDuration: persistenceDuration,
			TotalDuration:       totalDuration,
			Success:             success,
			ErrorReason:         errorReason,
		})
	}

	if h.metricsCollector != nil {
		status := statusSuccess
		if !success {
			status = statusError
		}

		labels := map[string]string{
			logAttrCategory: string(request.Category),
			logAttrPhase:    phase,
			"status":        status,
		}

		h.metricsCollector.RecordDuration(metricCreationDuration, totalDuration, labels)
		h.metricsCollector.RecordDuration(metricValidationDuration, validationDuration, labels)
		h.metricsCollector.RecordDuration(metricPersistenceDuration, persistenceDuration, labels)
		h.metricsCollector.IncrementCounter(metricCreationAttempts, labels)
	}
}

func (h CreateOrderHandler) startSpan(ctx context.Context, operationID string) (context.Context, SpanContext) {
	if h.tracingCollector == nil {
		return ctx, nil
	}

	return h.tracingCollector.StartSpan(ctx, spanNameCreateOrder, map[string]string{
		logAttrOperationID: operationID,
	})
}

func (h CreateOrderHandler) finishSpan(span SpanContext, status string, err error) {
	if h.tracingCollector == nil || span == nil {
		return
	}

	attrs := map[string]string{}
	if err != nil {
		attrs[logAttrError] = err.Error()
	}

	h.tracingCollector.FinishSpan(span, status, attrs)
}

func (h CreateOrderHandler) info(ctx context.Context, msg string, args ...any) {
	if h.contextualLogger != nil {
		h.contextualLogger.InfoContext(ctx, msg, args...)
	} else if h.logger != nil {
		h.logger.Info(msg, args...)
	}
}

func (h CreateOrderHandler) error(ctx context.Context, msg string, args ...any) {
	if h.contextualLogger != nil {
		h.contextualLogger.ErrorContext(ctx, msg, args...)
	} else if h.logger != nil {
		h.logger.Error(msg, args...)
	}
}

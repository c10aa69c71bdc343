package orderstore

import (
	"errors"

	"github.com/bookstack/orders-management-api/orders"
)

var ErrEmptyTableNameSupplied = errors.New("empty table name supplied")
var ErrNilDatabaseConnection = errors.New("nil database connection supplied")

// Interface aliases so callers wiring the store and the domain handlers
// deal with one set of observability contracts.

// Logger interface for SQL query logging, warnings, and error reporting.
type Logger = orders.Logger

// ContextualLogger interface for context-aware logging with trace correlation.
type ContextualLogger = orders.ContextualLogger

// MetricsCollector interface for collecting store performance metrics.
type MetricsCollector = orders.MetricsCollector

// Option defines a functional option for configuring OrderStore.
type Option func(*OrderStore) error

// WithTableName sets the orders table name for the store.
func WithTableName(tableName string) Option {
	return func(s *OrderStore) error {
		if tableName == "" {
			return ErrEmptyTableNameSupplied
		}

		s.tableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the store.
//
// Debug level: SQL queries with execution timing (development use)
// Info level: operation outcomes and durations (production-safe)
// Error level: failures that cause operation errors.
func WithLogger(logger Logger) Option {
	return func(s *OrderStore) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets the context-aware logger for the store.
func WithContextualLogger(logger ContextualLogger) Option {
	return func(s *OrderStore) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the store. It receives
// query/insert durations and error counters.
func WithMetrics(collector MetricsCollector) Option {
	return func(s *OrderStore) error {
		s.metricsCollector = collector
		return nil
	}
}

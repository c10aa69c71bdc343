// Package orderstore provides the Postgres-backed order storage used by the
// order intake service. SQL is built with goqu and executed through a thin
// database adapter so the store works with a pgx pool, a sqlx.DB, or a
// plain sql.DB.
//
// The store enforces the title and ISBN uniqueness invariants with table
// constraints: the validation engine's pre-checks are not atomic with the
// insert, so a losing racer surfaces here as *orders.UniqueConstraintError.
package orderstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect import
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/bookstack/orders-management-api/orders"
	"github.com/bookstack/orders-management-api/orderstore/internal/adapters"
)

const (
	defaultOrderTableName = "orders"

	colID            = "id"
	colTitle         = "title"
	colAuthor        = "author"
	colISBN          = "isbn"
	colCategory      = "category"
	colPrice         = "price"
	colPublishedDate = "published_date"
	colCoverImageURL = "cover_image_url"
	colStockQuantity = "stock_quantity"
	colIsAvailable   = "is_available"
	colCreatedAt     = "created_at"
	colUpdatedAt     = "updated_at"

	dialectPostgres = "postgres"
	castNumeric     = "?::numeric"

	logMsgSQLExecuted        = "executed sql for: "
	logMsgDBQueryFailed      = "database query execution failed"
	logMsgDBExecFailed       = "database execution failed during order insert"
	logMsgCloseRowsFailed    = "failed to close database rows"
	logMsgScanRowFailed      = "failed to scan database row"
	logMsgBuildQueryFailed   = "failed to build sql query"
	logMsgOperationCompleted = "orderstore operation completed"

	logAttrError      = "error"
	logAttrQuery      = "query"
	logAttrOperation  = "operation"
	logAttrDurationMS = "duration_ms"

	metricOperationDuration = "orderstore_operation_duration_seconds"
	metricOperationErrors   = "orderstore_operation_errors_total"

	opFindByTitle = "find_by_title"
	opFindByISBN  = "find_by_isbn"
	opFindByID    = "find_by_id"
	opCountDay    = "count_created_between"
	opInsert      = "insert"
)

// schemaTemplate is the DDL applied by CreateSchema. The UNIQUE constraints
// on title and isbn are the system's last line of defense against the
// check-then-insert race described in the package comment.
const schemaTemplate = `
CREATE TABLE IF NOT EXISTS %[1]s (
    id               TEXT PRIMARY KEY,
    title            TEXT NOT NULL,
    author           TEXT NOT NULL,
    isbn             TEXT NOT NULL,
    category         TEXT NOT NULL,
    price            NUMERIC(10, 2) NOT NULL,
    published_date   TIMESTAMPTZ NOT NULL,
    cover_image_url  TEXT,
    stock_quantity   INTEGER NOT NULL,
    is_available     BOOLEAN NOT NULL,
    created_at       TIMESTAMPTZ NOT NULL,
    updated_at       TIMESTAMPTZ,
    CONSTRAINT %[1]s_title_key UNIQUE (title),
    CONSTRAINT %[1]s_isbn_key UNIQUE (isbn)
);
CREATE INDEX IF NOT EXISTS idx_%[1]s_created_at ON %[1]s (created_at);`

// Ensure OrderStore satisfies the domain storage contract.
var _ orders.Storage = OrderStore{}

// OrderStore persists and queries orders in Postgres.
type OrderStore struct {
	db               adapters.DBAdapter
	tableName        string
	logger           Logger
	contextualLogger ContextualLogger
	metricsCollector MetricsCollector
}

// orderRow is the scan target for a full order row.
type orderRow struct {
	id            string
	title         string
	author        string
	isbn          string
	category      string
	price         string
	publishedDate time.Time
	coverImageURL *string
	stockQuantity int
	isAvailable   bool
	createdAt     time.Time
	updatedAt     *time.Time
}

// NewOrderStoreFromPGXPool creates a new OrderStore using a pgx pool with optional configuration.
func NewOrderStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (OrderStore, error) {
	if db == nil {
		return OrderStore{}, ErrNilDatabaseConnection
	}

	return newOrderStore(adapters.NewPGXAdapter(db), options...)
}

// NewOrderStoreFromSQLDB creates a new OrderStore using a sql.DB with optional configuration.
func NewOrderStoreFromSQLDB(db *sql.DB, options ...Option) (OrderStore, error) {
	if db == nil {
		return OrderStore{}, ErrNilDatabaseConnection
	}

	return newOrderStore(adapters.NewSQLAdapter(db), options...)
}

// NewOrderStoreFromSQLX creates a new OrderStore using a sqlx.DB with optional configuration.
func NewOrderStoreFromSQLX(db *sqlx.DB, options ...Option) (OrderStore, error) {
	if db == nil {
		return OrderStore{}, ErrNilDatabaseConnection
	}

	return newOrderStore(adapters.NewSQLXAdapter(db), options...)
}

func newOrderStore(db adapters.DBAdapter, options ...Option) (OrderStore, error) {
	s := OrderStore{
		db:        db,
		tableName: defaultOrderTableName,
	}

	for _, option := range options {
		if err := option(&s); err != nil {
			return OrderStore{}, err
		}
	}

	return s, nil
}

// CreateSchema applies the orders DDL, including the uniqueness constraints.
func (s OrderStore) CreateSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, fmt.Sprintf(schemaTemplate, s.tableName))
	if err != nil {
		return errors.Join(ErrSchemaCreationFailed, err)
	}

	return nil
}

// FindByTitle returns the order with the exact given title, or nil when none exists.
func (s OrderStore) FindByTitle(ctx context.Context, title string) (*orders.Order, error) {
	return s.findOne(ctx, opFindByTitle, goqu.C(colTitle).Eq(title))
}

// FindByISBN returns the order with the exact given ISBN, or nil when none exists.
// The input is compared as supplied; existing records are compared as stored.
func (s OrderStore) FindByISBN(ctx context.Context, isbn string) (*orders.Order, error) {
	return s.findOne(ctx, opFindByISBN, goqu.C(colISBN).Eq(isbn))
}

// FindByID returns the order with the given identifier, or nil when none exists.
func (s OrderStore) FindByID(ctx context.Context, id uuid.UUID) (*orders.Order, error) {
	return s.findOne(ctx, opFindByID, goqu.C(colID).Eq(id.String()))
}

// CountCreatedBetween counts orders with createdAt in [from, until).
func (s OrderStore) CountCreatedBetween(ctx context.Context, from time.Time, until time.Time) (int, error) {
	sqlQuery, _, toSQLErr := goqu.Dialect(dialectPostgres).
		From(s.tableName).
		Select(goqu.COUNT(goqu.Star())).
		Where(goqu.C(colCreatedAt).Gte(from), goqu.C(colCreatedAt).Lt(until)).
		ToSQL()
	if toSQLErr != nil {
		s.logError(ctx, logMsgBuildQueryFailed, logAttrError, toSQLErr.Error())
		return 0, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	start := time.Now()
	rows, queryErr := s.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	s.logQueryWithDuration(ctx, sqlQuery, opCountDay, duration)

	if queryErr != nil {
		s.recordError(opCountDay)
		s.logError(ctx, logMsgDBQueryFailed, logAttrError, queryErr.Error(), logAttrQuery, sqlQuery)
		return 0, errors.Join(ErrQueryFailed, queryErr)
	}
	defer s.closeRows(ctx, rows)

	var count int64
	if rows.Next() {
		if scanErr := rows.Scan(&count); scanErr != nil {
			s.logError(ctx, logMsgScanRowFailed, logAttrError, scanErr.Error())
			return 0, errors.Join(ErrScanFailed, scanErr)
		}
	}

	s.recordOperation(ctx, opCountDay, duration)

	return int(count), nil
}

// Insert appends one order row. Unique constraint violations on title or
// isbn are returned as *orders.UniqueConstraintError.
func (s OrderStore) Insert(ctx context.Context, order orders.Order) error {
	var coverImageURL any
	if order.CoverImageURL != nil {
		coverImageURL = *order.CoverImageURL
	}

	var updatedAt any
	if order.UpdatedAt != nil {
		updatedAt = *order.UpdatedAt
	}

	record := goqu.Record{
		colID:            order.ID.String(),
		colTitle:         order.Title,
		colAuthor:        order.Author,
		colISBN:          order.ISBN,
		colCategory:      string(order.Category),
		colPrice:         goqu.L(castNumeric, order.Price.String()),
		colPublishedDate: order.PublishedDate,
		colCoverImageURL: coverImageURL,
		colStockQuantity: order.StockQuantity,
		colIsAvailable:   order.IsAvailable,
		colCreatedAt:     order.CreatedAt,
		colUpdatedAt:     updatedAt,
	}

	sqlQuery, _, toSQLErr := goqu.Dialect(dialectPostgres).
		Insert(s.tableName).
		Rows(record).
		ToSQL()
	if toSQLErr != nil {
		s.logError(ctx, logMsgBuildQueryFailed, logAttrError, toSQLErr.Error())
		return errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	start := time.Now()
	_, execErr := s.db.Exec(ctx, sqlQuery)
	duration := time.Since(start)
	s.logQueryWithDuration(ctx, sqlQuery, opInsert, duration)

	if execErr != nil {
		s.recordError(opInsert)
		s.logError(ctx, logMsgDBExecFailed, logAttrError, execErr.Error(), logAttrQuery, sqlQuery)
		return mapInsertError(execErr)
	}

	s.recordOperation(ctx, opInsert, duration)

	return nil
}

// findOne runs a single-row select with the given predicate.
func (s OrderStore) findOne(ctx context.Context, operation string, predicate goqu.Expression) (*orders.Order, error) {
	sqlQuery, buildErr := s.buildSelectQuery(predicate)
	if buildErr != nil {
		s.logError(ctx, logMsgBuildQueryFailed, logAttrError, buildErr.Error())
		return nil, buildErr
	}

	start := time.Now()
	rows, queryErr := s.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	s.logQueryWithDuration(ctx, sqlQuery, operation, duration)

	if queryErr != nil {
		s.recordError(operation)
		s.logError(ctx, logMsgDBQueryFailed, logAttrError, queryErr.Error(), logAttrQuery, sqlQuery)
		return nil, errors.Join(ErrQueryFailed, queryErr)
	}
	defer s.closeRows(ctx, rows)

	if !rows.Next() {
		s.recordOperation(ctx, operation, duration)
		return nil, nil
	}

	order, scanErr := s.scanOrder(ctx, rows)
	if scanErr != nil {
		return nil, scanErr
	}

	s.recordOperation(ctx, operation, duration)

	return order, nil
}

func (s OrderStore) buildSelectQuery(predicate goqu.Expression) (string, error) {
	sqlQuery, _, toSQLErr := goqu.Dialect(dialectPostgres).
		From(s.tableName).
		Select(
			colID, colTitle, colAuthor, colISBN, colCategory,
			goqu.C(colPrice).Cast("TEXT"),
			colPublishedDate, colCoverImageURL, colStockQuantity,
			colIsAvailable, colCreatedAt, colUpdatedAt,
		).
		Where(predicate).
		Limit(1).
		ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (s OrderStore) scanOrder(ctx context.Context, rows adapters.DBRows) (*orders.Order, error) {
	row := orderRow{}

	scanErr := rows.Scan(
		&row.id, &row.title, &row.author, &row.isbn, &row.category,
		&row.price, &row.publishedDate, &row.coverImageURL, &row.stockQuantity,
		&row.isAvailable, &row.createdAt, &row.updatedAt,
	)
	if scanErr != nil {
		s.logError(ctx, logMsgScanRowFailed, logAttrError, scanErr.Error())
		return nil, errors.Join(ErrScanFailed, scanErr)
	}

	id, idErr := uuid.Parse(row.id)
	if idErr != nil {
		return nil, errors.Join(ErrScanFailed, idErr)
	}

	price, priceErr := decimal.NewFromString(row.price)
	if priceErr != nil {
		return nil, errors.Join(ErrScanFailed, priceErr)
	}

	return &orders.Order{
		ID:            id,
		Title:         row.title,
		Author:        row.author,
		ISBN:          row.isbn,
		Category:      orders.Category(row.category),
		Price:         price,
		PublishedDate: row.publishedDate,
		CoverImageURL: row.coverImageURL,
		StockQuantity: row.stockQuantity,
		IsAvailable:   row.isAvailable,
		CreatedAt:     row.createdAt,
		UpdatedAt:     row.updatedAt,
	}, nil
}

func (s OrderStore) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		s.warn(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

// logQueryWithDuration logs the SQL with timing at debug level.
func (s OrderStore) logQueryWithDuration(ctx context.Context, sqlQuery string, operation string, duration time.Duration) {
	s.debug(ctx, logMsgSQLExecuted+operation,
		logAttrQuery, sqlQuery,
		logAttrDurationMS, float64(duration.Nanoseconds())/1e6,
	)
}

func (s OrderStore) logError(ctx context.Context, msg string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.ErrorContext(ctx, msg, args...)
	} else if s.logger != nil {
		s.logger.Error(msg, args...)
	}
}

func (s OrderStore) debug(ctx context.Context, msg string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.DebugContext(ctx, msg, args...)
	} else if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s OrderStore) warn(ctx context.Context, msg string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.WarnContext(ctx, msg, args...)
	} else if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

func (s OrderStore) info(ctx context.Context, msg string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.InfoContext(ctx, msg, args...)
	} else if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s OrderStore) recordOperation(ctx context.Context, operation string, duration time.Duration) {
	s.info(ctx, logMsgOperationCompleted,
		logAttrOperation, operation,
		logAttrDurationMS, float64(duration.Nanoseconds())/1e6,
	)

	if s.metricsCollector != nil {
		s.metricsCollector.RecordDuration(metricOperationDuration, duration, map[string]string{
			logAttrOperation: operation,
		})
	}
}

func (s OrderStore) recordError(operation string) {
	if s.metricsCollector != nil {
		s.metricsCollector.IncrementCounter(metricOperationErrors, map[string]string{
			logAttrOperation: operation,
		})
	}
}

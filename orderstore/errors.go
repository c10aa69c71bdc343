package orderstore

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/bookstack/orders-management-api/orders"
)

var ErrQueryFailed = errors.New("order query execution failed")
var ErrInsertFailed = errors.New("order insert execution failed")
var ErrScanFailed = errors.New("scanning order row failed")
var ErrBuildingQueryFailed = errors.New("building sql query failed")
var ErrSchemaCreationFailed = errors.New("creating orders schema failed")

const uniqueViolationCode = "23505"

// mapInsertError translates driver-specific unique constraint violations
// into *orders.UniqueConstraintError so the orchestrator can report a race
// on title or ISBN as a validation failure instead of an internal fault.
// Everything else is returned wrapped as an insert failure.
func mapInsertError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return &orders.UniqueConstraintError{
			Column: uniqueColumn(pgErr.ConstraintName + " " + pgErr.Detail),
			Err:    err,
		}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolationCode {
		return &orders.UniqueConstraintError{
			Column: uniqueColumn(string(pqErr.Constraint) + " " + pqErr.Detail),
			Err:    err,
		}
	}

	return errors.Join(ErrInsertFailed, err)
}

// uniqueColumn inspects the constraint name or error detail for the
// offending column.
func uniqueColumn(detail string) string {
	lowered := strings.ToLower(detail)

	switch {
	case strings.Contains(lowered, colISBN):
		return colISBN
	case strings.Contains(lowered, colTitle):
		return colTitle
	default:
		return ""
	}
}

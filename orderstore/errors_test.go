package orderstore

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookstack/orders-management-api/orders"
	"github.com/bookstack/orders-management-api/orderstore/internal/adapters"
)

func Test_MapInsertError_PGXUniqueViolation(t *testing.T) {
	tests := []struct {
		name           string
		constraint     string
		detail         string
		expectedColumn string
	}{
		{
			name:           "isbn_constraint",
			constraint:     "orders_isbn_key",
			expectedColumn: "isbn",
		},
		{
			name:           "title_constraint",
			constraint:     "orders_title_key",
			expectedColumn: "title",
		},
		{
			name:           "column_from_detail",
			detail:         "Key (isbn)=(1234567890) already exists.",
			expectedColumn: "isbn",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pgErr := &pgconn.PgError{
				Code:           "23505",
				ConstraintName: tc.constraint,
				Detail:         tc.detail,
			}

			mapped := mapInsertError(pgErr)

			var uniqueErr *orders.UniqueConstraintError
			require.ErrorAs(t, mapped, &uniqueErr)
			assert.Equal(t, tc.expectedColumn, uniqueErr.Column)
			assert.ErrorIs(t, mapped, pgErr)
		})
	}
}

func Test_MapInsertError_PQUniqueViolation(t *testing.T) {
	pqErr := &pq.Error{
		Code:       "23505",
		Constraint: "orders_title_key",
	}

	mapped := mapInsertError(pqErr)

	var uniqueErr *orders.UniqueConstraintError
	require.ErrorAs(t, mapped, &uniqueErr)
	assert.Equal(t, "title", uniqueErr.Column)
}

func Test_MapInsertError_OtherErrorsWrapped(t *testing.T) {
	cause := errors.New("connection reset")

	mapped := mapInsertError(cause)

	var uniqueErr *orders.UniqueConstraintError
	assert.False(t, errors.As(mapped, &uniqueErr))
	assert.ErrorIs(t, mapped, ErrInsertFailed)
	assert.ErrorIs(t, mapped, cause)
}

func Test_MapInsertError_NonUniqueViolationCode(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23503", ConstraintName: "orders_isbn_key"}

	mapped := mapInsertError(pgErr)

	var uniqueErr *orders.UniqueConstraintError
	assert.False(t, errors.As(mapped, &uniqueErr))
	assert.ErrorIs(t, mapped, ErrInsertFailed)
}

type failingDBAdapter struct {
	err error
}

func (f failingDBAdapter) Query(_ context.Context, _ string) (adapters.DBRows, error) {
	return nil, f.err
}

func (f failingDBAdapter) Exec(_ context.Context, _ string) (adapters.DBResult, error) {
	return nil, f.err
}

func Test_CreateSchema_WrapsDDLFailure(t *testing.T) {
	cause := errors.New("permission denied for schema public")
	store := OrderStore{db: failingDBAdapter{err: cause}, tableName: defaultOrderTableName}

	err := store.CreateSchema(context.Background())

	assert.ErrorIs(t, err, ErrSchemaCreationFailed)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrInsertFailed)
}

package orders_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookstack/orders-management-api/orders"
)

type recordingSink struct {
	records []orders.CreationMetrics
}

func (s *recordingSink) Record(_ context.Context, metrics orders.CreationMetrics) {
	s.records = append(s.records, metrics)
}

func newHandler(t *testing.T, store *fakeStorage, sink orders.MetricsSink) orders.CreateOrderHandler {
	t.Helper()

	options := []orders.HandlerOption{
		orders.WithClock(func() time.Time { return fixedNow }),
	}
	if sink != nil {
		options = append(options, orders.WithMetricsSink(sink))
	}

	handler, err := orders.NewCreateOrderHandler(store, options...)
	require.NoError(t, err)

	return handler
}

func Test_NewCreateOrderHandler_RequiresStorage(t *testing.T) {
	_, err := orders.NewCreateOrderHandler(nil)

	assert.ErrorIs(t, err, orders.ErrNilStorage)
}

func Test_CreateOrderHandler_CreatesTechnicalOrder(t *testing.T) {
	store := newFakeStorage()
	sink := &recordingSink{}
	handler := newHandler(t, store, sink)

	request := orders.CreateOrderRequest{
		Title:         "Advanced Networking for Professionals",
		Author:        "Jane Doe",
		ISBN:          "TECH-123459",
		Category:      orders.CategoryTechnical,
		Price:         decimal.NewFromInt(45),
		PublishedDate: fixedNow.Add(-730 * 24 * time.Hour),
		StockQuantity: 5,
	}

	profile, err := handler.Handle(context.Background(), request)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, profile.ID)
	assert.Equal(t, "Technical & Professional", profile.CategoryDisplayName)
	assert.Equal(t, "J. D.", profile.AuthorInitials)
	assert.Equal(t, "2 years old", profile.PublishedAge)
	assert.Equal(t, "Limited Stock", profile.AvailabilityStatus)
	assert.Equal(t, "$45.00", profile.FormattedPrice)
	assert.True(t, profile.IsAvailable)

	require.Len(t, store.inserted, 1)
	persisted := store.inserted[0]
	assert.Equal(t, profile.ID, persisted.ID)
	assert.Equal(t, fixedNow, persisted.CreatedAt)
	assert.Nil(t, persisted.UpdatedAt)

	require.Len(t, sink.records, 1)
	record := sink.records[0]
	assert.True(t, record.Success)
	assert.NotEmpty(t, record.OperationID)
	assert.Equal(t, "Advanced Networking for Professionals", record.OrderTitle)
	assert.Empty(t, record.ErrorReason)
}

func Test_CreateOrderHandler_ZeroStockIsUnavailable(t *testing.T) {
	handler := newHandler(t, newFakeStorage(), nil)

	request := validRequest()
	request.StockQuantity = 0

	profile, err := handler.Handle(context.Background(), request)

	require.NoError(t, err)
	assert.False(t, profile.IsAvailable)
	assert.Equal(t, "Out of Stock", profile.AvailabilityStatus)
}

func Test_CreateOrderHandler_RejectsInvalidRequest(t *testing.T) {
	store := newFakeStorage()
	sink := &recordingSink{}
	handler := newHandler(t, store, sink)

	request := validRequest()
	request.Price = decimal.Zero

	_, err := handler.Handle(context.Background(), request)

	var validationErr *orders.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, failureMessages(validationErr.Failures), "Price must be greater than 0.")

	assert.Empty(t, store.inserted)
	require.Len(t, sink.records, 1)
	assert.False(t, sink.records[0].Success)
	assert.NotEmpty(t, sink.records[0].ErrorReason)
}

func Test_CreateOrderHandler_MapsUniquenessRace(t *testing.T) {
	tests := []struct {
		name            string
		column          string
		expectedField   string
		expectedMessage string
	}{
		{
			name:            "isbn_collision",
			column:          "isbn",
			expectedField:   "isbn",
			expectedMessage: "ISBN already exists in the system.",
		},
		{
			name:            "title_collision",
			column:          "title",
			expectedField:   "title",
			expectedMessage: "A title with the same author already exists.",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeStorage()
			store.insertErr = &orders.UniqueConstraintError{Column: tc.column}
			handler := newHandler(t, store, nil)

			_, err := handler.Handle(context.Background(), validRequest())

			var validationErr *orders.ValidationError
			require.ErrorAs(t, err, &validationErr)
			require.Len(t, validationErr.Failures, 1)
			assert.Equal(t, tc.expectedField, validationErr.Failures[0].Field)
			assert.Equal(t, tc.expectedMessage, validationErr.Failures[0].Message)
		})
	}
}

func Test_CreateOrderHandler_PropagatesStorageFailure(t *testing.T) {
	store := newFakeStorage()
	store.insertErr = errors.New("connection reset")
	sink := &recordingSink{}
	handler := newHandler(t, store, sink)

	_, err := handler.Handle(context.Background(), validRequest())

	require.Error(t, err)
	var validationErr *orders.ValidationError
	assert.False(t, errors.As(err, &validationErr))

	require.Len(t, sink.records, 1)
	assert.False(t, sink.records[0].Success)
	assert.Equal(t, "connection reset", sink.records[0].ErrorReason)
}

package orders_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookstack/orders-management-api/orders"
)

const businessRulesMessage = "One or more business rules failed."

func Test_BusinessRules_DailyCreationLimit(t *testing.T) {
	t.Run("at_the_cap_rejected", func(t *testing.T) {
		store := newFakeStorage()
		store.createdToday = 500

		failures, err := newValidator(store).Validate(context.Background(), validRequest())

		require.NoError(t, err)
		assert.Contains(t, failureMessages(failures), businessRulesMessage)
	})

	t.Run("just_below_the_cap_accepted", func(t *testing.T) {
		store := newFakeStorage()
		store.createdToday = 499

		failures, err := newValidator(store).Validate(context.Background(), validRequest())

		require.NoError(t, err)
		assert.Empty(t, failures)
	})
}

func Test_BusinessRules_TechnicalUnderpriced(t *testing.T) {
	request := validRequest()
	request.Category = orders.CategoryTechnical
	request.Title = "Advanced Networking Guide"
	request.Price = decimal.NewFromInt(19)

	failures, err := newValidator(newFakeStorage()).Validate(context.Background(), request)

	require.NoError(t, err)
	assert.Contains(t, failureMessages(failures), businessRulesMessage)
}

func Test_BusinessRules_ChildrenWholeWordMatching(t *testing.T) {
	t.Run("whole_restricted_word_rejected", func(t *testing.T) {
		request := validRequest()
		request.Category = orders.CategoryChildren
		request.Title = "Gore and Glory"
		request.Price = decimal.NewFromInt(15)

		failures, err := newValidator(newFakeStorage()).Validate(context.Background(), request)

		require.NoError(t, err)
		assert.Contains(t, failureMessages(failures), businessRulesMessage)
	})

	t.Run("substring_does_not_trip_the_composite", func(t *testing.T) {
		// "Gorey" contains "gore" as a substring, so the per-field content
		// rules fire, but the composite matches whole words only.
		request := validRequest()
		request.Category = orders.CategoryChildren
		request.Title = "Gorey Adventures"
		request.Price = decimal.NewFromInt(15)

		failures, err := newValidator(newFakeStorage()).Validate(context.Background(), request)

		require.NoError(t, err)
		messages := failureMessages(failures)
		assert.Contains(t, messages, "Title contains inappropriate content.")
		assert.Contains(t, messages, "Children's title contains restricted or inappropriate content.")
		assert.NotContains(t, messages, businessRulesMessage)
	})
}

func Test_BusinessRules_ExpensiveHighStock(t *testing.T) {
	request := validRequest()
	request.Price = decimal.NewFromInt(600)
	request.StockQuantity = 11

	failures, err := newValidator(newFakeStorage()).Validate(context.Background(), request)

	require.NoError(t, err)
	assert.Contains(t, failureMessages(failures), businessRulesMessage)

	request.StockQuantity = 10

	failures, err = newValidator(newFakeStorage()).Validate(context.Background(), request)

	require.NoError(t, err)
	assert.NotContains(t, failureMessages(failures), businessRulesMessage)
}

func Test_BusinessRules_StorageFaultPropagates(t *testing.T) {
	store := newFakeStorage()
	store.readErr = assert.AnError

	failures, err := newValidator(store).Validate(context.Background(), validRequest())

	require.Error(t, err)
	assert.Nil(t, failures)
}

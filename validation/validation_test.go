package validation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookstack/orders-management-api/validation"
)

type subject struct {
	value   int
	guarded bool
}

func Test_Evaluate_CollectsFailuresInOrder(t *testing.T) {
	rules := []validation.Rule[subject]{
		{Field: "a", Message: "first", Check: func(s subject) bool { return false }},
		{Field: "b", Message: "passes", Check: func(s subject) bool { return true }},
		{Field: "c", Message: "second", Check: func(s subject) bool { return false }},
	}

	failures, err := validation.Evaluate(context.Background(), rules, subject{})

	require.NoError(t, err)
	require.Len(t, failures, 2)
	assert.Equal(t, validation.FieldFailure{Field: "a", Message: "first"}, failures[0])
	assert.Equal(t, validation.FieldFailure{Field: "c", Message: "second"}, failures[1])
}

func Test_Evaluate_GuardSkipsRule(t *testing.T) {
	rules := []validation.Rule[subject]{
		{
			Field: "a", Message: "guarded",
			When:  func(s subject) bool { return s.guarded },
			Check: func(s subject) bool { return false },
		},
	}

	failures, err := validation.Evaluate(context.Background(), rules, subject{guarded: false})
	require.NoError(t, err)
	assert.Empty(t, failures)

	failures, err = validation.Evaluate(context.Background(), rules, subject{guarded: true})
	require.NoError(t, err)
	assert.Len(t, failures, 1)
}

func Test_Evaluate_ContextCheckFaultStopsEvaluation(t *testing.T) {
	fault := errors.New("storage down")
	rules := []validation.Rule[subject]{
		{Field: "a", Message: "first", Check: func(s subject) bool { return false }},
		{
			Field: "b", Message: "async",
			CheckCtx: func(_ context.Context, s subject) (bool, error) { return false, fault },
		},
	}

	failures, err := validation.Evaluate(context.Background(), rules, subject{})

	require.ErrorIs(t, err, fault)
	assert.Nil(t, failures)
}

func Test_Error_JoinsFailures(t *testing.T) {
	err := &validation.Error{Failures: []validation.FieldFailure{
		{Field: "title", Message: "Title is required."},
		{Field: "price", Message: "Price must be greater than 0."},
	}}

	assert.Equal(t,
		"validation failed: title: Title is required.; price: Price must be greater than 0.",
		err.Error())
}

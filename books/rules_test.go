package books_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookstack/orders-management-api/books"
	"github.com/bookstack/orders-management-api/validation"
)

var fixedNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func newValidator() *books.Validator {
	return books.NewValidator().WithClock(func() time.Time { return fixedNow })
}

func validBookRequest() books.CreateBookRequest {
	return books.CreateBookRequest{
		Title:  "The Silent Library",
		Author: "Ann Patchett",
		Year:   2020,
		Pages: []books.Page{
			{Number: 1, Body: "It began quietly."},
			{Number: 2, Body: "And then it did not."},
		},
	}
}

func Test_BookValidator_AcceptsValidRequest(t *testing.T) {
	failures, err := newValidator().Validate(context.Background(), validBookRequest())

	require.NoError(t, err)
	assert.Empty(t, failures)
}

func Test_BookValidator_FieldRules(t *testing.T) {
	tests := []struct {
		name            string
		mutate          func(r *books.CreateBookRequest)
		expectedField   string
		expectedMessage string
	}{
		{
			name:            "empty_title",
			mutate:          func(r *books.CreateBookRequest) { r.Title = "" },
			expectedField:   "title",
			expectedMessage: "Title is required.",
		},
		{
			name:            "title_too_long",
			mutate:          func(r *books.CreateBookRequest) { r.Title = strings.Repeat("x", 201) },
			expectedField:   "title",
			expectedMessage: "Title cannot exceed 200 characters.",
		},
		{
			name:            "empty_author",
			mutate:          func(r *books.CreateBookRequest) { r.Author = "" },
			expectedField:   "author",
			expectedMessage: "Author is required.",
		},
		{
			name:            "author_too_long",
			mutate:          func(r *books.CreateBookRequest) { r.Author = strings.Repeat("y", 101) },
			expectedField:   "author",
			expectedMessage: "Author cannot exceed 100 characters.",
		},
		{
			name:            "year_before_printing_press",
			mutate:          func(r *books.CreateBookRequest) { r.Year = 1449 },
			expectedField:   "year",
			expectedMessage: "Year must be between 1450 and 2025.",
		},
		{
			name:            "year_in_the_future",
			mutate:          func(r *books.CreateBookRequest) { r.Year = 2026 },
			expectedField:   "year",
			expectedMessage: "Year must be between 1450 and 2025.",
		},
		{
			name:            "no_pages",
			mutate:          func(r *books.CreateBookRequest) { r.Pages = nil },
			expectedField:   "pages",
			expectedMessage: "Book must have at least one page.",
		},
		{
			name:            "empty_page_body",
			mutate:          func(r *books.CreateBookRequest) { r.Pages[1].Body = "" },
			expectedField:   "pages[1].body",
			expectedMessage: "Page body cannot be empty.",
		},
		{
			name:            "page_body_too_long",
			mutate:          func(r *books.CreateBookRequest) { r.Pages[0].Body = strings.Repeat("z", 5001) },
			expectedField:   "pages[0].body",
			expectedMessage: "Page body is too long.",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			request := validBookRequest()
			tc.mutate(&request)

			failures, err := newValidator().Validate(context.Background(), request)

			require.NoError(t, err)
			require.NotEmpty(t, failures)
			assert.Contains(t, failures, validation.FieldFailure{
				Field:   tc.expectedField,
				Message: tc.expectedMessage,
			})
		})
	}
}

func Test_BookValidator_BoundaryYears(t *testing.T) {
	request := validBookRequest()

	request.Year = 1450
	failures, err := newValidator().Validate(context.Background(), request)
	require.NoError(t, err)
	assert.Empty(t, failures)

	request.Year = 2025
	failures, err = newValidator().Validate(context.Background(), request)
	require.NoError(t, err)
	assert.Empty(t, failures)
}

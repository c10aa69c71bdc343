package books

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/bookstack/orders-management-api/validation"
)

const (
	msgTitleRequired  = "Title is required."
	msgTitleTooLong   = "Title cannot exceed 200 characters."
	msgAuthorRequired = "Author is required."
	msgAuthorTooLong  = "Author cannot exceed 100 characters."
	msgYearOutOfRange = "Year must be between 1450 and %d."
	msgNoPages        = "Book must have at least one page."
	msgPageBodyEmpty  = "Page body cannot be empty."
	msgPageBodyLong   = "Page body is too long."
)

const (
	fieldTitle  = "title"
	fieldAuthor = "author"
	fieldYear   = "year"
	fieldPages  = "pages"
)

const minPublicationYear = 1450

// Validator evaluates the create-book rule set. All rules are synchronous;
// the catalog has no uniqueness constraints to consult.
type Validator struct {
	clock func() time.Time
}

func NewValidator() *Validator {
	return &Validator{clock: time.Now}
}

// WithClock replaces the time source, for tests.
func (v *Validator) WithClock(clock func() time.Time) *Validator {
	v.clock = clock
	return v
}

// Validate evaluates every rule in declaration order and collects all
// failures. Page-body rules are emitted per page, tagged with the page index.
// The error return is reserved for rules that consult external state; the
// current rule set is fully synchronous and never produces one.
func (v *Validator) Validate(ctx context.Context, request CreateBookRequest) ([]validation.FieldFailure, error) {
	return validation.Evaluate(ctx, v.rules(request), request)
}

func (v *Validator) rules(request CreateBookRequest) []validation.Rule[CreateBookRequest] {
	currentYear := v.clock().Year()

	rules := []validation.Rule[CreateBookRequest]{
		{Field: fieldTitle, Message: msgTitleRequired,
			Check: func(r CreateBookRequest) bool { return r.Title != "" }},
		{Field: fieldTitle, Message: msgTitleTooLong,
			Check: func(r CreateBookRequest) bool { return utf8.RuneCountInString(r.Title) <= 200 }},
		{Field: fieldAuthor, Message: msgAuthorRequired,
			Check: func(r CreateBookRequest) bool { return r.Author != "" }},
		{Field: fieldAuthor, Message: msgAuthorTooLong,
			Check: func(r CreateBookRequest) bool { return utf8.RuneCountInString(r.Author) <= 100 }},
		{Field: fieldYear, Message: fmt.Sprintf(msgYearOutOfRange, currentYear),
			Check: func(r CreateBookRequest) bool {
				return r.Year >= minPublicationYear && r.Year <= currentYear
			}},
		{Field: fieldPages, Message: msgNoPages,
			Check: func(r CreateBookRequest) bool { return len(r.Pages) > 0 }},
	}

	for i := range request.Pages {
		index := i
		rules = append(rules,
			validation.Rule[CreateBookRequest]{
				Field: fmt.Sprintf("pages[%d].body", index), Message: msgPageBodyEmpty,
				Check: func(r CreateBookRequest) bool { return r.Pages[index].Body != "" }},
			validation.Rule[CreateBookRequest]{
				Field: fmt.Sprintf("pages[%d].body", index), Message: msgPageBodyLong,
				Check: func(r CreateBookRequest) bool {
					return utf8.RuneCountInString(r.Pages[index].Body) <= 5000
				}},
		)
	}

	return rules
}

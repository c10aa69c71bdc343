// Package validation provides the declarative rule machinery shared by the
// request validators: an ordered list of independent rule units evaluated
// against a request, collecting every violation instead of stopping at the
// first one.
package validation

import (
	"context"
	"fmt"
	"strings"
)

// FieldFailure is a single rule violation, tagged with the request field it
// targets and the user-facing message.
type FieldFailure struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error carries the full ordered list of rule violations for a rejected
// request. It is recoverable by the caller and is reported as a structured
// 4xx response, never as an internal fault.
type Error struct {
	Failures []FieldFailure
}

func (e *Error) Error() string {
	messages := make([]string, len(e.Failures))
	for i, failure := range e.Failures {
		messages[i] = failure.Field + ": " + failure.Message
	}

	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// Rule is one independent validation unit over a request of type S, tagged
// with its target field and message. Exactly one of Check and CheckCtx is
// set: Check is a synchronous predicate, CheckCtx consults external state.
// When is an optional guard; a guarded rule only fires while the guard holds.
type Rule[S any] struct {
	Field    string
	Message  string
	When     func(subject S) bool
	Check    func(subject S) bool
	CheckCtx func(ctx context.Context, subject S) (bool, error)
}

// Evaluate runs every rule in declaration order and collects all failures.
// A non-nil error indicates an infrastructure fault inside a CheckCtx unit,
// not a rule violation.
func Evaluate[S any](ctx context.Context, rules []Rule[S], subject S) ([]FieldFailure, error) {
	var failures []FieldFailure

	for _, rule := range rules {
		if rule.When != nil && !rule.When(subject) {
			continue
		}

		passed := true
		var checkErr error

		switch {
		case rule.Check != nil:
			passed = rule.Check(subject)
		case rule.CheckCtx != nil:
			passed, checkErr = rule.CheckCtx(ctx, subject)
		}

		if checkErr != nil {
			return nil, checkErr
		}

		if !passed {
			failures = append(failures, FieldFailure{Field: rule.Field, Message: rule.Message})
		}
	}

	return failures, nil
}

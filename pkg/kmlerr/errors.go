// Package kmlerr defines the error types returned by the kmlorm packages.
//
// Callers match them with errors.As (typed errors) or errors.Is
// (ErrIndexOutOfRange). Nothing in this module logs an error it returns.
package kmlerr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrIndexOutOfRange is returned by QuerySet index and slice access.
var ErrIndexOutOfRange = errors.New("queryset index out of range")

// ParseError is returned when a document cannot be turned into an element tree.
type ParseError struct {
	Message string
	// Source is the file path or URL, empty for in-memory input.
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	msg := e.Message
	if e.Source != "" {
		msg = fmt.Sprintf("%s (source: %s)", msg, e.Source)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError is returned when a value fails a domain constraint.
type ValidationError struct {
	Message string
	Field   string
	Value   any
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s=%v", e.Message, e.Field, e.Value)
}

// InvalidCoordinates is the coordinate-specific validation failure. It also
// satisfies errors.As(err, **ValidationError).
type InvalidCoordinates struct {
	Message     string
	Field       string
	Coordinates any
}

func (e *InvalidCoordinates) Error() string {
	if e.Coordinates == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Coordinates)
}

// As lets callers catch coordinate problems as generic validation errors.
func (e *InvalidCoordinates) As(target any) bool {
	if ve, ok := target.(**ValidationError); ok {
		*ve = &ValidationError{Message: e.Message, Field: e.Field, Value: e.Coordinates}
		return true
	}
	return false
}

// ElementNotFound is returned by Get when no element matched.
type ElementNotFound struct {
	ElementType string
	Lookups     map[string]any
}

func (e *ElementNotFound) Error() string {
	if len(e.Lookups) == 0 {
		return fmt.Sprintf("%s does not exist", e.ElementType)
	}
	return fmt.Sprintf("%s matching query(%s) does not exist", e.ElementType, FormatLookups(e.Lookups))
}

// MultipleElementsReturned is returned by Get when more than one element matched.
type MultipleElementsReturned struct {
	ElementType string
	Count       int
	Lookups     map[string]any
}

func (e *MultipleElementsReturned) Error() string {
	msg := fmt.Sprintf("get() returned more than one %s -- it returned %d", e.ElementType, e.Count)
	if len(e.Lookups) > 0 {
		msg += "; lookup was: " + FormatLookups(e.Lookups)
	}
	return msg
}

// QueryError reports a malformed query: unknown field, unknown lookup or a
// lookup argument of the wrong type.
type QueryError struct {
	Message string
	Field   string
}

func (e *QueryError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (field %q)", e.Message, e.Field)
}

// FormatLookups renders lookups as "k1=v1, k2=v2" with keys sorted.
func FormatLookups(lookups map[string]any) string {
	keys := make([]string, 0, len(lookups))
	for k := range lookups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, lookups[k])
	}
	return strings.Join(parts, ", ")
}

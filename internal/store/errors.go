package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is returned when an id does not resolve to an active record
var ErrNotFound = errors.New("not found")

// DuplicateNameError is returned when a school name is already taken
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("school with name %q already exists", e.Name)
}

// ValidationError rejects a mutation. Either Message is set, for a
// registration rule violation, or Fields holds per-field messages.
type ValidationError struct {
	Rule    string
	Message string
	Fields  map[string][]string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], " "))
	}
	return "invalid fields: " + strings.Join(parts, "; ")
}

// FieldError builds a ValidationError for a single field
func FieldError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: {message}}}
}

// Add appends a message for field
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// HasFields reports whether any field messages were collected
func (e *ValidationError) HasFields() bool {
	return len(e.Fields) > 0
}

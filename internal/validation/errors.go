// Package validation carries field-keyed input errors from the domain packages
// to the HTTP layer.
package validation

import (
	"errors"
	"sort"
	"strings"
)

// Errors maps a field name to the messages collected for it. The empty key
// holds errors that are not tied to a single field.
type Errors map[string][]string

func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func (e Errors) Empty() bool { return len(e) == 0 }

// Err returns e as an error, or nil when nothing was collected.
func (e Errors) Err() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		msg := strings.Join(e[f], "; ")
		if f != "" {
			msg = f + ": " + msg
		}
		parts = append(parts, msg)
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Field builds a single-field error.
func Field(field, msg string) error {
	return Errors{field: {msg}}
}

// As extracts Errors from err.
func As(err error) (Errors, bool) {
	var v Errors
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrInvalidCredentials is returned for both an unknown email and a wrong
	// password so callers cannot tell which one failed.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("authentication required")

	ErrAllocationExhausted = errors.New("no free value left for unique field")

	// ErrDanglingReference is a write naming a hotel, room or user that no
	// longer exists.
	ErrDanglingReference = errors.New("referenced record does not exist")
)

// ValidationError carries every offending field, keyed by its wire name.
type ValidationError struct {
	Fields map[string][]string

	// taken marks fields whose value collides with an existing record
	taken map[string]bool
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string][]string{}}
}

func FieldError(field, msg string) *ValidationError {
	v := NewValidationError()
	v.Add(field, msg)
	return v
}

func (v *ValidationError) Add(field, msg string) {
	if v.Fields == nil {
		v.Fields = map[string][]string{}
	}
	v.Fields[field] = append(v.Fields[field], msg)
}

// TakenFieldError reports that field's value is already used by another
// record.
func TakenFieldError(field, msg string) *ValidationError {
	v := NewValidationError()
	v.AddTaken(field, msg)
	return v
}

func (v *ValidationError) AddTaken(field, msg string) {
	v.Add(field, msg)
	if v.taken == nil {
		v.taken = map[string]bool{}
	}
	v.taken[field] = true
}

// OnlyTaken is true when field is reported and every reported problem is a
// uniqueness collision, i.e. the record already exists and is otherwise valid.
func (v *ValidationError) OnlyTaken(field string) bool {
	if v.Empty() || !v.taken[field] {
		return false
	}
	for f, msgs := range v.Fields {
		if !v.taken[f] || len(msgs) != 1 {
			return false
		}
	}
	return true
}

// Merge appends o's messages; a nil o is a no-op.
func (v *ValidationError) Merge(o *ValidationError) {
	if o == nil {
		return
	}
	for f, msgs := range o.Fields {
		for _, m := range msgs {
			v.Add(f, m)
		}
	}
	for f := range o.taken {
		if v.taken == nil {
			v.taken = map[string]bool{}
		}
		v.taken[f] = true
	}
}

func (v *ValidationError) Empty() bool { return v == nil || len(v.Fields) == 0 }

// OrNil lets callers write `return verr.OrNil()` without leaking a typed nil.
func (v *ValidationError) OrNil() error {
	if v.Empty() {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(v.Fields[k], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// DuplicateKeyError is a storage-level unique index violation.
type DuplicateKeyError struct {
	Field string
	Err   error
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate value for %s", e.Field)
}

func (e *DuplicateKeyError) Unwrap() error { return e.Err }

// IOError wraps image store failures. BadInput marks problems with the
// uploaded payload itself rather than the server's filesystem.
type IOError struct {
	Op       string
	BadInput bool
	Err      error
}

func (e *IOError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *IOError) Unwrap() error { return e.Err }

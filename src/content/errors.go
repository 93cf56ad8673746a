package content

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every *ValidationError with errors.Is.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound matches every *NotFoundError with errors.Is.
	ErrNotFound = errors.New("not found")
)

// ValidationError rejects a write that would break a content rule:
// cardinality, reorder permutations, field ranges.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid builds a ValidationError with a formatted message.
func Invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a missing entity or link, or one that does not
// belong to the stated owner.
type NotFoundError struct {
	What string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.What, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// DanglingReference describes a link whose target was deleted under a
// set-null policy. It is a warning, never returned as an error on reads.
type DanglingReference struct {
	LinkID  int64    `json:"link_id"`
	OwnerID string   `json:"owner_id"`
	Kind    LinkKind `json:"kind"`
}

func (d DanglingReference) String() string {
	return fmt.Sprintf("%s link %d on %s has no target", d.Kind, d.LinkID, d.OwnerID)
}

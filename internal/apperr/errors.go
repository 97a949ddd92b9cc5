// Package apperr defines the fatal error types for corpus validation.
package apperr

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a document or slug cannot be resolved.
var ErrNotFound = errors.New("not found")

// MalformedMetadataError reports a document whose metadata block is absent,
// unparsable, or missing a required field. It aborts the run.
type MalformedMetadataError struct {
	Path   string
	Reason string
}

func (e *MalformedMetadataError) Error() string {
	return fmt.Sprintf("%s: malformed metadata: %s", e.Path, e.Reason)
}

// DuplicateSlugError reports two documents sharing one slug. Index
// construction fails with this before any reference checking runs.
type DuplicateSlugError struct {
	Slug  string
	Paths [2]string
}

func (e *DuplicateSlugError) Error() string {
	return fmt.Sprintf("duplicate slug %q: %s and %s", e.Slug, e.Paths[0], e.Paths[1])
}

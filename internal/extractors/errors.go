package extractors

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedDocument = errors.New("malformed input document")
	ErrMissingResources  = errors.New("missing resources section")
	ErrUnsupportedInput  = errors.New("unsupported input")
)

// ResourceError is returned when a single resource's properties cannot be
// turned into a blueprint. Extraction stops at the first one.
type ResourceError struct {
	Resource string
	Type     string
	Err      error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("resource %q (%s): %v", e.Resource, e.Type, e.Err)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}

package extractors

import (
	"context"

	"github.com/railwayapp/compositor/internal/blueprint"
)

// Extractor turns one input document into image and application blueprints.
// Every implementation produces the same blueprint shapes so nothing
// downstream cares which one ran.
type Extractor interface {
	// Kind identifies the input family this extractor reads
	Kind() Kind

	// CanHandle returns true if this extractor reads the given file
	CanHandle(filename string) bool

	// Extract parses content and returns its blueprints in source order
	Extract(ctx context.Context, content []byte) (*blueprint.Set, error)
}

type Kind string

const (
	KindStructured Kind = "structured"
	KindScript     Kind = "script"
)

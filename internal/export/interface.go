package export

import (
	"github.com/railwayapp/compositor/internal/blueprint"
	"github.com/railwayapp/compositor/internal/extractors"
)

// Report is what the inspect command prints: the extractor that ran and
// the blueprints it found.
type Report struct {
	Source string          `json:"source"`
	Kind   extractors.Kind `json:"kind"`
	*blueprint.Set
}

// Exporter defines the interface for rendering a report
type Exporter interface {
	// Export renders a report in the target format
	Export(report Report) ([]byte, error)

	// Name returns the exporter name (e.g., "json")
	Name() string
}

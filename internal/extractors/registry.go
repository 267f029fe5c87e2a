package extractors

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Registry selects an extractor either from an explicit kind or from the
// input file's extension.
type Registry struct {
	extractors []Extractor
}

func NewRegistry(opts ...ScriptOption) *Registry {
	return &Registry{
		extractors: []Extractor{
			NewStructuredExtractor(),
			NewScriptExtractor(opts...),
		},
	}
}

func (r *Registry) ForFile(filename string) (Extractor, error) {
	for _, extractor := range r.extractors {
		if extractor.CanHandle(filename) {
			return extractor, nil
		}
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == ".bicep" {
		return nil, fmt.Errorf("%w: bicep templates are not supported yet", ErrUnsupportedInput)
	}
	return nil, fmt.Errorf("%w: cannot detect input kind of %q, use --kind", ErrUnsupportedInput, filename)
}

func (r *Registry) ForKind(kind string) (Extractor, error) {
	k, err := ParseKind(kind)
	if err != nil {
		return nil, err
	}
	for _, extractor := range r.extractors {
		if extractor.Kind() == k {
			return extractor, nil
		}
	}
	return nil, fmt.Errorf("%w: no extractor for kind %q", ErrUnsupportedInput, kind)
}

// ParseKind accepts the kind names and the common language aliases.
func ParseKind(kind string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "structured", "yaml", "yml", "json":
		return KindStructured, nil
	case "script", "ts", "typescript", "js", "javascript":
		return KindScript, nil
	}
	return "", fmt.Errorf("%w: unknown input kind %q", ErrUnsupportedInput, kind)
}

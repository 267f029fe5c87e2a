package extractors

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/railwayapp/compositor/internal/blueprint"
)

// StructuredExtractor reads Pulumi YAML programs. JSON is a subset of YAML so
// the same code path handles Pulumi.json style documents.
type StructuredExtractor struct{}

func NewStructuredExtractor() *StructuredExtractor {
	return &StructuredExtractor{}
}

func (s *StructuredExtractor) Kind() Kind {
	return KindStructured
}

func (s *StructuredExtractor) CanHandle(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

func (s *StructuredExtractor) Extract(ctx context.Context, content []byte) (*blueprint.Set, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrMalformedDocument)
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level must be a mapping", ErrMalformedDocument)
	}

	resources := mappingValue(root, "resources")
	if resources == nil {
		return nil, ErrMissingResources
	}
	if resources.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: resources must be a mapping", ErrMissingResources)
	}

	set := &blueprint.Set{}

	// mapping node content alternates key, value in source order
	for i := 0; i+1 < len(resources.Content); i += 2 {
		name := resources.Content[i].Value
		resource := resources.Content[i+1]

		resourceType := ""
		if typeNode := mappingValue(resource, "type"); typeNode != nil {
			resourceType = typeNode.Value
		}

		switch classify(resourceType) {
		case classImage:
			image, err := decodeImage(name, mappingValue(resource, "properties"))
			if err != nil {
				return nil, &ResourceError{Resource: name, Type: resourceType, Err: err}
			}
			set.Images = append(set.Images, image)
		case classApplication:
			app, err := decodeApplication(name, mappingValue(resource, "properties"))
			if err != nil {
				return nil, &ResourceError{Resource: name, Type: resourceType, Err: err}
			}
			set.Applications = append(set.Applications, app)
		}
	}

	return set, nil
}

func decodeImage(name string, properties *yaml.Node) (blueprint.ImageBlueprint, error) {
	var props imageProperties
	if properties != nil {
		if err := properties.Decode(&props); err != nil {
			return blueprint.ImageBlueprint{}, err
		}
	}
	return props.blueprint(name), nil
}

func decodeApplication(name string, properties *yaml.Node) (blueprint.ApplicationBlueprint, error) {
	if properties == nil {
		return blueprint.ApplicationBlueprint{Name: name}, errMissingContainers
	}

	var props containerAppProperties
	if err := properties.Decode(&props); err != nil {
		return blueprint.ApplicationBlueprint{Name: name}, err
	}
	return props.blueprint(name)
}

// mappingValue returns the value node stored under key, or nil.
func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil {
		return nil
	}
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	if node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

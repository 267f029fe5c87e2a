// Package compose assembles synthesized services into a docker-compose
// document and checks the result with the compose-go loader.
package compose

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/railwayapp/compositor/internal/blueprint"
)

const (
	Version          = "3.9"
	DefaultNetwork   = "dapr-network"
	PlacementService = "placement"
	PlacementImage   = "daprio/dapr"
	PlacementPort    = 50006
)

type Network struct {
	Driver string `yaml:"driver,omitempty"`
}

// Document is the compose file. Services keep insertion order when
// serialized.
type Document struct {
	Version  string             `yaml:"version"`
	Services Services           `yaml:"services"`
	Networks map[string]Network `yaml:"networks,omitempty"`
}

type Services []blueprint.ServiceDefinition

func (s Services) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, service := range s {
		var value yaml.Node
		if err := value.Encode(service); err != nil {
			return nil, fmt.Errorf("encoding service %s: %w", service.Name, err)
		}
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: service.Name}
		node.Content = append(node.Content, key, &value)
	}
	return node, nil
}

// Lookup returns the service with the given name.
func (d *Document) Lookup(name string) (blueprint.ServiceDefinition, bool) {
	for _, service := range d.Services {
		if service.Name == name {
			return service, true
		}
	}
	return blueprint.ServiceDefinition{}, false
}

// PlacementDefinition is the dapr placement service every document carries.
func PlacementDefinition(name, network string) blueprint.ServiceDefinition {
	port := fmt.Sprint(PlacementPort)
	return blueprint.ServiceDefinition{
		Name:     name,
		Image:    PlacementImage,
		Ports:    []string{port + ":" + port},
		Command:  []string{"./placement", "-port", port},
		Networks: []string{network},
	}
}

// Assemble keys services by name and adds the placement service and the
// shared network. Empty names mean PlacementService and DefaultNetwork.
func Assemble(services []blueprint.ServiceDefinition, placement, network string) *Document {
	if placement == "" {
		placement = PlacementService
	}
	if network == "" {
		network = DefaultNetwork
	}

	all := make(Services, 0, len(services)+1)
	all = append(all, services...)
	all = append(all, PlacementDefinition(placement, network))

	return &Document{
		Version:  Version,
		Services: all,
		Networks: map[string]Network{
			network: {Driver: "default"},
		},
	}
}

func Marshal(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to marshal compose document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to marshal compose document: %w", err)
	}
	return buf.Bytes(), nil
}

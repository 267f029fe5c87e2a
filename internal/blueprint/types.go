package blueprint

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Set is what every extractor produces: the images and container apps of
// one input document, in source order.
type Set struct {
	Images       []ImageBlueprint       `json:"images"`
	Applications []ApplicationBlueprint `json:"applications"`
}

// ImageNameProperty is the member script programs read from an image
// binding. Script images are referenced as "<binding>.imageName".
const ImageNameProperty = "imageName"

// ImageBlueprint describes an image resource. ReferenceName is the symbolic
// name other resources use to point at it.
type ImageBlueprint struct {
	ReferenceName string        `json:"referenceName" yaml:"-"`
	Name          string        `json:"name,omitempty" yaml:"name"`
	Build         *BuildContext `json:"build,omitempty" yaml:"build"`
}

// BuildContext accepts both `build: ./dir` and `build: {context: ./dir}`.
type BuildContext struct {
	Context string `json:"context" yaml:"context"`
}

func (b *BuildContext) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		b.Context = node.Value
		return nil
	}

	type plain BuildContext
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*b = BuildContext(p)
	return nil
}

func (b *BuildContext) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		b.Context = s
		return nil
	}

	type plain BuildContext
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("build must be a path or an object with a context: %w", err)
	}
	*b = BuildContext(p)
	return nil
}

// ContainerBlueprint is one entry of an app's template.containers. Image is
// either a literal tag or a reference expression.
type ContainerBlueprint struct {
	Name  string `json:"name" yaml:"name"`
	Image string `json:"image" yaml:"image"`
}

// DaprConfig and IngressConfig keep pointer fields: absent and false are
// different inputs to the port policy.
type DaprConfig struct {
	Enabled *bool   `json:"enabled,omitempty" yaml:"enabled"`
	AppPort *uint   `json:"appPort,omitempty" yaml:"appPort"`
	AppID   *string `json:"appId,omitempty" yaml:"appId"`
}

type IngressConfig struct {
	External   *bool `json:"external,omitempty" yaml:"external"`
	TargetPort *uint `json:"targetPort,omitempty" yaml:"targetPort"`
}

// ApplicationBlueprint is one container app resource.
type ApplicationBlueprint struct {
	Name       string               `json:"name"`
	Dapr       *DaprConfig          `json:"dapr,omitempty"`
	Ingress    *IngressConfig       `json:"ingress,omitempty"`
	Containers []ContainerBlueprint `json:"containers"`
}

// SidecarEnabled reports whether dapr.enabled is explicitly true.
func (a ApplicationBlueprint) SidecarEnabled() bool {
	return a.Dapr.IsEnabled()
}

func (d *DaprConfig) IsEnabled() bool {
	return d != nil && d.Enabled != nil && *d.Enabled
}

func (d *DaprConfig) Port() uint {
	if d == nil || d.AppPort == nil {
		return 0
	}
	return *d.AppPort
}

func (d *DaprConfig) ID() (string, bool) {
	if d == nil || d.AppID == nil {
		return "", false
	}
	return *d.AppID, true
}

func (i *IngressConfig) IsExternal() bool {
	return i != nil && i.External != nil && *i.External
}

func (i *IngressConfig) Port() uint {
	if i == nil || i.TargetPort == nil {
		return 0
	}
	return *i.TargetPort
}

// FindImage returns the image whose ReferenceName equals name.
func (s *Set) FindImage(name string) (ImageBlueprint, bool) {
	for _, image := range s.Images {
		if image.ReferenceName == name {
			return image, true
		}
	}
	return ImageBlueprint{}, false
}

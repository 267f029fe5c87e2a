package extractors

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/railwayapp/compositor/internal/blueprint"
)

// Resource type tokens recognised in structured programs.
const (
	TypeRegistryImage = "docker:RegistryImage"
	TypeDockerImage   = "docker:Image"
	TypeContainerApp  = "azure-native:app:ContainerApp"
)

var containerAppType = regexp.MustCompile(`^azure-native:app(/v[\w-]+)?:ContainerApp$`)

type resourceClass int

const (
	classIgnored resourceClass = iota
	classImage
	classApplication
)

func classify(resourceType string) resourceClass {
	switch {
	case resourceType == TypeRegistryImage, resourceType == TypeDockerImage, resourceType == "docker:index:Image":
		return classImage
	case containerAppType.MatchString(resourceType):
		return classApplication
	default:
		return classIgnored
	}
}

// imageProperties is the part of an image resource's properties we read.
// Script programs call the name imageName.
type imageProperties struct {
	Name      string                  `json:"name" yaml:"name"`
	ImageName string                  `json:"imageName" yaml:"imageName"`
	Build     *blueprint.BuildContext `json:"build" yaml:"build"`
}

type containerAppProperties struct {
	Configuration *struct {
		Dapr    *blueprint.DaprConfig    `json:"dapr" yaml:"dapr"`
		Ingress *blueprint.IngressConfig `json:"ingress" yaml:"ingress"`
	} `json:"configuration" yaml:"configuration"`
	Template *struct {
		Containers []blueprint.ContainerBlueprint `json:"containers" yaml:"containers"`
	} `json:"template" yaml:"template"`
}

var (
	errMissingContainers = errors.New("missing template.containers")
	errUnnamedContainer  = errors.New("container without a name")
)

func (p imageProperties) blueprint(referenceName string) blueprint.ImageBlueprint {
	name := p.Name
	if name == "" {
		name = p.ImageName
	}
	return blueprint.ImageBlueprint{
		ReferenceName: referenceName,
		Name:          name,
		Build:         p.Build,
	}
}

func (p containerAppProperties) blueprint(name string) (blueprint.ApplicationBlueprint, error) {
	app := blueprint.ApplicationBlueprint{Name: name}

	if p.Template == nil || p.Template.Containers == nil {
		return app, errMissingContainers
	}
	for i, container := range p.Template.Containers {
		if container.Name == "" {
			return app, fmt.Errorf("%w at index %d", errUnnamedContainer, i)
		}
		if container.Image == "" {
			return app, fmt.Errorf("container %q has no image", container.Name)
		}
	}

	if p.Configuration != nil {
		app.Dapr = p.Configuration.Dapr
		app.Ingress = p.Configuration.Ingress
	}
	app.Containers = p.Template.Containers
	return app, nil
}

// Package synth expands application blueprints into compose service
// definitions, adding a daprd sidecar next to every dapr enabled container.
package synth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/railwayapp/compositor/internal/blueprint"
	"github.com/railwayapp/compositor/internal/output"
	"github.com/railwayapp/compositor/internal/ports"
	"github.com/railwayapp/compositor/internal/resolver"
)

var ErrDuplicateService = errors.New("duplicate service name")

// SidecarSuffix is appended to a container name to name its sidecar.
const SidecarSuffix = "_dapr"

type Options struct {
	SidecarImage     string
	SidecarBinary    string
	PlacementService string
	PlacementAddress string
	Network          string
	// SidecarArgs are appended after the placement address.
	SidecarArgs []string
}

func DefaultOptions() Options {
	return Options{
		SidecarImage:     "daprio/daprd:edge",
		SidecarBinary:    "./daprd",
		PlacementService: "placement",
		PlacementAddress: "placement:50006",
		Network:          "dapr-network",
		SidecarArgs:      []string{"air"},
	}
}

// withDefaults fills every empty field from DefaultOptions. A nil
// SidecarArgs takes the default; an empty non-nil slice means none.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.SidecarImage == "" {
		o.SidecarImage = d.SidecarImage
	}
	if o.SidecarBinary == "" {
		o.SidecarBinary = d.SidecarBinary
	}
	if o.PlacementService == "" {
		o.PlacementService = d.PlacementService
	}
	if o.PlacementAddress == "" {
		o.PlacementAddress = d.PlacementAddress
	}
	if o.Network == "" {
		o.Network = d.Network
	}
	if o.SidecarArgs == nil {
		o.SidecarArgs = d.SidecarArgs
	}
	return o
}

type Synthesizer struct {
	opts Options
}

func New(opts Options) *Synthesizer {
	return &Synthesizer{opts: opts.withDefaults()}
}

func (s *Synthesizer) Options() Options {
	return s.opts
}

// Synthesize emits the services for set in application then container order.
// env is attached to every app service and never to sidecars.
func (s *Synthesizer) Synthesize(set *blueprint.Set, env []string) ([]blueprint.ServiceDefinition, error) {
	images := resolver.New(set.Images)
	// the placement service is added at assembly and owns its name
	seen := map[string]string{s.opts.PlacementService: "the placement service"}

	var services []blueprint.ServiceDefinition
	add := func(service blueprint.ServiceDefinition, app string) error {
		owner := fmt.Sprintf("application %q", app)
		if previous, ok := seen[service.Name]; ok {
			return fmt.Errorf("%w '%s' produced by %s and %s", ErrDuplicateService, service.Name, previous, owner)
		}
		seen[service.Name] = owner
		services = append(services, service)
		return nil
	}

	for _, app := range set.Applications {
		for _, container := range app.Containers {
			resolved := images.Resolve(container.Image)
			policy := ports.Resolve(container.Name, app.Dapr, app.Ingress)

			log := output.ServiceLogger(container.Name)
			if resolved.IsBuildContext {
				log.Debug("building from context", "context", resolved.BuildContextPath, "app", app.Name)
			} else {
				log.Debug("using image", "image", resolved.LiteralName, "app", app.Name)
			}

			service := s.appService(container.Name, resolved, policy, env)
			if !app.SidecarEnabled() {
				if err := add(service, app.Name); err != nil {
					return nil, err
				}
				continue
			}

			service.DependsOn = []string{s.opts.PlacementService}
			service.Networks = []string{s.opts.Network}
			if err := add(service, app.Name); err != nil {
				return nil, err
			}
			if err := add(s.sidecarService(container.Name, policy.SidecarAppPort), app.Name); err != nil {
				return nil, err
			}
		}
	}

	return services, nil
}

func (s *Synthesizer) appService(name string, image blueprint.ResolvedImage, policy ports.Policy, env []string) blueprint.ServiceDefinition {
	service := blueprint.ServiceDefinition{
		Name:        name,
		Ports:       policy.Ports,
		Environment: env,
	}
	if image.IsBuildContext {
		service.Build = &blueprint.BuildConfig{Context: image.BuildContextPath}
	} else {
		service.Image = image.LiteralName
	}
	return service
}

func (s *Synthesizer) sidecarService(container string, appPort uint) blueprint.ServiceDefinition {
	command := []string{
		s.opts.SidecarBinary,
		"-app-id", container,
		"-app-port", fmt.Sprint(appPort),
		"-placement-host-address", s.opts.PlacementAddress,
	}
	command = append(command, s.opts.SidecarArgs...)

	return blueprint.ServiceDefinition{
		Name:        container + SidecarSuffix,
		Image:       s.opts.SidecarImage,
		DependsOn:   []string{container},
		NetworkMode: networkModeOf(container),
		Command:     command,
	}
}

// IsSidecar reports whether service is a generated daprd sidecar: named
// <app>_dapr and sharing the network namespace of <app>.
func IsSidecar(service blueprint.ServiceDefinition) bool {
	app, ok := strings.CutSuffix(service.Name, SidecarSuffix)
	return ok && app != "" && service.NetworkMode == networkModeOf(app)
}

func networkModeOf(service string) string {
	return "service:" + service
}

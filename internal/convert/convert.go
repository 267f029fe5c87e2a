// Package convert runs one conversion: extract blueprints from a Pulumi
// program, synthesize compose services, assemble and validate the document.
package convert

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/railwayapp/compositor/internal/blueprint"
	"github.com/railwayapp/compositor/internal/compose"
	"github.com/railwayapp/compositor/internal/environment"
	"github.com/railwayapp/compositor/internal/environment/types"
	"github.com/railwayapp/compositor/internal/extractors"
	"github.com/railwayapp/compositor/internal/filesystems"
	"github.com/railwayapp/compositor/internal/output"
	"github.com/railwayapp/compositor/internal/synth"
)

var ErrNothingToConvert = errors.New("no container apps found, nothing to convert")

// Input is one program to convert. Kind overrides detection from Filename.
type Input struct {
	Filename string
	Kind     string
	Content  []byte
}

type Options struct {
	Synth          synth.Options
	LegacyParser   bool
	SkipValidation bool
	ProjectName    string

	// Environment holds variables for the generated app services. Results
	// with a Service apply to that service only.
	Environment []types.EnvResult

	// FileSystem and BaseDir enable build context inspection. Build
	// contexts are resolved relative to BaseDir.
	FileSystem filesystems.FileSystem
	BaseDir    string
}

type Result struct {
	Kind       extractors.Kind
	Blueprints *blueprint.Set
	Services   []blueprint.ServiceDefinition
	Document   *compose.Document
	Content    []byte
	Warnings   []string
}

type Converter struct {
	registry    *extractors.Registry
	synthesizer *synth.Synthesizer
	opts        Options
}

func New(opts Options) *Converter {
	var scriptOpts []extractors.ScriptOption
	if opts.LegacyParser {
		scriptOpts = append(scriptOpts, extractors.WithLegacyNormalizer())
	}

	return &Converter{
		registry:    extractors.NewRegistry(scriptOpts...),
		synthesizer: synth.New(opts.Synth),
		opts:        opts,
	}
}

// Extract selects the extractor for in and returns its blueprints.
func (c *Converter) Extract(ctx context.Context, in Input) (*blueprint.Set, extractors.Kind, error) {
	var (
		extractor extractors.Extractor
		err       error
	)
	if in.Kind != "" {
		extractor, err = c.registry.ForKind(in.Kind)
	} else {
		extractor, err = c.registry.ForFile(in.Filename)
	}
	if err != nil {
		return nil, "", err
	}

	output.Debug("extracting blueprints", "file", in.Filename, "kind", extractor.Kind())

	set, err := extractor.Extract(ctx, in.Content)
	if err != nil {
		return nil, extractor.Kind(), fmt.Errorf("failed to extract %s: %w", in.Filename, err)
	}

	output.Debug("extracted blueprints", "images", len(set.Images), "applications", len(set.Applications))
	return set, extractor.Kind(), nil
}

// Convert is all or nothing: any failure returns no result.
func (c *Converter) Convert(ctx context.Context, in Input) (*Result, error) {
	set, kind, err := c.Extract(ctx, in)
	if err != nil {
		return nil, err
	}
	if len(set.Applications) == 0 {
		return nil, ErrNothingToConvert
	}

	shared := environment.Entries(environment.Shared(c.opts.Environment))
	services, err := c.synthesizer.Synthesize(set, shared)
	if err != nil {
		return nil, err
	}
	services = c.applyServiceEnvironment(services)

	opts := c.synthesizer.Options()
	doc := compose.Assemble(services, opts.PlacementService, opts.Network)

	content, err := compose.Marshal(doc)
	if err != nil {
		return nil, err
	}

	if !c.opts.SkipValidation {
		if _, err := compose.Validate(ctx, content, c.projectName(in)); err != nil {
			return nil, err
		}
	}

	result := &Result{
		Kind:       kind,
		Blueprints: set,
		Services:   services,
		Document:   doc,
		Content:    content,
	}

	if c.opts.FileSystem != nil {
		result.Warnings = c.inspectBuildContexts(ctx, services)
	}

	return result, nil
}

// applyServiceEnvironment adds service scoped variables. Scoped values
// override shared ones; sidecars never get shared ones.
func (c *Converter) applyServiceEnvironment(services []blueprint.ServiceDefinition) []blueprint.ServiceDefinition {
	shared := environment.Shared(c.opts.Environment)

	for i, service := range services {
		scoped := environment.ForService(c.opts.Environment, service.Name)
		if len(scoped) == 0 {
			continue
		}

		var merged []types.EnvResult
		if !synth.IsSidecar(service) {
			merged = append(merged, shared...)
		}
		merged = append(merged, scoped...)
		services[i].Environment = environment.Entries(merged)
	}
	return services
}

func (c *Converter) projectName(in Input) string {
	if c.opts.ProjectName != "" {
		return c.opts.ProjectName
	}
	if in.Filename == "" {
		return ""
	}
	abs, err := filepath.Abs(in.Filename)
	if err != nil {
		return ""
	}
	return filepath.Base(filepath.Dir(abs))
}

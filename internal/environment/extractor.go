// Package environment collects the environment entries written into
// generated app services: values from --env-file, values carried over from
// the compose file being replaced, and variables an app's source reads.
package environment

import (
	"context"
	"fmt"
	"sort"

	"github.com/railwayapp/compositor/internal/environment/extractors"
	"github.com/railwayapp/compositor/internal/environment/types"
	"github.com/railwayapp/compositor/internal/filesystems"
)

type Extractor struct {
	filesystem filesystems.FileSystem
	extractors []extractors.ContentExtractor
}

func NewExtractor(filesystem filesystems.FileSystem) *Extractor {
	return &Extractor{
		filesystem: filesystem,
		extractors: []extractors.ContentExtractor{
			extractors.NewDockerComposeExtractor(),
			extractors.NewDotEnvExtractor(),
			extractors.NewLibraryCallExtractor(),
		},
	}
}

// Extract environment variables from file content. Every extractor that
// handles filename runs; the first failure is returned.
func (e *Extractor) Extract(ctx context.Context, filename string, content []byte) ([]types.EnvResult, error) {
	var results []types.EnvResult
	for _, extractor := range e.extractors {
		if !extractor.CanHandle(filename) {
			continue
		}
		envResults, err := extractor.Extract(ctx, filename, content)
		if err != nil {
			return nil, err
		}
		results = append(results, envResults...)
	}
	return results, nil
}

// ExtractFile reads path from the extractor's filesystem and extracts it.
// A file no extractor handles yields no results.
func (e *Extractor) ExtractFile(ctx context.Context, path string) ([]types.EnvResult, error) {
	content, err := e.filesystem.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return e.Extract(ctx, path, content)
}

// ExtractEnvFile reads a dotenv file whatever its name.
func (e *Extractor) ExtractEnvFile(ctx context.Context, path string) ([]types.EnvResult, error) {
	content, err := e.filesystem.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return extractors.NewDotEnvExtractor().Extract(ctx, path, content)
}

// ScanUsage walks dir and returns the variables its source files read,
// skipping dependency and VCS directories. Each name appears once.
func (e *Extractor) ScanUsage(ctx context.Context, dir string) ([]types.EnvResult, error) {
	usage := extractors.NewLibraryCallExtractor()
	seen := make(map[string]bool)
	var results []types.EnvResult

	err := e.filesystem.Walk(dir, func(path string, info filesystems.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if info.IsDir() {
			if path != dir && skipDirs[info.Name()] {
				return filesystems.SkipDir
			}
			return nil
		}
		if !usage.CanHandle(path) {
			return nil
		}

		content, err := e.filesystem.ReadFile(path)
		if err != nil {
			return err
		}
		found, err := usage.Extract(ctx, path, content)
		if err != nil {
			return err
		}
		for _, result := range found {
			if !seen[result.VarName] {
				seen[result.VarName] = true
				results = append(results, result)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].VarName < results[j].VarName
	})
	return results, nil
}

var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	".git":         true,
	"dist":         true,
	"build":        true,
	"__pycache__":  true,
	".venv":        true,
}

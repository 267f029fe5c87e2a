// Package discovery locates the Pulumi program inside a project directory.
package discovery

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/railwayapp/compositor/internal/filesystems"
)

var (
	ErrNoProgram          = errors.New("no Pulumi program found")
	ErrUnsupportedRuntime = errors.New("unsupported Pulumi runtime")
)

// projectFiles are checked in order; the first one present wins.
var projectFiles = []string{"Pulumi.yaml", "Pulumi.yml", "Pulumi.json"}

// scriptEntries are the entry points tried when a nodejs project has no
// main file.
var scriptEntries = []string{"index.ts", "index.js", "index.mts", "index.mjs"}

// Program is a located program file.
type Program struct {
	Path    string
	Project string
	Runtime string
}

type project struct {
	Name    string  `yaml:"name"`
	Runtime runtime `yaml:"runtime"`
	Main    string  `yaml:"main"`
}

// runtime accepts both `runtime: nodejs` and `runtime: {name: nodejs}`.
type runtime struct {
	Name string `yaml:"name"`
}

func (r *runtime) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		r.Name = node.Value
		return nil
	}

	type plain runtime
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*r = runtime(p)
	return nil
}

// FindProgram returns the program that path names. A file is returned as is.
// For a directory the Pulumi project file decides: yaml projects are the
// program themselves, nodejs projects point at their main script.
func FindProgram(filesystem filesystems.FileSystem, path string) (*Program, error) {
	info, err := filesystem.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return &Program{Path: path}, nil
	}

	projectPath, err := findFirst(filesystem, path, projectFiles)
	if err != nil {
		return nil, err
	}
	if projectPath == "" {
		return nil, fmt.Errorf("%w in %s", ErrNoProgram, path)
	}

	content, err := filesystem.ReadFile(projectPath)
	if err != nil {
		return nil, err
	}
	var p project
	if err := yaml.Unmarshal(content, &p); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", projectPath, err)
	}

	program := &Program{Project: p.Name, Runtime: p.Runtime.Name}

	switch strings.ToLower(p.Runtime.Name) {
	case "yaml":
		program.Path = projectPath
		if p.Main != "" {
			program.Path = filesystem.Join(path, p.Main)
		}
		return program, nil
	case "nodejs":
		entry, err := scriptEntry(filesystem, path, p.Main)
		if err != nil {
			return nil, err
		}
		program.Path = entry
		return program, nil
	default:
		return nil, fmt.Errorf("%w: %q in %s", ErrUnsupportedRuntime, p.Runtime.Name, projectPath)
	}
}

// scriptEntry resolves a nodejs project's main, which may name a file or a
// directory holding an index script.
func scriptEntry(filesystem filesystems.FileSystem, dir, main string) (string, error) {
	if main != "" {
		candidate := filesystem.Join(dir, main)
		info, err := filesystem.Stat(candidate)
		if err != nil {
			return "", fmt.Errorf("%w: main %s: %w", ErrNoProgram, main, err)
		}
		if !info.IsDir() {
			return candidate, nil
		}
		dir = candidate
	}

	entry, err := findFirst(filesystem, dir, scriptEntries)
	if err != nil {
		return "", err
	}
	if entry == "" {
		return "", fmt.Errorf("%w: no index script in %s", ErrNoProgram, dir)
	}
	return entry, nil
}

func findFirst(filesystem filesystems.FileSystem, dir string, names []string) (string, error) {
	for _, name := range names {
		path, err := filesystems.FindFile(filesystem, dir, name)
		if err != nil || path != "" {
			return path, err
		}
	}
	return "", nil
}

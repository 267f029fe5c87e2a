// Package buildcontext looks inside a local build context: whether it has a
// Dockerfile, and which ports and variables that Dockerfile declares.
package buildcontext

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/moby/buildkit/frontend/dockerfile/parser"

	"github.com/railwayapp/compositor/internal/filesystems"
)

var ErrNoDockerfile = errors.New("no Dockerfile in build context")

// Report describes one build context.
type Report struct {
	Dir        string
	Dockerfile string
	BaseImages []string
	Exposed    []uint
	Env        map[string]string
}

// Exposes reports whether the Dockerfile EXPOSEs port.
func (r *Report) Exposes(port uint) bool {
	for _, p := range r.Exposed {
		if p == port {
			return true
		}
	}
	return false
}

// Inspect finds the Dockerfile in dir and parses it. A missing directory or
// Dockerfile returns ErrNoDockerfile.
func Inspect(filesystem filesystems.FileSystem, dir string) (*Report, error) {
	exists, err := filesystems.Exists(filesystem, dir)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s does not exist", ErrNoDockerfile, dir)
	}

	path, err := filesystems.FindFile(filesystem, dir, "Dockerfile")
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoDockerfile, dir)
	}

	content, err := filesystem.ReadFile(path)
	if err != nil {
		return nil, err
	}

	report, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	report.Dir = dir
	report.Dockerfile = path
	return report, nil
}

// Parse reads FROM, EXPOSE and ENV instructions from a Dockerfile.
func Parse(content []byte) (*Report, error) {
	ast, err := parser.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	report := &Report{Env: make(map[string]string)}
	exposed := make(map[uint]bool)

	for _, child := range ast.AST.Children {
		args := nodeArgs(child)

		switch strings.ToUpper(child.Value) {
		case "FROM":
			if len(args) > 0 {
				report.BaseImages = append(report.BaseImages, args[0])
			}
		case "EXPOSE":
			for _, arg := range args {
				if port, ok := parsePort(arg); ok {
					exposed[port] = true
				}
			}
		case "ENV":
			for key, value := range envPairs(args) {
				report.Env[key] = value
			}
		}
	}

	for port := range exposed {
		report.Exposed = append(report.Exposed, port)
	}
	sort.Slice(report.Exposed, func(i, j int) bool {
		return report.Exposed[i] < report.Exposed[j]
	})

	return report, nil
}

func nodeArgs(node *parser.Node) []string {
	var args []string
	for n := node.Next; n != nil; n = n.Next {
		args = append(args, n.Value)
	}
	return args
}

// envPairs walks the name, value nodes of an ENV instruction. Some parser
// versions add a separator node after each value.
func envPairs(args []string) map[string]string {
	pairs := make(map[string]string)
	for i := 0; i+1 < len(args); {
		pairs[args[i]] = args[i+1]
		i += 2
		if i < len(args) && (args[i] == "=" || args[i] == "") {
			i++
		}
	}
	return pairs
}

// parsePort accepts "3000", "3000/tcp" and ignores ranges and variables.
func parsePort(arg string) (uint, bool) {
	arg, _, _ = strings.Cut(arg, "/")
	port, err := strconv.ParseUint(arg, 10, 16)
	if err != nil {
		return 0, false
	}
	return uint(port), true
}

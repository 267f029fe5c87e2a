package convert

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/railwayapp/compositor/internal/blueprint"
	"github.com/railwayapp/compositor/internal/buildcontext"
	"github.com/railwayapp/compositor/internal/environment"
	"github.com/railwayapp/compositor/internal/output"
)

const inspectConcurrency = 4

// inspectBuildContexts checks every build context service against its
// Dockerfile and source. Findings are warnings; they never fail a run.
// Warnings come back in service order.
func (c *Converter) inspectBuildContexts(ctx context.Context, services []blueprint.ServiceDefinition) []string {
	perService := make([][]string, len(services))

	var g errgroup.Group
	g.SetLimit(inspectConcurrency)
	for i, service := range services {
		if service.Build == nil || strings.Contains(service.Build.Context, "${") {
			continue
		}
		g.Go(func() error {
			perService[i] = c.inspectBuildContext(ctx, service)
			return nil
		})
	}
	_ = g.Wait()

	var warnings []string
	for _, w := range perService {
		warnings = append(warnings, w...)
	}
	return warnings
}

func (c *Converter) inspectBuildContext(ctx context.Context, service blueprint.ServiceDefinition) []string {
	var warnings []string
	warn := func(msg string, keyvals ...interface{}) {
		output.ServiceLogger(service.Name).Warn(msg, keyvals...)
		warnings = append(warnings, fmt.Sprintf("%s: %s", service.Name, msg))
	}

	dir := c.opts.FileSystem.Join(c.opts.BaseDir, service.Build.Context)

	report, err := buildcontext.Inspect(c.opts.FileSystem, dir)
	switch {
	case errors.Is(err, buildcontext.ErrNoDockerfile):
		warn("build context has no Dockerfile", "context", dir)
		return warnings
	case err != nil:
		warn("cannot inspect build context", "context", dir, "err", err)
		return warnings
	}

	for _, mapping := range service.Ports {
		port, ok := containerPort(mapping)
		if ok && !report.Exposes(port) {
			warn(fmt.Sprintf("port %d is published but not exposed by the Dockerfile", port), "dockerfile", report.Dockerfile)
		}
	}

	used, err := environment.NewExtractor(c.opts.FileSystem).ScanUsage(ctx, dir)
	if err != nil {
		output.Debug("skipping environment scan", "context", dir, "err", err)
		return warnings
	}
	provided := append(environment.Shared(c.opts.Environment), environment.ForService(c.opts.Environment, service.Name)...)
	for _, name := range environment.Missing(used, provided) {
		if _, ok := report.Env[name]; ok {
			continue
		}
		warn(fmt.Sprintf("source reads %s but nothing sets it", name))
	}
	return warnings
}

func containerPort(mapping string) (uint, bool) {
	i := strings.LastIndex(mapping, ":")
	port, err := strconv.ParseUint(mapping[i+1:], 10, 16)
	if err != nil {
		return 0, false
	}
	return uint(port), true
}

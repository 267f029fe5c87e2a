package extractors

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/compose-spec/compose-go/v2/loader"
	composeTypes "github.com/compose-spec/compose-go/v2/types"
	"github.com/railwayapp/compositor/internal/environment/types"
)

// DockerComposeExtractor reads the environment of every service in an
// existing compose file, so values added by hand survive a regeneration.
type DockerComposeExtractor struct{}

func NewDockerComposeExtractor() *DockerComposeExtractor {
	return &DockerComposeExtractor{}
}

func (d *DockerComposeExtractor) CanHandle(filename string) bool {
	name := strings.ToLower(filename)
	return strings.Contains(name, "compose") && (strings.HasSuffix(name, ".yml") || strings.HasSuffix(name, ".yaml"))
}

func (d *DockerComposeExtractor) Extract(ctx context.Context, filename string, content []byte) ([]types.EnvResult, error) {
	configDetails := composeTypes.ConfigDetails{
		WorkingDir: ".",
		ConfigFiles: []composeTypes.ConfigFile{
			{
				Filename: filename,
				Content:  content,
			},
		},
		Environment: composeTypes.Mapping{},
	}

	project, err := loader.LoadWithContext(ctx, configDetails, func(options *loader.Options) {
		options.SetProjectName("previous", true)
		options.SkipInterpolation = true
		options.SkipNormalization = true
		options.SkipConsistencyCheck = true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", filename, err)
	}

	serviceNames := make([]string, 0, len(project.Services))
	for name := range project.Services {
		serviceNames = append(serviceNames, name)
	}
	sort.Strings(serviceNames)

	var results []types.EnvResult
	for _, serviceName := range serviceNames {
		service := project.Services[serviceName]

		keys := make([]string, 0, len(service.Environment))
		for key := range service.Environment {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			if types.ShouldIgnore(key) {
				continue
			}

			value := service.Environment[key]
			result := types.EnvResult{
				VarName: key,
				Source:  fmt.Sprintf("docker-compose:%s", filename),
				Service: serviceName,
			}
			if value != nil {
				result.Value = *value
				result.HasValue = true
			}
			result.Type, result.Sensitive = types.ClassifyEnvVar(key, result.Value)
			results = append(results, result)
		}
	}

	return results, nil
}

package compose

import (
	"context"
	"errors"
	"fmt"

	"github.com/compose-spec/compose-go/v2/loader"
	"github.com/compose-spec/compose-go/v2/types"
	"gopkg.in/yaml.v3"
)

var ErrInvalidDocument = errors.New("generated compose document is invalid")

// Validate loads content the way docker compose would, without touching the
// filesystem or the environment.
func Validate(ctx context.Context, content []byte, projectName string) (*types.Project, error) {
	var dict map[string]interface{}
	if err := yaml.Unmarshal(content, &dict); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if dict == nil {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidDocument)
	}

	projectName = loader.NormalizeProjectName(projectName)
	if projectName == "" {
		projectName = "compositor"
	}

	project, err := loader.LoadWithContext(ctx, types.ConfigDetails{
		ConfigFiles: []types.ConfigFile{
			{
				Filename: "docker-compose.yml",
				Content:  content,
				Config:   dict,
			},
		},
		Environment: types.Mapping{},
	}, func(opts *loader.Options) {
		opts.SetProjectName(projectName, false)
		// build contexts may carry unresolved references
		opts.SkipInterpolation = true
		opts.SkipNormalization = true
		opts.SkipExtends = true
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return project, nil
}

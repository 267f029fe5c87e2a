package extractors

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/railwayapp/compositor/internal/environment/types"
)

// DotEnvExtractor reads .env style files. Its variables apply to every app
// service.
type DotEnvExtractor struct{}

func NewDotEnvExtractor() *DotEnvExtractor {
	return &DotEnvExtractor{}
}

func (d *DotEnvExtractor) CanHandle(filename string) bool {
	base := strings.ToLower(filepath.Base(filename))
	return strings.HasPrefix(base, ".env") || strings.HasSuffix(base, ".env")
}

func (d *DotEnvExtractor) Extract(ctx context.Context, filename string, content []byte) ([]types.EnvResult, error) {
	env, err := godotenv.Unmarshal(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	keys := make([]string, 0, len(env))
	for key := range env {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var results []types.EnvResult
	for _, key := range keys {
		if types.ShouldIgnore(key) {
			continue
		}

		value := env[key]
		envType, sensitive := types.ClassifyEnvVar(key, value)
		results = append(results, types.EnvResult{
			VarName:   key,
			Value:     value,
			HasValue:  true,
			Type:      envType,
			Sensitive: sensitive,
			Source:    fmt.Sprintf("dotenv:%s", filename),
		})
	}

	return results, nil
}

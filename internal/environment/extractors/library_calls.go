package extractors

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/railwayapp/compositor/internal/environment/types"
)

// LibraryCallExtractor finds variables an application reads at runtime by
// scanning its source for environment lookups. Results carry no value.
type LibraryCallExtractor struct{}

func NewLibraryCallExtractor() *LibraryCallExtractor {
	return &LibraryCallExtractor{}
}

var sourceExts = []string{
	".js", ".ts", ".jsx", ".tsx", ".mjs", ".cjs",
	".py", ".rb", ".go", ".java", ".kt", ".cs",
}

func (l *LibraryCallExtractor) CanHandle(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))

	for _, sourceExt := range sourceExts {
		if ext == sourceExt {
			return !isTestFile(filename)
		}
	}
	return false
}

var libraryCallPatterns = []*regexp.Regexp{
	// process.env.VAR_NAME and process.env["VAR_NAME"]
	regexp.MustCompile(`process\.env\.([A-Z_][A-Z0-9_]*)`),
	regexp.MustCompile(`process\.env\[['"]([A-Z_][A-Z0-9_]*)['"]\]`),

	// os.getenv / os.environ (Python)
	regexp.MustCompile(`os\.getenv\(['"]([A-Z_][A-Z0-9_]*)['"]`),
	regexp.MustCompile(`os\.environ(?:\.get\(|\[)['"]([A-Z_][A-Z0-9_]*)['"]`),

	// ENV['VAR_NAME'] (Ruby)
	regexp.MustCompile(`ENV\[['"]([A-Z_][A-Z0-9_]*)['"]\]`),

	// os.Getenv / os.LookupEnv (Go)
	regexp.MustCompile(`os\.(?:Getenv|LookupEnv)\("([A-Z_][A-Z0-9_]*)"\)`),

	// System.getenv (Java, Kotlin)
	regexp.MustCompile(`System\.getenv\("([A-Z_][A-Z0-9_]*)"\)`),

	// Environment.GetEnvironmentVariable (C#)
	regexp.MustCompile(`Environment\.GetEnvironmentVariable\("([A-Z_][A-Z0-9_]*)"\)`),
}

func (l *LibraryCallExtractor) Extract(ctx context.Context, filename string, content []byte) ([]types.EnvResult, error) {
	contentStr := string(content)
	var results []types.EnvResult
	found := make(map[string]bool)

	for _, pattern := range libraryCallPatterns {
		for _, match := range pattern.FindAllStringSubmatch(contentStr, -1) {
			varName := match[1]
			if found[varName] || types.ShouldIgnore(varName) {
				continue
			}
			found[varName] = true

			envType, sensitive := types.ClassifyEnvVar(varName, "")
			results = append(results, types.EnvResult{
				VarName:   varName,
				Type:      envType,
				Sensitive: sensitive,
				Source:    fmt.Sprintf("usage:%s", filename),
			})
		}
	}

	return results, nil
}

func isTestFile(filename string) bool {
	name := strings.ToLower(filepath.Base(filename))
	return strings.Contains(name, "_test.") ||
		strings.Contains(name, ".test.") ||
		strings.Contains(name, ".spec.") ||
		strings.HasPrefix(name, "test_")
}

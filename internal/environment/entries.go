package environment

import (
	"sort"

	"github.com/railwayapp/compositor/internal/environment/types"
)

// Shared returns the results that apply to every app service.
func Shared(results []types.EnvResult) []types.EnvResult {
	var shared []types.EnvResult
	for _, result := range results {
		if result.Service == "" {
			shared = append(shared, result)
		}
	}
	return shared
}

// ForService returns the results scoped to one service.
func ForService(results []types.EnvResult, service string) []types.EnvResult {
	var scoped []types.EnvResult
	for _, result := range results {
		if result.Service == service {
			scoped = append(scoped, result)
		}
	}
	return scoped
}

// Entries renders results as compose environment entries sorted by name.
// Later results override earlier ones with the same name.
func Entries(results []types.EnvResult) []string {
	byName := make(map[string]types.EnvResult, len(results))
	for _, result := range results {
		byName[result.VarName] = result
	}
	if len(byName) == 0 {
		return nil
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]string, 0, len(names))
	for _, name := range names {
		entries = append(entries, byName[name].Entry())
	}
	return entries
}

// Missing returns the names in used that no result in provided defines.
func Missing(used, provided []types.EnvResult) []string {
	have := make(map[string]bool, len(provided))
	for _, result := range provided {
		have[result.VarName] = true
	}

	var missing []string
	for _, result := range used {
		if !have[result.VarName] {
			missing = append(missing, result.VarName)
		}
	}
	sort.Strings(missing)
	return missing
}

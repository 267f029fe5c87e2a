package types

import (
	"strconv"
	"strings"
	"unicode"
)

var secretPatterns = []string{
	"secret", "key", "token", "password", "pass", "pwd",
	"auth", "credential", "cred", "private", "cert",
	"sas", "signing", "salt", "session", "cookie", "jwt",
}

// databasePatterns also cover the connection strings Azure services hand
// out (storage, service bus, cosmos).
var databasePatterns = []string{
	"database_url", "db_url", "dsn", "connection_string", "connectionstring",
	"postgres", "mysql", "mongodb", "redis", "cosmos", "servicebus",
}

// ignored holds shell and runtime variables a compose file must not set, and
// the variables daprd injects into the app container.
var ignored = map[string]bool{
	"path": true, "home": true, "user": true, "shell": true, "pwd": true,
	"lang": true, "term": true, "tmpdir": true, "oldpwd": true, "shlvl": true,
	"hostname": true, "logname": true, "uid": true, "gid": true,

	"dapr_http_port": true, "dapr_grpc_port": true, "app_id": true,
}

func ShouldIgnore(name string) bool {
	return ignored[strings.ToLower(name)]
}

// rule classifies a lowercased name and its value. Rules are tried in order.
type rule struct {
	envType   EnvType
	sensitive bool
	match     func(name, value string) bool
}

var rules = []rule{
	{EnvTypeGenerated, true, func(_, value string) bool { return looksGenerated(value) }},
	{EnvTypeDatabase, true, nameContains(databasePatterns)},
	{EnvTypeSecret, true, nameContains(secretPatterns)},
	{EnvTypeURL, false, func(name, value string) bool {
		return strings.HasPrefix(value, "http") || strings.Contains(name, "url")
	}},
	{EnvTypeBoolean, false, func(name, value string) bool {
		return value == "true" || value == "false" ||
			strings.Contains(name, "enable") || strings.Contains(name, "flag")
	}},
	{EnvTypeNumeric, false, func(_, value string) bool {
		_, err := strconv.Atoi(value)
		return err == nil
	}},
}

// ClassifyEnvVar returns the kind of a variable and whether its value must
// be treated as sensitive. Ignored names are EnvTypeUnknown.
func ClassifyEnvVar(name, value string) (EnvType, bool) {
	if ShouldIgnore(name) {
		return EnvTypeUnknown, false
	}

	name = strings.ToLower(name)
	for _, r := range rules {
		if r.match(name, value) {
			return r.envType, r.sensitive
		}
	}
	return EnvTypeConfig, false
}

func nameContains(patterns []string) func(name, value string) bool {
	return func(name, _ string) bool {
		for _, pattern := range patterns {
			if strings.Contains(name, pattern) {
				return true
			}
		}
		return false
	}
}

// looksGenerated matches UUIDs, JWTs and long random tokens.
func looksGenerated(value string) bool {
	switch {
	case len(value) < 8:
		return false
	case len(value) == 36 && strings.Count(value, "-") == 4:
		return true
	case len(value) > 50 && strings.Count(value, ".") == 2:
		return true
	case len(value) >= 16 && isTokenAlphabet(value):
		return true
	}
	return len(value) >= 20 && mixedCase(value) && distinctRatio(value) > 0.5
}

func isTokenAlphabet(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return !(r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_'))
	}) < 0
}

func distinctRatio(value string) float64 {
	seen := make(map[rune]struct{})
	for _, r := range value {
		seen[r] = struct{}{}
	}
	return float64(len(seen)) / float64(len(value))
}

func mixedCase(value string) bool {
	return strings.IndexFunc(value, unicode.IsUpper) >= 0 && strings.IndexFunc(value, unicode.IsLower) >= 0
}

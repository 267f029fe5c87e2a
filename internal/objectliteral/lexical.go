// Package objectliteral turns object-literal fragments lifted from script
// source into strict JSON.
//
// Two implementations live here. NormalizeLegacy is a line-by-line lexical
// rewrite followed by a whole-block repair pass; it breaks on string values
// that contain "})" or ",}". Normalize is a small tokenizer that tracks
// nesting and is what the script extractor uses unless told otherwise.
package objectliteral

import (
	"regexp"
	"strings"
)

var (
	keyValuePattern  = regexp.MustCompile(`^["'` + "`" + `]?([A-Za-z_$][\w$]*)["'` + "`" + `]?(:)(.*)$`)
	leadingDigit     = regexp.MustCompile(`^[0-9]+`)
	taggedTemplate   = regexp.MustCompile("^[\\w.$]*`(.*)`$")
	structuralTokens = []string{"{", "[{"}
)

// NormalizeLine rewrites one line of a loose key/value block into a strictly
// quoted JSON fragment. Lines that are not key/value pairs (closing braces,
// blank lines) come back with their whitespace stripped.
func NormalizeLine(line string) string {
	stripped := strings.Join(strings.Fields(line), "")

	match := keyValuePattern.FindStringSubmatch(stripped)
	if match == nil {
		return stripped
	}

	key := `"` + match[1] + `"`
	value := strings.TrimSuffix(match[3], ",")

	var out string
	switch {
	case value == "":
		out = key + ":"
	case isStructural(value):
		out = key + ":" + value
	case leadingDigit.MatchString(value) || value == "true" || value == "false":
		out = key + ":" + value + ","
	default:
		out = key + ":" + `"` + stripDelimiters(value) + `",`
	}

	return strings.ReplaceAll(out, `""`, `"`)
}

// Repair fixes the artifacts left by concatenating NormalizeLine output:
// the closing paren of the call site and commas before a closing brace.
func Repair(block string) string {
	block = strings.ReplaceAll(block, "})", "}")
	return strings.ReplaceAll(block, ",}", "}")
}

// NormalizeLegacy runs NormalizeLine over every line of block and repairs the
// concatenated result. It does not check that the output is valid JSON.
func NormalizeLegacy(block string) string {
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimSpace(block), "\n") {
		b.WriteString(NormalizeLine(line))
	}
	return Repair(b.String())
}

func isStructural(value string) bool {
	for _, token := range structuralTokens {
		if value == token {
			return true
		}
	}
	return false
}

func stripDelimiters(value string) string {
	if m := taggedTemplate.FindStringSubmatch(value); m != nil {
		value = m[1]
	}
	value = strings.Trim(value, `'"`)
	return strings.ReplaceAll(value, "`", "")
}

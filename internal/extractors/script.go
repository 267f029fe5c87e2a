package extractors

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/railwayapp/compositor/internal/blueprint"
	"github.com/railwayapp/compositor/internal/objectliteral"
)

const (
	quote      = "[\"'`]"
	identifier = `[A-Za-z_$][\w$]*`
)

var (
	imageCallSite = regexp.MustCompile(
		`(?:(?:const|let|var)\s+(` + identifier + `)\s*=\s*)?` +
			`new\s+docker\.(?:Image|RegistryImage)\(\s*` + quote + `([^"'` + "`" + `]+)` + quote + `\s*,\s*\{`)

	appCallSite = regexp.MustCompile(
		`new\s+(?:` + identifier + `\.)*app\.ContainerApp\(\s*` + quote + `([^"'` + "`" + `]+)` + quote + `\s*,\s*\{`)
)

type ScriptOption func(*ScriptExtractor)

// WithLegacyNormalizer switches property blocks to the line based normalizer.
func WithLegacyNormalizer() ScriptOption {
	return func(s *ScriptExtractor) {
		s.normalize = func(block string) (string, error) {
			return objectliteral.NormalizeLegacy(block), nil
		}
	}
}

// ScriptExtractor finds resource constructor calls in TypeScript and
// JavaScript Pulumi programs. The source is never evaluated: call sites are
// located by pattern, and their property blocks are converted to JSON.
type ScriptExtractor struct {
	normalize func(string) (string, error)
}

func NewScriptExtractor(opts ...ScriptOption) *ScriptExtractor {
	s := &ScriptExtractor{normalize: objectliteral.Normalize}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ScriptExtractor) Kind() Kind {
	return KindScript
}

func (s *ScriptExtractor) CanHandle(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".ts", ".js", ".mjs", ".cjs", ".mts", ".cts":
		return true
	}
	return false
}

func (s *ScriptExtractor) Extract(ctx context.Context, content []byte) (*blueprint.Set, error) {
	src := string(content)
	set := &blueprint.Set{}
	comments := commentSpans(src)

	for _, m := range imageCallSite.FindAllStringSubmatchIndex(src, -1) {
		if comments.contain(m[0]) {
			continue
		}
		name := src[m[4]:m[5]]

		var props imageProperties
		if err := s.decodeBlock(src, m[1]-1, &props); err != nil {
			return nil, &ResourceError{Resource: name, Type: TypeDockerImage, Err: err}
		}

		image := props.blueprint(name)
		if m[2] >= 0 {
			binding := src[m[2]:m[3]]
			image.Name = binding
			image.ReferenceName = binding + "." + blueprint.ImageNameProperty
		}
		set.Images = append(set.Images, image)
	}

	for _, m := range appCallSite.FindAllStringSubmatchIndex(src, -1) {
		if comments.contain(m[0]) {
			continue
		}
		name := src[m[2]:m[3]]

		var props containerAppProperties
		if err := s.decodeBlock(src, m[1]-1, &props); err != nil {
			return nil, &ResourceError{Resource: name, Type: TypeContainerApp, Err: err}
		}

		app, err := props.blueprint(name)
		if err != nil {
			return nil, &ResourceError{Resource: name, Type: TypeContainerApp, Err: err}
		}
		set.Applications = append(set.Applications, app)
	}

	return set, nil
}

func (s *ScriptExtractor) decodeBlock(src string, open int, v any) error {
	block, err := PropertyBlock(src, open)
	if err != nil {
		return err
	}

	normalized, err := s.normalize(block)
	if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(normalized), v); err != nil {
		return fmt.Errorf("decoding property block: %w", err)
	}
	return nil
}

// PropertyBlock returns the balanced object literal that starts at src[open],
// which must be '{'. Braces inside strings, templates and comments do not
// count.
func PropertyBlock(src string, open int) (string, error) {
	if open < 0 || open >= len(src) || src[open] != '{' {
		return "", fmt.Errorf("%w: property block must start with '{'", objectliteral.ErrMalformedLiteral)
	}

	depth := 0
	for i := open; i < len(src); i++ {
		switch c := src[i]; c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return src[open : i+1], nil
			}
		case '"', '\'', '`':
			end := closingQuote(src, i)
			if end < 0 {
				return "", fmt.Errorf("%w: unterminated string in property block", objectliteral.ErrMalformedLiteral)
			}
			i = end
		case '/':
			if i+1 >= len(src) {
				continue
			}
			switch src[i+1] {
			case '/':
				if end := strings.IndexByte(src[i:], '\n'); end >= 0 {
					i += end
				} else {
					i = len(src)
				}
			case '*':
				if end := strings.Index(src[i+2:], "*/"); end >= 0 {
					i += end + 3
				} else {
					i = len(src)
				}
			}
		}
	}

	return "", fmt.Errorf("%w: unbalanced braces in property block", objectliteral.ErrMalformedLiteral)
}

// spans are half-open [start, end) byte ranges, in source order.
type spans [][2]int

func (s spans) contain(pos int) bool {
	for _, span := range s {
		if pos < span[0] {
			return false
		}
		if pos < span[1] {
			return true
		}
	}
	return false
}

// commentSpans locates line and block comments in src. String and template
// literals are skipped so "//" inside a URL is not a comment.
func commentSpans(src string) spans {
	var out spans
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '"', '\'', '`':
			if end := closingQuote(src, i); end > 0 {
				i = end
			}
		case '/':
			if i+1 >= len(src) {
				continue
			}
			switch src[i+1] {
			case '/':
				end := strings.IndexByte(src[i:], '\n')
				if end < 0 {
					return append(out, [2]int{i, len(src)})
				}
				out = append(out, [2]int{i, i + end})
				i += end
			case '*':
				end := strings.Index(src[i+2:], "*/")
				if end < 0 {
					return append(out, [2]int{i, len(src)})
				}
				out = append(out, [2]int{i, i + end + 4})
				i += end + 3
			}
		}
	}
	return out
}

// closingQuote returns the index of the quote that closes the string opened
// at src[start]. Template interpolations may contain nested braces and quotes.
func closingQuote(src string, start int) int {
	q := src[start]
	depth := 0
	for i := start + 1; i < len(src); i++ {
		switch c := src[i]; {
		case c == '\\':
			i++
		case q == '`' && c == '$' && i+1 < len(src) && src[i+1] == '{':
			depth++
			i++
		case q == '`' && c == '}' && depth > 0:
			depth--
		case c == q && depth == 0:
			return i
		case c == '\n' && q != '`':
			return -1
		}
	}
	return -1
}

package objectliteral

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"
)

var ErrMalformedLiteral = errors.New("malformed object literal")

// SyntaxError locates a tokenizer failure inside the fragment.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return ErrMalformedLiteral
}

var (
	numberLiteral       = regexp.MustCompile(`^-?\d+(\.\d+)?([eE][+-]?\d+)?$`)
	taggedTemplateValue = regexp.MustCompile("(?s)^[\\w.$]+\\s*`(.*)`$")
)

// Normalize converts one object or array literal into JSON. Unquoted keys,
// single-quoted and template strings, comments and trailing commas are
// accepted. Values that are neither literals nor nested structures
// (identifiers, member access, calls) are kept as strings holding their
// source text; tagged templates keep only the template body. A closing paren
// or semicolon after the literal is ignored.
func Normalize(src string) (string, error) {
	n := &normalizer{src: src}

	n.skipSpace()
	if n.eof() {
		return "", n.errorf("empty fragment")
	}
	if err := n.value(); err != nil {
		return "", err
	}

	for {
		n.skipSpace()
		if n.eof() {
			break
		}
		if c := n.peek(); c != ')' && c != ';' {
			return "", n.errorf("unexpected %q after literal", c)
		}
		n.pos++
	}

	return n.out.String(), nil
}

type normalizer struct {
	src string
	pos int
	out strings.Builder
}

func (n *normalizer) eof() bool {
	return n.pos >= len(n.src)
}

func (n *normalizer) peek() byte {
	return n.src[n.pos]
}

func (n *normalizer) errorf(format string, args ...any) error {
	line := 1 + strings.Count(n.src[:min(n.pos, len(n.src))], "\n")
	return &SyntaxError{Line: line, Msg: fmt.Sprintf(format, args...)}
}

func (n *normalizer) skipSpace() {
	for !n.eof() {
		switch c := n.peek(); {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			n.pos++
		case strings.HasPrefix(n.src[n.pos:], "//"):
			end := strings.IndexByte(n.src[n.pos:], '\n')
			if end < 0 {
				n.pos = len(n.src)
			} else {
				n.pos += end + 1
			}
		case strings.HasPrefix(n.src[n.pos:], "/*"):
			end := strings.Index(n.src[n.pos+2:], "*/")
			if end < 0 {
				n.pos = len(n.src)
			} else {
				n.pos += end + 4
			}
		default:
			return
		}
	}
}

// writeString emits s as a JSON string without HTML escaping, so values
// such as arrow functions keep their source text.
func (n *normalizer) writeString(s string) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	n.out.Write(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
}

func (n *normalizer) value() error {
	n.skipSpace()
	if n.eof() {
		return n.errorf("expected value, got end of input")
	}

	switch n.peek() {
	case '{':
		return n.object()
	case '[':
		return n.array()
	case '"', '\'':
		s, err := n.quoted()
		if err != nil {
			return err
		}
		n.writeString(s)
		return nil
	case '`':
		s, err := n.template()
		if err != nil {
			return err
		}
		n.writeString(s)
		return nil
	default:
		return n.expression()
	}
}

func (n *normalizer) object() error {
	n.pos++
	n.out.WriteByte('{')
	first := true

	for {
		n.skipSpace()
		if n.eof() {
			return n.errorf("unterminated object")
		}

		switch n.peek() {
		case '}':
			n.pos++
			n.out.WriteByte('}')
			return nil
		case ',':
			n.pos++
			continue
		}

		if strings.HasPrefix(n.src[n.pos:], "...") {
			if _, err := n.rawExpression(); err != nil {
				return err
			}
			continue
		}

		key, err := n.key()
		if err != nil {
			return err
		}

		if !first {
			n.out.WriteByte(',')
		}
		first = false
		n.writeString(key)
		n.out.WriteByte(':')

		n.skipSpace()
		if n.eof() {
			return n.errorf("unterminated object")
		}
		switch n.peek() {
		case ':':
			n.pos++
			if err := n.value(); err != nil {
				return err
			}
		case ',', '}':
			// shorthand property
			n.writeString(key)
		default:
			return n.errorf("expected ':' after key %q", key)
		}
	}
}

func (n *normalizer) key() (string, error) {
	switch n.peek() {
	case '"', '\'':
		return n.quoted()
	}

	start := n.pos
	for !n.eof() && isIdentByte(n.peek()) {
		n.pos++
	}
	if start == n.pos {
		return "", n.errorf("unexpected %q where a key was expected", n.peek())
	}
	return n.src[start:n.pos], nil
}

func (n *normalizer) array() error {
	n.pos++
	n.out.WriteByte('[')
	first := true

	for {
		n.skipSpace()
		if n.eof() {
			return n.errorf("unterminated array")
		}

		switch n.peek() {
		case ']':
			n.pos++
			n.out.WriteByte(']')
			return nil
		case ',':
			n.pos++
			continue
		}

		if !first {
			n.out.WriteByte(',')
		}
		first = false
		if err := n.value(); err != nil {
			return err
		}
	}
}

func (n *normalizer) quoted() (string, error) {
	quote := n.peek()
	n.pos++

	var b strings.Builder
	for !n.eof() {
		c := n.peek()
		n.pos++
		switch {
		case c == quote:
			return b.String(), nil
		case c == '\\' && !n.eof():
			if err := n.escape(&b); err != nil {
				return "", err
			}
		case c == '\n':
			return "", n.errorf("newline in string literal")
		default:
			b.WriteByte(c)
		}
	}
	return "", n.errorf("unterminated string literal")
}

// template returns the raw body of a template literal, interpolations
// included.
func (n *normalizer) template() (string, error) {
	n.pos++
	start := n.pos
	depth := 0

	for !n.eof() {
		c := n.peek()
		switch {
		case c == '\\':
			n.pos++
		case c == '$' && strings.HasPrefix(n.src[n.pos:], "${"):
			depth++
			n.pos++
		case c == '}' && depth > 0:
			depth--
		case c == '`' && depth == 0:
			body := strings.ReplaceAll(n.src[start:n.pos], "\\`", "`")
			n.pos++
			return body, nil
		}
		n.pos++
	}
	return "", n.errorf("unterminated template literal")
}

func (n *normalizer) expression() error {
	raw, err := n.rawExpression()
	if err != nil {
		return err
	}

	switch {
	case raw == "" && n.eof():
		return n.errorf("expected value, got end of input")
	case raw == "":
		return n.errorf("expected value, got %q", n.peek())
	case raw == "true" || raw == "false" || raw == "null":
		n.out.WriteString(raw)
	case numberLiteral.MatchString(raw):
		n.out.WriteString(raw)
	default:
		if m := taggedTemplateValue.FindStringSubmatch(raw); m != nil {
			raw = m[1]
		}
		n.writeString(raw)
	}
	return nil
}

// rawExpression consumes source text up to the next separator that is not
// nested inside brackets or quotes.
func (n *normalizer) rawExpression() (string, error) {
	start := n.pos
	depth := 0

	for !n.eof() {
		if rest := n.src[n.pos:]; strings.HasPrefix(rest, "//") || strings.HasPrefix(rest, "/*") {
			if depth == 0 {
				return strings.TrimSpace(n.src[start:n.pos]), nil
			}
			n.skipSpace()
			continue
		}

		switch c := n.peek(); c {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth == 0 {
				return strings.TrimSpace(n.src[start:n.pos]), nil
			}
			depth--
		case ',':
			if depth == 0 {
				return strings.TrimSpace(n.src[start:n.pos]), nil
			}
		case '"', '\'':
			if _, err := n.quoted(); err != nil {
				return "", err
			}
			continue
		case '`':
			if _, err := n.template(); err != nil {
				return "", err
			}
			continue
		}
		n.pos++
	}

	if depth > 0 {
		return "", n.errorf("unbalanced brackets in expression")
	}
	return strings.TrimSpace(n.src[start:n.pos]), nil
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || c == '-' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// escape decodes the escape sequence after a backslash: \n \t \r, \xHH,
// \uHHHH (surrogate pairs included) and \u{H...}. Any other escaped
// character stands for itself.
func (n *normalizer) escape(b *strings.Builder) error {
	c := n.peek()
	n.pos++

	switch c {
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case 'x':
		r, err := n.hex(2)
		if err != nil {
			return err
		}
		b.WriteRune(r)
	case 'u':
		r, err := n.unicodeEscape()
		if err != nil {
			return err
		}
		if utf16.IsSurrogate(r) && strings.HasPrefix(n.src[n.pos:], "\\u") {
			save := n.pos
			n.pos += 2
			if low, err := n.unicodeEscape(); err == nil {
				if pair := utf16.DecodeRune(r, low); pair != utf8.RuneError {
					b.WriteRune(pair)
					return nil
				}
			}
			n.pos = save
		}
		b.WriteRune(r)
	default:
		b.WriteByte(c)
	}
	return nil
}

func (n *normalizer) unicodeEscape() (rune, error) {
	if n.eof() || n.peek() != '{' {
		return n.hex(4)
	}

	end := strings.IndexByte(n.src[n.pos:], '}')
	if end < 2 || end > 7 {
		return 0, n.errorf("invalid unicode escape")
	}
	v, err := strconv.ParseUint(n.src[n.pos+1:n.pos+end], 16, 32)
	if err != nil || v > unicode.MaxRune {
		return 0, n.errorf("invalid unicode escape")
	}
	n.pos += end + 1
	return rune(v), nil
}

func (n *normalizer) hex(digits int) (rune, error) {
	if n.pos+digits > len(n.src) {
		return 0, n.errorf("truncated escape sequence")
	}
	v, err := strconv.ParseUint(n.src[n.pos:n.pos+digits], 16, 32)
	if err != nil {
		return 0, n.errorf("invalid escape sequence %q", n.src[n.pos:n.pos+digits])
	}
	n.pos += digits
	return rune(v), nil
}

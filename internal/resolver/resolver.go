// Package resolver follows a container's image expression to the image
// resource it names.
package resolver

import (
	"regexp"
	"strings"

	"github.com/railwayapp/compositor/internal/blueprint"
)

// CwdPlaceholder is the program directory token Pulumi YAML uses in paths.
const CwdPlaceholder = "${pulumi.cwd}"

var (
	referencePattern    = regexp.MustCompile(`\$\{(.+)\.(.+)\}`)
	buildContextPattern = regexp.MustCompile(`(\$\{.+\})(/)(.+)`)
)

// Reference is the parsed form of `${name.property}`. When the expression
// carries no such pattern Name holds the whole expression.
type Reference struct {
	Name        string
	Property    string
	IsReference bool
}

func ParseReference(expr string) Reference {
	m := referencePattern.FindStringSubmatch(expr)
	if m == nil {
		return Reference{Name: expr}
	}
	return Reference{Name: m[1], Property: m[2], IsReference: true}
}

type Resolver struct {
	images []blueprint.ImageBlueprint
}

func New(images []blueprint.ImageBlueprint) *Resolver {
	return &Resolver{images: images}
}

// Resolve returns either a literal image name or a build context path for
// expr, never both. Expressions without `${name.property}` are literal tags,
// except script member access of the form `<binding>.imageName`. Unknown
// names and unusable build contexts resolve to the referenced name as a
// literal.
func (r *Resolver) Resolve(expr string) blueprint.ResolvedImage {
	ref := ParseReference(expr)
	if !ref.IsReference && !isScriptReference(expr) {
		return literal(expr)
	}

	image, ok := r.find(ref.Name)
	if !ok {
		return literal(ref.Name)
	}

	if image.Build == nil || image.Build.Context == "" {
		if image.Name != "" {
			return literal(image.Name)
		}
		return literal(ref.Name)
	}

	path, ok := BuildContextPath(image.Build.Context)
	if !ok {
		return literal(ref.Name)
	}
	return blueprint.ResolvedImage{BuildContextPath: path, IsBuildContext: true}
}

func isScriptReference(expr string) bool {
	binding, property, ok := strings.Cut(expr, ".")
	return ok && binding != "" && property == blueprint.ImageNameProperty
}

func (r *Resolver) find(referenceName string) (blueprint.ImageBlueprint, bool) {
	for _, image := range r.images {
		if image.ReferenceName == referenceName {
			return image, true
		}
	}
	return blueprint.ImageBlueprint{}, false
}

// BuildContextPath turns `${<ref>}/<dir>` into a compose build context,
// replacing the program directory placeholder with ".". Plain paths are
// returned unchanged.
func BuildContextPath(context string) (string, bool) {
	if !strings.Contains(context, "${") {
		return context, context != ""
	}

	m := buildContextPattern.FindStringSubmatch(context)
	if m == nil || m[1] == "" || m[3] == "" {
		return "", false
	}

	dir := strings.ReplaceAll(m[1], CwdPlaceholder, ".")
	return dir + "/" + m[3], true
}

func literal(name string) blueprint.ResolvedImage {
	return blueprint.ResolvedImage{LiteralName: name}
}

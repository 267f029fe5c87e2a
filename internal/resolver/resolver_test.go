package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/railwayapp/compositor/internal/blueprint"
)

func TestParseReference(t *testing.T) {
	assert.Equal(t, Reference{Name: "myImage", Property: "name", IsReference: true}, ParseReference("${myImage.name}"))
	assert.Equal(t, Reference{Name: "node:18"}, ParseReference("node:18"))
	assert.Equal(t, Reference{Name: "svc.imageName"}, ParseReference("svc.imageName"))
	// greedy: the last dot splits name from property
	assert.Equal(t, Reference{Name: "a.b", Property: "c", IsReference: true}, ParseReference("${a.b.c}"))
}

func TestBuildContextPath(t *testing.T) {
	tests := []struct {
		name    string
		context string
		want    string
		ok      bool
	}{
		{name: "cwd placeholder", context: "${pulumi.cwd}/node-app", want: "./node-app", ok: true},
		{name: "nested dir", context: "${pulumi.cwd}/services/api", want: "./services/api", ok: true},
		{name: "other reference kept", context: "${root.path}/app", want: "${root.path}/app", ok: true},
		{name: "plain relative path", context: "../services/service1", want: "../services/service1", ok: true},
		{name: "reference without segment", context: "${pulumi.cwd}", ok: false},
		{name: "empty segment", context: "${pulumi.cwd}/", ok: false},
		{name: "empty", context: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BuildContextPath(tt.context)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve(t *testing.T) {
	r := New([]blueprint.ImageBlueprint{
		{ReferenceName: "myImage", Name: "my-image", Build: &blueprint.BuildContext{Context: "${pulumi.cwd}/node-app"}},
		{ReferenceName: "pulled", Name: "docker.io/library/redis:7"},
		{ReferenceName: "unnamed"},
		{ReferenceName: "broken", Name: "broken-image", Build: &blueprint.BuildContext{Context: "${pulumi.cwd}"}},
		{ReferenceName: "service1Image.imageName", Name: "service1Image", Build: &blueprint.BuildContext{Context: "../services/service1"}},
		{ReferenceName: "registry.example.com/app", Name: "shadowed", Build: &blueprint.BuildContext{Context: "${pulumi.cwd}/app"}},
	})

	tests := []struct {
		name string
		expr string
		want blueprint.ResolvedImage
	}{
		{name: "literal tag", expr: "node:18", want: blueprint.ResolvedImage{LiteralName: "node:18"}},
		{name: "build context", expr: "${myImage.name}", want: blueprint.ResolvedImage{BuildContextPath: "./node-app", IsBuildContext: true}},
		{name: "image without build", expr: "${pulled.name}", want: blueprint.ResolvedImage{LiteralName: "docker.io/library/redis:7"}},
		{name: "image without name", expr: "${unnamed.name}", want: blueprint.ResolvedImage{LiteralName: "unnamed"}},
		{name: "unknown reference", expr: "${registry.loginServer}", want: blueprint.ResolvedImage{LiteralName: "registry"}},
		{name: "malformed build context", expr: "${broken.name}", want: blueprint.ResolvedImage{LiteralName: "broken"}},
		{name: "script member access", expr: "service1Image.imageName", want: blueprint.ResolvedImage{BuildContextPath: "../services/service1", IsBuildContext: true}},
		{name: "bare resource name is a literal tag", expr: "myImage", want: blueprint.ResolvedImage{LiteralName: "myImage"}},
		{name: "bare tag matching a reference name", expr: "registry.example.com/app", want: blueprint.ResolvedImage{LiteralName: "registry.example.com/app"}},
		{name: "other member access is literal", expr: "service1Image.name", want: blueprint.ResolvedImage{LiteralName: "service1Image.name"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(tt.expr)
			assert.Equal(t, tt.want, got)
			assert.NotEqual(t, got.LiteralName == "", got.BuildContextPath == "", "exactly one of literal and build context")
		})
	}
}

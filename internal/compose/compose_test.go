package compose

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/railwayapp/compositor/internal/blueprint"
)

func sidecarServices() []blueprint.ServiceDefinition {
	return []blueprint.ServiceDefinition{
		{
			Name:      "myapp",
			Build:     &blueprint.BuildConfig{Context: "./node-app"},
			DependsOn: []string{"placement"},
			Networks:  []string{"dapr-network"},
		},
		{
			Name:        "myapp_dapr",
			Image:       "daprio/daprd:edge",
			DependsOn:   []string{"myapp"},
			NetworkMode: "service:myapp",
			Command:     []string{"./daprd", "-app-id", "myapp", "-app-port", "3000", "-placement-host-address", "placement:50006", "air"},
		},
		{
			Name:  "web",
			Image: "nginx:1.25",
			Ports: []string{"8080:8080"},
		},
	}
}

func TestAssemble(t *testing.T) {
	doc := Assemble(sidecarServices(), "", "")

	assert.Equal(t, "3.9", doc.Version)
	require.Len(t, doc.Services, 4)
	assert.Equal(t, map[string]Network{"dapr-network": {Driver: "default"}}, doc.Networks)

	placement, ok := doc.Lookup("placement")
	require.True(t, ok)
	assert.Equal(t, "daprio/dapr", placement.Image)
	assert.Equal(t, []string{"50006:50006"}, placement.Ports)
	assert.Equal(t, []string{"./placement", "-port", "50006"}, placement.Command)
	assert.Equal(t, []string{"dapr-network"}, placement.Networks)

	_, ok = doc.Lookup("missing")
	assert.False(t, ok)
}

func TestAssemble_CustomPlacement(t *testing.T) {
	doc := Assemble(nil, "coordinator", "mesh")

	_, ok := doc.Lookup(PlacementService)
	assert.False(t, ok)

	placement, ok := doc.Lookup("coordinator")
	require.True(t, ok)
	assert.Equal(t, []string{"mesh"}, placement.Networks)
	assert.Contains(t, doc.Networks, "mesh")
}

func TestMarshal(t *testing.T) {
	content, err := Marshal(Assemble(sidecarServices(), "", ""))
	require.NoError(t, err)
	out := string(content)

	assert.True(t, strings.HasPrefix(out, "version: \"3.9\"\n"), out)
	assert.NotContains(t, out, "null")
	assert.NotContains(t, out, "name:")

	// services keep synthesis order, placement last
	assert.Less(t, strings.Index(out, "  myapp:"), strings.Index(out, "  myapp_dapr:"))
	assert.Less(t, strings.Index(out, "  myapp_dapr:"), strings.Index(out, "  web:"))
	assert.Less(t, strings.Index(out, "  web:"), strings.Index(out, "  placement:"))

	var decoded struct {
		Version  string                    `yaml:"version"`
		Services map[string]map[string]any `yaml:"services"`
		Networks map[string]map[string]any `yaml:"networks"`
	}
	require.NoError(t, yaml.Unmarshal(content, &decoded))

	app := decoded.Services["myapp"]
	assert.Equal(t, map[string]any{"context": "./node-app"}, app["build"])
	assert.NotContains(t, app, "image")
	assert.NotContains(t, app, "ports")

	sidecar := decoded.Services["myapp_dapr"]
	assert.Equal(t, "service:myapp", sidecar["network_mode"])
	assert.NotContains(t, sidecar, "networks")

	assert.Equal(t, "default", decoded.Networks["dapr-network"]["driver"])
}

func TestMarshal_Deterministic(t *testing.T) {
	first, err := Marshal(Assemble(sidecarServices(), "", ""))
	require.NoError(t, err)
	second, err := Marshal(Assemble(sidecarServices(), "", ""))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestValidate(t *testing.T) {
	content, err := Marshal(Assemble(sidecarServices(), "", ""))
	require.NoError(t, err)

	project, err := Validate(context.Background(), content, "My Project")
	require.NoError(t, err)
	assert.Len(t, project.Services, 4)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "not yaml", content: "services: ["},
		{name: "empty", content: ""},
		{
			name:    "no image or build",
			content: "services:\n  api:\n    ports:\n      - \"80:80\"\n",
		},
		{
			name:    "unknown dependency",
			content: "services:\n  api:\n    image: nginx\n    depends_on:\n      - db\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(context.Background(), []byte(tt.content), "")
			assert.ErrorIs(t, err, ErrInvalidDocument)
		})
	}
}

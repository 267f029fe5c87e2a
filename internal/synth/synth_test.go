package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railwayapp/compositor/internal/blueprint"
)

func boolPtr(b bool) *bool    { return &b }
func uintPtr(u uint) *uint    { return &u }
func strPtr(s string) *string { return &s }

func nodeAppSet() *blueprint.Set {
	return &blueprint.Set{
		Images: []blueprint.ImageBlueprint{
			{ReferenceName: "myImage", Name: "my-image", Build: &blueprint.BuildContext{Context: "${pulumi.cwd}/node-app"}},
		},
		Applications: []blueprint.ApplicationBlueprint{
			{
				Name:    "myapp",
				Dapr:    &blueprint.DaprConfig{Enabled: boolPtr(true), AppPort: uintPtr(3000), AppID: strPtr("myapp")},
				Ingress: &blueprint.IngressConfig{External: boolPtr(false)},
				Containers: []blueprint.ContainerBlueprint{
					{Name: "myapp", Image: "${myImage.name}"},
				},
			},
		},
	}
}

func TestSynthesize_SidecarApp(t *testing.T) {
	services, err := New(Options{}).Synthesize(nodeAppSet(), nil)
	require.NoError(t, err)
	require.Len(t, services, 2)

	assert.Equal(t, blueprint.ServiceDefinition{
		Name:      "myapp",
		Build:     &blueprint.BuildConfig{Context: "./node-app"},
		DependsOn: []string{"placement"},
		Networks:  []string{"dapr-network"},
	}, services[0])

	assert.Equal(t, blueprint.ServiceDefinition{
		Name:        "myapp_dapr",
		Image:       "daprio/daprd:edge",
		DependsOn:   []string{"myapp"},
		NetworkMode: "service:myapp",
		Command: []string{
			"./daprd", "-app-id", "myapp", "-app-port", "3000",
			"-placement-host-address", "placement:50006", "air",
		},
	}, services[1])
}

func TestSynthesize_FanOut(t *testing.T) {
	set := &blueprint.Set{
		Applications: []blueprint.ApplicationBlueprint{
			{
				Name:    "frontend",
				Dapr:    &blueprint.DaprConfig{Enabled: boolPtr(true), AppPort: uintPtr(8000), AppID: strPtr("web")},
				Ingress: &blueprint.IngressConfig{External: boolPtr(true), TargetPort: uintPtr(80)},
				Containers: []blueprint.ContainerBlueprint{
					{Name: "web", Image: "nginx"},
					{Name: "assets", Image: "caddy"},
				},
			},
			{
				Name:       "jobs",
				Dapr:       &blueprint.DaprConfig{Enabled: boolPtr(false)},
				Containers: []blueprint.ContainerBlueprint{{Name: "worker", Image: "node:18"}},
			},
			{
				Name:       "public",
				Ingress:    &blueprint.IngressConfig{External: boolPtr(true), TargetPort: uintPtr(3000)},
				Containers: []blueprint.ContainerBlueprint{{Name: "site", Image: "node:18"}},
			},
		},
	}

	services, err := New(DefaultOptions()).Synthesize(set, nil)
	require.NoError(t, err)

	var names []string
	for _, service := range services {
		names = append(names, service.Name)
	}
	assert.Equal(t, []string{"web", "web_dapr", "assets", "assets_dapr", "worker", "site"}, names)

	assert.Equal(t, []string{"80:8000"}, services[0].Ports)
	assert.Nil(t, services[2].Ports, "assets is not the dapr app id")
	assert.Equal(t, "service:assets", services[3].NetworkMode)

	worker := services[4]
	assert.Equal(t, "node:18", worker.Image)
	assert.Nil(t, worker.DependsOn)
	assert.Nil(t, worker.Networks)
	assert.Nil(t, worker.Ports)

	assert.Equal(t, []string{"3000:3000"}, services[5].Ports)
}

func TestSynthesize_SidecarPortWithoutMapping(t *testing.T) {
	set := &blueprint.Set{
		Applications: []blueprint.ApplicationBlueprint{{
			Name:       "api",
			Dapr:       &blueprint.DaprConfig{Enabled: boolPtr(true)},
			Containers: []blueprint.ContainerBlueprint{{Name: "api", Image: "api:latest"}},
		}},
	}

	services, err := New(Options{}).Synthesize(set, nil)
	require.NoError(t, err)
	require.Len(t, services, 2)
	assert.Contains(t, services[1].Command, "0")
	assert.Nil(t, services[0].Ports)
}

func TestSynthesize_Environment(t *testing.T) {
	env := []string{"LOG_LEVEL=debug", "PORT=3000"}

	services, err := New(Options{}).Synthesize(nodeAppSet(), env)
	require.NoError(t, err)
	assert.Equal(t, env, services[0].Environment)
	assert.Nil(t, services[1].Environment)
}

func TestSynthesize_CustomOptions(t *testing.T) {
	opts := Options{
		SidecarImage:     "daprio/daprd:1.12.0",
		PlacementAddress: "placement:6050",
		Network:          "mesh",
		SidecarArgs:      []string{},
	}

	services, err := New(opts).Synthesize(nodeAppSet(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"mesh"}, services[0].Networks)
	assert.Equal(t, "daprio/daprd:1.12.0", services[1].Image)
	assert.Equal(t, []string{
		"./daprd", "-app-id", "myapp", "-app-port", "3000",
		"-placement-host-address", "placement:6050",
	}, services[1].Command)
}

func TestSynthesize_DuplicateNames(t *testing.T) {
	set := &blueprint.Set{
		Applications: []blueprint.ApplicationBlueprint{
			{Name: "a", Containers: []blueprint.ContainerBlueprint{{Name: "web", Image: "nginx"}}},
			{Name: "b", Containers: []blueprint.ContainerBlueprint{{Name: "web", Image: "caddy"}}},
		},
	}

	_, err := New(Options{}).Synthesize(set, nil)
	assert.ErrorIs(t, err, ErrDuplicateService)

	set = &blueprint.Set{
		Applications: []blueprint.ApplicationBlueprint{
			{Name: "a", Dapr: &blueprint.DaprConfig{Enabled: boolPtr(true)}, Containers: []blueprint.ContainerBlueprint{{Name: "web", Image: "nginx"}}},
			{Name: "b", Containers: []blueprint.ContainerBlueprint{{Name: "web_dapr", Image: "caddy"}}},
		},
	}

	_, err = New(Options{}).Synthesize(set, nil)
	assert.ErrorIs(t, err, ErrDuplicateService)

	set = &blueprint.Set{
		Applications: []blueprint.ApplicationBlueprint{
			{Name: "scheduler", Containers: []blueprint.ContainerBlueprint{{Name: "placement", Image: "nginx"}}},
		},
	}

	_, err = New(Options{}).Synthesize(set, nil)
	require.ErrorIs(t, err, ErrDuplicateService)
	assert.Contains(t, err.Error(), "placement service")

	_, err = New(Options{PlacementService: "coordinator"}).Synthesize(set, nil)
	assert.NoError(t, err)
}

func TestIsSidecar(t *testing.T) {
	set := &blueprint.Set{
		Applications: []blueprint.ApplicationBlueprint{
			{Name: "a", Dapr: &blueprint.DaprConfig{Enabled: boolPtr(true)}, Containers: []blueprint.ContainerBlueprint{{Name: "web", Image: "nginx"}}},
			{Name: "b", Containers: []blueprint.ContainerBlueprint{{Name: "jobs_dapr", Image: "worker"}}},
		},
	}
	services, err := New(Options{}).Synthesize(set, nil)
	require.NoError(t, err)
	require.Len(t, services, 3)

	assert.False(t, IsSidecar(services[0]))
	assert.True(t, IsSidecar(services[1]))
	assert.False(t, IsSidecar(services[2]), "a user container named like a sidecar")

	assert.False(t, IsSidecar(blueprint.ServiceDefinition{Name: "_dapr", NetworkMode: "service:"}))
}

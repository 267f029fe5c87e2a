package blueprint

// ServiceDefinition is one compose service. Unset fields are omitted when
// serialized; Name is the key in the services map and never a field.
type ServiceDefinition struct {
	Name        string       `json:"name" yaml:"-"`
	Image       string       `json:"image,omitempty" yaml:"image,omitempty"`
	Build       *BuildConfig `json:"build,omitempty" yaml:"build,omitempty"`
	DependsOn   []string     `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
	Networks    []string     `json:"networks,omitempty" yaml:"networks,omitempty"`
	NetworkMode string       `json:"network_mode,omitempty" yaml:"network_mode,omitempty"`
	Ports       []string     `json:"ports,omitempty" yaml:"ports,omitempty"`
	Command     []string     `json:"command,omitempty" yaml:"command,omitempty"`
	Environment []string     `json:"environment,omitempty" yaml:"environment,omitempty"`
}

type BuildConfig struct {
	Context string `json:"context" yaml:"context"`
}

// ResolvedImage is the outcome of following a container's image expression.
// Exactly one of LiteralName and BuildContextPath is set.
type ResolvedImage struct {
	LiteralName      string
	BuildContextPath string
	IsBuildContext   bool
}

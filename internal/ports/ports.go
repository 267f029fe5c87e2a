// Package ports decides which host ports a container publishes, given its
// app's dapr and ingress settings.
package ports

import (
	"strconv"

	"github.com/railwayapp/compositor/internal/blueprint"
)

// Policy is the outcome for one container. SidecarAppPort is always the
// configured dapr app port, mapping or not.
type Policy struct {
	Ports          []string
	SidecarAppPort uint
}

// Resolve applies the port table:
//
//	dapr on,  ingress external, container == appId -> targetPort:appPort
//	dapr on,  anything else                        -> none
//	dapr off, ingress external                     -> targetPort:targetPort
//	dapr off, ingress not external                 -> none
//
// Missing ports format as 0.
func Resolve(container string, dapr *blueprint.DaprConfig, ingress *blueprint.IngressConfig) Policy {
	policy := Policy{SidecarAppPort: dapr.Port()}

	if !ingress.IsExternal() {
		return policy
	}

	if dapr.IsEnabled() {
		if id, ok := dapr.ID(); ok && id == container {
			policy.Ports = []string{Mapping(ingress.Port(), dapr.Port())}
		}
		return policy
	}

	policy.Ports = []string{Mapping(ingress.Port(), ingress.Port())}
	return policy
}

// Mapping formats a host:container port pair.
func Mapping(host, container uint) string {
	return strconv.FormatUint(uint64(host), 10) + ":" + strconv.FormatUint(uint64(container), 10)
}

package types

type EnvType int

const (
	EnvTypeUnknown EnvType = iota
	EnvTypeSecret
	EnvTypeDatabase
	EnvTypeConfig
	EnvTypeGenerated // Detected as generated (nanoid, uuid, random string)
	EnvTypeURL
	EnvTypeBoolean
	EnvTypeNumeric
)

func (t EnvType) String() string {
	switch t {
	case EnvTypeSecret:
		return "secret"
	case EnvTypeDatabase:
		return "database"
	case EnvTypeConfig:
		return "config"
	case EnvTypeGenerated:
		return "generated"
	case EnvTypeURL:
		return "url"
	case EnvTypeBoolean:
		return "boolean"
	case EnvTypeNumeric:
		return "numeric"
	default:
		return "unknown"
	}
}

type EnvResult struct {
	VarName   string
	Value     string
	HasValue  bool
	Type      EnvType
	Sensitive bool
	Source    string // e.g., "dotenv:/path/to/.env"
	// Service limits the variable to one compose service. Empty means every
	// app service.
	Service string
}

// Entry renders the result as a compose environment entry.
func (r EnvResult) Entry() string {
	if !r.HasValue {
		return r.VarName
	}
	return r.VarName + "=" + r.Value
}

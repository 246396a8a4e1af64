package server

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	ApiKey string `mapstructure:"api_key" default:""`
	// Source identifies the origin of writes performed through this process
	// ("job" for the scheduled feed sync, "manual" for operator actions).
	Source string `mapstructure:"source" default:"job"`
}

const (
	SourceJob    = "job"
	SourceManual = "manual"
)

// IsValidSource checks if the configured write source is valid.
func (c Config) IsValidSource() bool {
	switch c.Source {
	case SourceJob, SourceManual:
		return true
	default:
		return false
	}
}

// Package config defines process configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) to build a Config with defaults.
// - Layer file and environment overrides in Load.
// - External errors are wrapped via this package's sentinel errors.
package config

// Store backend identifiers.
const (
	BackendDynamo = "dynamo"
	BackendMemory = "memory"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// StoreBackend selects the item store implementation: dynamo or memory.
	StoreBackend string `koanf:"store_backend"`

	// TableName is the DynamoDB table holding all tournament items.
	TableName string `koanf:"table_name"`

	// AWSRegion overrides the SDK's default region resolution when set.
	AWSRegion string `koanf:"aws_region"`

	// DynamoEndpoint points the client at a local DynamoDB when set,
	// e.g. "http://localhost:8000".
	DynamoEndpoint string `koanf:"dynamo_endpoint"`

	// DefaultMaxCourts seeds new tournaments that omit a court count.
	DefaultMaxCourts int `koanf:"default_max_courts"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		StoreBackend:     BackendDynamo,
		TableName:        "TournamentTable",
		DefaultMaxCourts: 3,
	}
}

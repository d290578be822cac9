package driven

// ConfigStore provides persistent key-value configuration.
// Values are read at startup into an explicit config struct; components
// never read ambient process state themselves.
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	Get(key string) (any, bool)

	// GetString retrieves a string value, "" when absent.
	GetString(key string) string

	// GetInt retrieves an integer value, 0 when absent.
	GetInt(key string) int

	// GetBool retrieves a boolean value, false when absent.
	GetBool(key string) bool

	// Set stores a configuration value.
	Set(key string, value any) error

	// Save persists pending changes.
	Save() error
}

package pkgconfig

// Config is the read-only view of settings used by the app shell and modules.
type Config interface {
	GetInt(key string) int64
	GetBool(key string) bool
	GetString(key string) string
	// GetArray reads a YAML list or a comma separated string, the form
	// environment overrides take.
	GetArray(key string) []string
	Close() error
}

package driven

// ConfigStore is the key/value view of config.toml. Keys are dotted paths
// into TOML tables, e.g. "embedding.provider" or "index.metric".
type ConfigStore interface {
	// Get returns the raw value and whether the key is set.
	Get(key string) (any, bool)

	// GetString, GetInt and GetBool return the zero value when the key is
	// missing or holds another type.
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool

	// Set updates a key in memory and writes the file.
	Set(key string, value any) error

	// Keys lists every set key in dotted form, sorted.
	Keys() []string

	Save() error
	Load() error
	Path() string
}

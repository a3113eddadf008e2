package config

import "fmt"

// StoreConfig selects where parameter sets and results are kept.
type StoreConfig struct {
	// Backend is "memory" or "sqlite".
	Backend string `json:"backend"`
	// Path is the SQLite database file.
	Path string `json:"path"`
}

// SetDefaults applies sane defaults.
func (c *StoreConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "memory"
	}
	if c.Backend == "sqlite" && c.Path == "" {
		c.Path = "chargesim.db"
	}
}

// Validate checks the backend name.
func (c StoreConfig) Validate() error {
	switch c.Backend {
	case "memory":
		return nil
	case "sqlite":
		if c.Path == "" {
			return fmt.Errorf("path is required")
		}
		return nil
	default:
		return fmt.Errorf("unknown backend %s", c.Backend)
	}
}

package config

import "time"

// APIConfig defines the HTTP server settings.
type APIConfig struct {
	Address         string        `json:"address"`
	CORSOrigins     []string      `json:"cors_origins"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

// SetDefaults applies sane defaults.
func (c *APIConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = []string{"*"}
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 5 * time.Second
	}
}

package config

import "fmt"

// DefaultJWTExpirationHours is the lifetime of technician tokens.
const DefaultJWTExpirationHours = 24

// JWTConfig holds configuration for technician token generation and validation.
// An empty Secret disables token authentication.
type JWTConfig struct {
	Secret          string `mapstructure:"secret"`
	ExpirationHours int    `mapstructure:"expiration_hours"`
}

// Enabled reports whether a signing secret is configured.
func (c JWTConfig) Enabled() bool {
	return c.Secret != ""
}

// normalize validates the configuration.
func (c *JWTConfig) normalize() error {
	if !c.Enabled() {
		return nil
	}
	if len(c.Secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 bytes")
	}
	if c.ExpirationHours < 1 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	return nil
}

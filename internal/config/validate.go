package config

import (
	"errors"
	"fmt"
	"strings"
)

const maxHostnameLength = 253

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCDDB(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateCDDB() error {
	server := c.CDDB.Server
	if server == "" {
		return errors.New("cddb.server must be set")
	}
	if len(server) > maxHostnameLength {
		return fmt.Errorf("cddb.server is longer than %d characters", maxHostnameLength)
	}
	if strings.Contains(server, "://") {
		return fmt.Errorf("cddb.server %q must be a host name (optionally host:port), not a URL", server)
	}
	if strings.ContainsAny(server, "/?#@ \t") {
		return fmt.Errorf("cddb.server %q contains characters not allowed in a host name", server)
	}
	if c.CDDB.ProtoLevel < 1 {
		return errors.New("cddb.proto_level must be at least 1")
	}
	if c.CDDB.TimeoutSeconds < 1 {
		return errors.New("cddb.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not recognised", c.Logging.Level)
	}
	return nil
}

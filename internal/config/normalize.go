package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeCDDB()
	if err := c.normalizeCache(); err != nil {
		return err
	}
	c.Drive.Device = strings.TrimSpace(c.Drive.Device)
	if c.Drive.Device == "" {
		c.Drive.Device = defaultDevice
	}
	return c.normalizeLogging()
}

func (c *Config) normalizeCDDB() {
	if value, ok := lookupEnv("CDDB_SERVER"); ok {
		c.CDDB.Server = value
	}
	if value, ok := lookupEnv("CDDB_USER"); ok && strings.TrimSpace(c.CDDB.User) == "" {
		c.CDDB.User = value
	}
	c.CDDB.Server = strings.TrimSpace(c.CDDB.Server)
	if c.CDDB.Server == "" {
		c.CDDB.Server = defaultServer
	}
	if c.CDDB.ProtoLevel == 0 {
		c.CDDB.ProtoLevel = defaultProtoLevel
	}
	c.CDDB.ClientName = strings.TrimSpace(c.CDDB.ClientName)
	if c.CDDB.ClientName == "" {
		c.CDDB.ClientName = defaultClientName
	}
	c.CDDB.ClientVersion = strings.TrimSpace(c.CDDB.ClientVersion)
	if c.CDDB.ClientVersion == "" {
		c.CDDB.ClientVersion = defaultClientVersion
	}
	c.CDDB.User = strings.TrimSpace(c.CDDB.User)
	c.CDDB.Host = strings.TrimSpace(c.CDDB.Host)
	if c.CDDB.TimeoutSeconds == 0 {
		c.CDDB.TimeoutSeconds = defaultTimeoutSeconds
	}
}

func (c *Config) normalizeCache() error {
	if value, ok := lookupEnv("CDDB_CACHE_DIR"); ok {
		c.Cache.Dir = value
	}
	if strings.TrimSpace(c.Cache.Dir) == "" {
		c.Cache.Dir = defaultCacheDir
	}
	dir, err := expandPath(strings.TrimSpace(c.Cache.Dir))
	if err != nil {
		return fmt.Errorf("cache.dir: %w", err)
	}
	c.Cache.Dir = dir
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	if strings.TrimSpace(c.Logging.Dir) != "" {
		dir, err := expandPath(strings.TrimSpace(c.Logging.Dir))
		if err != nil {
			return fmt.Errorf("logging.dir: %w", err)
		}
		c.Logging.Dir = dir
	}
	return nil
}

func lookupEnv(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

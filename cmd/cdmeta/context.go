package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"cdmeta/internal/cddb"
	"cdmeta/internal/config"
	"cdmeta/internal/logging"
	"cdmeta/internal/resolver"
	"cdmeta/internal/xmcdcache"
)

type commandContext struct {
	configFlag   *string
	jsonFlag     *bool
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string, jsonFlag *bool, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		jsonFlag:     jsonFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
			if err := cfg.Validate(); err != nil {
				c.configErr = err
				return
			}
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

// JSONMode reports whether --json was given.
func (c *commandContext) JSONMode() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) newCache() (*xmcdcache.Cache, *config.Config, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, err
	}
	return xmcdcache.NewCache(cfg.Cache.Dir, logger), cfg, nil
}

func (c *commandContext) newResolver(opts ...resolver.Option) (*resolver.Resolver, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	opts = append([]resolver.Option{resolver.WithLogger(logger)}, opts...)
	return resolver.New(cfg, opts...)
}

func (c *commandContext) newSession() (*cddb.Session, *config.Config, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, err
	}
	session, err := cddb.NewSession(cddb.Config{
		Server:     cfg.CDDB.Server,
		ProtoLevel: cfg.CDDB.ProtoLevel,
		Identity: cddb.Identity{
			User:          cfg.CDDB.User,
			Host:          cfg.CDDB.Host,
			ClientName:    cfg.CDDB.ClientName,
			ClientVersion: cfg.CDDB.ClientVersion,
		},
		Timeout: cfg.Timeout(),
	}, cddb.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	return session, cfg, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

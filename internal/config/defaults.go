package config

const (
	defaultConfigPath     = "~/.config/cdmeta/config.toml"
	defaultServer         = "freedb.freedb.org"
	defaultProtoLevel     = 1
	defaultClientName     = "cdmeta"
	defaultClientVersion  = "0.1"
	defaultTimeoutSeconds = 20
	defaultCacheDir       = "~/.cddb"
	defaultDevice         = "/dev/cdrom"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		CDDB: CDDB{
			Server:         defaultServer,
			ProtoLevel:     defaultProtoLevel,
			Negotiate:      true,
			ClientName:     defaultClientName,
			ClientVersion:  defaultClientVersion,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Cache: Cache{
			Enabled: true,
			Dir:     defaultCacheDir,
		},
		Drive: Drive{
			Device: defaultDevice,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}

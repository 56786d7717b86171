// Package config loads, normalizes, and validates cdmeta configuration.
//
// It supplies defaults (freedb.freedb.org, ~/.cddb cache, /dev/cdrom), expands
// tilde paths, reads TOML files and honours environment overrides such as
// CDDB_SERVER and CDDB_CACHE_DIR. Obtain settings through Load so callers get
// expanded paths and clear validation errors.
package config

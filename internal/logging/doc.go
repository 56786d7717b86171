// Package logging assembles the slog loggers used across cdmeta.
//
// It owns the console and JSON handlers, level parsing and output routing,
// plus a small set of attribute helpers and standard field names so every
// component logs the same keys. NewNop returns a discarding logger for tests
// and for wiring code that was handed a nil logger.
package logging

// Package preflight provides readiness checks for the paths and the server
// cdmeta depends on.
//
// The CLI "cdmeta status" command runs RunAll and prints one line per check.
// Each check is gated by its config toggle; a disabled cache is skipped.
package preflight

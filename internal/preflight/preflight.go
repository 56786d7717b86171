package preflight

import (
	"context"

	"cdmeta/internal/cddb"
	"cdmeta/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes all applicable preflight checks for the given config.
// transport may be nil to use the default HTTP transport.
func RunAll(ctx context.Context, cfg *config.Config, transport cddb.Transport) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	if cfg.Cache.Enabled {
		results = append(results, CheckCacheDirectory("Cache directory", cfg.Cache.Dir))
	}

	results = append(results, CheckDevice("Optical drive", cfg.Drive.Device))
	results = append(results, CheckServer(ctx, cfg, transport))

	return results
}

// AllPassed reports whether every result passed.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}

package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"cdmeta/internal/cddb"
	"cdmeta/internal/config"
	"cdmeta/internal/disc"
	"cdmeta/internal/disc/discid"
	"cdmeta/internal/logging"
	"cdmeta/internal/xmcdcache"
)

// State is the terminal state of a resolution that did not fail.
type State int

const (
	// StateDone means a record was found in the cache or on the server.
	StateDone State = iota
	// StateStopped means the server has no entry for the disc.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateDone:
		return "done"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MarshalText renders the state name for JSON output.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Result describes a finished resolution. Record is empty unless State is
// StateDone.
type Result struct {
	State         State             `json:"state"`
	DiscID        discid.ID         `json:"disc_id"`
	Query         discid.Query      `json:"query"`
	Record        cddb.Record       `json:"record"`
	FromCache     bool              `json:"from_cache"`
	Outcome       cddb.QueryOutcome `json:"outcome"`
	ProtoLevel    int               `json:"proto_level,omitempty"`
	CorrelationID string            `json:"correlation_id"`
}

// Store is the cache the resolver reads and fills.
type Store interface {
	Lookup(id discid.ID) (cddb.Record, bool)
	Store(id discid.ID, rec cddb.Record) error
}

// Resolver resolves discs one at a time. Sequential calls are fine;
// concurrent calls each get their own session but share the cache.
type Resolver struct {
	cddb      config.CDDB
	device    string
	toc       disc.TOCReader
	transport cddb.Transport
	cache     Store
	cacheSet  bool
	refresh   bool
	logger    *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithTOCReader overrides the drive reader.
func WithTOCReader(r disc.TOCReader) Option {
	return func(res *Resolver) {
		if r != nil {
			res.toc = r
		}
	}
}

// WithTransport overrides the HTTP transport of every session.
func WithTransport(t cddb.Transport) Option {
	return func(res *Resolver) {
		res.transport = t
	}
}

// WithCache replaces the cache. A nil store disables caching.
func WithCache(store Store) Option {
	return func(res *Resolver) {
		res.cache = store
		res.cacheSet = true
	}
}

// WithRefresh skips cache lookups; fetched records are still stored.
func WithRefresh(refresh bool) Option {
	return func(res *Resolver) {
		res.refresh = refresh
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(res *Resolver) {
		res.logger = logger
	}
}

// New builds a resolver from cfg. Without options it reads the configured
// drive, talks to the configured server over HTTP and caches under
// cfg.Cache.Dir when caching is enabled.
func New(cfg *config.Config, opts ...Option) (*Resolver, error) {
	if cfg == nil {
		return nil, errors.New("resolver: config is required")
	}
	r := &Resolver{
		cddb:   cfg.CDDB,
		device: cfg.Drive.Device,
		toc:    disc.NewDeviceReader(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "resolver")
	if !r.cacheSet && cfg.Cache.Enabled {
		r.cache = xmcdcache.NewCache(cfg.Cache.Dir, r.logger)
	}
	if r.transport == nil {
		r.transport = cddb.NewHTTPTransport(cfg.Timeout(),
			cddb.WithUserAgent(cfg.CDDB.ClientName+"/"+cfg.CDDB.ClientVersion))
	}
	return r, nil
}

// Resolve reads the TOC from device (the configured drive when empty) and
// resolves it.
func (r *Resolver) Resolve(ctx context.Context, device string) (Result, error) {
	device = strings.TrimSpace(device)
	if device == "" {
		device = r.device
	}
	toc, err := r.toc.ReadTOC(ctx, device)
	if err != nil {
		return Result{}, fmt.Errorf("read toc from %s: %w", device, err)
	}
	return r.ResolveTOC(ctx, toc)
}

// ResolveTOC resolves an already read table of contents.
func (r *Resolver) ResolveTOC(ctx context.Context, toc disc.TOC) (Result, error) {
	if err := toc.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid toc: %w", err)
	}

	query := discid.NewQuery(toc)
	result := Result{
		DiscID:        query.ID,
		Query:         query,
		CorrelationID: uuid.NewString(),
	}
	ctx = logging.WithCorrelationID(ctx, result.CorrelationID)
	logger := logging.WithContext(ctx, r.logger).With(
		logging.String(logging.FieldDiscID, query.ID.String()),
	)
	start := time.Now()

	if r.cache != nil && !r.refresh {
		if rec, ok := r.cache.Lookup(query.ID); ok {
			logger.Info("metadata served from cache", logging.Int("bytes", rec.Len()))
			result.State = StateDone
			result.Record = rec
			result.FromCache = true
			return result, nil
		}
	}

	session, err := cddb.NewSession(cddb.Config{
		Server:     r.cddb.Server,
		ProtoLevel: r.cddb.ProtoLevel,
		Identity: cddb.Identity{
			User:          r.cddb.User,
			Host:          r.cddb.Host,
			ClientName:    r.cddb.ClientName,
			ClientVersion: r.cddb.ClientVersion,
		},
	}, cddb.WithTransport(r.transport), cddb.WithLogger(logger))
	if err != nil {
		return Result{}, err
	}

	if r.cddb.Negotiate {
		if _, err := session.NegotiateProtocolLevel(ctx); err != nil {
			if cddb.IsTransport(err) {
				return Result{}, fmt.Errorf("negotiate protocol level: %w", err)
			}
			logging.WarnWithContext(logger, "protocol negotiation failed; continuing",
				"protocol_negotiation_failed",
				logging.Error(err),
				logging.Int("proto", session.ProtocolLevel()),
				logging.String(logging.FieldErrorHint, "server may not support the stat command"),
				logging.String(logging.FieldImpact, "requests use the configured protocol level"),
			)
		}
	}
	result.ProtoLevel = session.ProtocolLevel()

	outcome, err := session.QueryDisc(ctx, query)
	result.Outcome = outcome
	if err != nil {
		if errors.Is(err, cddb.ErrNoMatch) || errors.Is(err, cddb.ErrNotFound) {
			logger.Info("no matching disc on server",
				logging.Int("code", outcome.Code),
				logging.Int("candidates", len(outcome.Candidates)),
			)
			result.State = StateStopped
			return result, nil
		}
		return Result{}, fmt.Errorf("query disc %s: %w", query.ID, err)
	}

	rec, err := session.ReadMetadata(ctx, outcome.Match.Category, outcome.Match.DiscID)
	if err != nil {
		if errors.Is(err, cddb.ErrNotFound) {
			logger.Info("matched entry not found on server",
				logging.String("category", outcome.Match.Category),
				logging.String("match_id", outcome.Match.DiscID.String()),
			)
			result.State = StateStopped
			return result, nil
		}
		return Result{}, fmt.Errorf("read %s/%s: %w", outcome.Match.Category, outcome.Match.DiscID, err)
	}

	if r.cache != nil {
		if err := r.cache.Store(query.ID, rec); err != nil {
			logging.WarnWithContext(logger, "failed to cache metadata",
				"cache_store_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check permissions of the cache directory"),
				logging.String(logging.FieldImpact, "the disc will be fetched from the server again next time"),
			)
		}
	}

	logger.Info("metadata fetched",
		logging.String("category", rec.Category),
		logging.String("title", outcome.Match.Title),
		logging.Int("bytes", rec.Len()),
		logging.Duration("elapsed", time.Since(start)),
	)
	result.State = StateDone
	result.Record = rec
	return result, nil
}

package cddb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cdmeta/internal/disc/discid"
	"cdmeta/internal/logging"
)

const (
	// DefaultServer is used when Config.Server is empty.
	DefaultServer = "freedb.freedb.org"
	// DefaultProtocolLevel is the level a session starts at and falls back to.
	DefaultProtocolLevel = 1

	maxHostLength = 253
	cgiPath       = "/~cddb/cddb.cgi"
)

// Config is the immutable part of a session.
type Config struct {
	Server     string
	ProtoLevel int
	Identity   Identity
	Timeout    time.Duration
}

// Session issues CDDB commands against one server. A session is not safe for
// concurrent use; build one per resolution.
type Session struct {
	server    string
	hello     string
	level     int
	transport Transport
	logger    *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithTransport overrides the HTTP transport.
func WithTransport(t Transport) Option {
	return func(s *Session) {
		if t != nil {
			s.transport = t
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// NewSession validates cfg and returns a session at cfg.ProtoLevel (or
// DefaultProtocolLevel).
func NewSession(cfg Config, opts ...Option) (*Session, error) {
	server := strings.TrimSpace(cfg.Server)
	if server == "" {
		server = DefaultServer
	}
	if err := validateHost(server); err != nil {
		return nil, err
	}
	level := cfg.ProtoLevel
	if level < 1 {
		level = DefaultProtocolLevel
	}

	s := &Session{
		server: server,
		hello:  cfg.Identity.String(),
		level:  level,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.transport == nil {
		id := cfg.Identity.withDefaults()
		s.transport = NewHTTPTransport(cfg.Timeout, WithUserAgent(id.ClientName+"/"+id.ClientVersion))
	}
	s.logger = logging.NewComponentLogger(s.logger, "cddb")
	return s, nil
}

// Server returns the host commands are sent to.
func (s *Session) Server() string { return s.server }

// ProtocolLevel returns the level sent with every command.
func (s *Session) ProtocolLevel() int { return s.level }

// NegotiateProtocolLevel sends "stat" and adopts the server's maximum level.
// On any failure the current level is kept; the caller decides whether the
// error matters. Transport errors are reported as *TransportError.
func (s *Session) NegotiateProtocolLevel(ctx context.Context) (int, error) {
	r, err := s.do(ctx, "stat", "stat")
	if err != nil {
		return s.level, err
	}
	level, err := parseStat(r)
	if err != nil {
		return s.level, err
	}
	s.logger.Debug("protocol level negotiated",
		logging.Int("previous", s.level),
		logging.Int("level", level),
	)
	s.level = level
	return level, nil
}

// QueryDisc sends "cddb query" for q. A 202 or 211 reply returns
// ErrNoMatch; for 211 the outcome still lists the inexact candidates.
func (s *Session) QueryDisc(ctx context.Context, q discid.Query) (QueryOutcome, error) {
	if q.TrackCount < 1 || q.TrackCount != len(q.Offsets) {
		return QueryOutcome{}, fmt.Errorf("cddb query: %d offsets for %d tracks", len(q.Offsets), q.TrackCount)
	}
	parts := make([]string, 0, len(q.Offsets)+5)
	parts = append(parts, "cddb", "query", q.ID.String(), strconv.Itoa(q.TrackCount))
	for _, off := range q.Offsets {
		parts = append(parts, strconv.Itoa(off))
	}
	parts = append(parts, strconv.Itoa(q.TotalSeconds))

	r, err := s.do(ctx, "query", strings.Join(parts, "+"))
	if err != nil {
		return QueryOutcome{}, err
	}
	out, err := parseQuery(r)
	if err != nil {
		return out, err
	}
	s.logger.Debug("query matched",
		logging.Int("code", out.Code),
		logging.String("category", out.Match.Category),
		logging.String(logging.FieldDiscID, out.Match.DiscID.String()),
	)
	return out, nil
}

// ReadMetadata sends "cddb read" and returns the xmcd block. A missing entry
// is ErrNotFound.
func (s *Session) ReadMetadata(ctx context.Context, category string, id discid.ID) (Record, error) {
	category, err := normalizeCategory(category)
	if err != nil {
		return Record{}, err
	}
	r, err := s.do(ctx, "read", "cddb+read+"+category+"+"+id.String())
	if err != nil {
		return Record{}, err
	}
	return parseRead(r)
}

// Sites sends "sites" and returns the server's mirror list.
func (s *Session) Sites(ctx context.Context) ([]Site, error) {
	r, err := s.do(ctx, "sites", "sites")
	if err != nil {
		return nil, err
	}
	return parseSites(r)
}

func (s *Session) do(ctx context.Context, name, command string) (reply, error) {
	target := s.buildURL(command)
	s.logger.Debug("cddb request",
		logging.String("command", name),
		logging.Int("proto", s.level),
	)
	resp, err := s.transport.Get(ctx, target)
	if err != nil {
		return reply{}, &TransportError{Command: name, Err: err}
	}
	if resp == nil {
		return reply{}, &TransportError{Command: name, Err: errors.New("empty response")}
	}
	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusBadRequest:
		return reply{}, ErrNotFound
	default:
		return reply{}, &ServerError{
			Code: resp.StatusCode,
			Text: http.StatusText(resp.StatusCode),
			HTTP: true,
		}
	}
	return parseReply(name, resp.Body)
}

// buildURL joins the command with "+" literally; url.Values would escape it.
func (s *Session) buildURL(command string) string {
	return fmt.Sprintf("http://%s%s?cmd=%s&hello=%s&proto=%d", s.server, cgiPath, command, s.hello, s.level)
}

func validateHost(host string) error {
	if len(host) > maxHostLength {
		return fmt.Errorf("cddb server %q: longer than %d characters", truncate(host, 40), maxHostLength)
	}
	if strings.Contains(host, "://") {
		return fmt.Errorf("cddb server %q: want a host name, not a URL", host)
	}
	if strings.ContainsAny(host, "/?#@ \t\r\n") {
		return fmt.Errorf("cddb server %q: contains reserved characters", host)
	}
	return nil
}

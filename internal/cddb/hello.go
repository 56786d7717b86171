package cddb

import (
	"os"
	"strings"
)

const maxIdentityToken = 64

// Identity is the hello parameter: who is asking and with what client.
type Identity struct {
	User          string
	Host          string
	ClientName    string
	ClientVersion string
}

// DefaultIdentity fills User from $LOGNAME (then $USER) and Host from the
// machine host name, falling back to "anonymous" and "localhost".
func DefaultIdentity(clientName, clientVersion string) Identity {
	return Identity{ClientName: clientName, ClientVersion: clientVersion}.withDefaults()
}

func (id Identity) withDefaults() Identity {
	if strings.TrimSpace(id.User) == "" {
		id.User = firstEnv("LOGNAME", "USER")
	}
	if strings.TrimSpace(id.User) == "" {
		id.User = "anonymous"
	}
	if strings.TrimSpace(id.Host) == "" {
		if host, err := os.Hostname(); err == nil {
			id.Host = host
		}
	}
	if strings.TrimSpace(id.Host) == "" {
		id.Host = "localhost"
	}
	if strings.TrimSpace(id.ClientName) == "" {
		id.ClientName = "cdmeta"
	}
	if strings.TrimSpace(id.ClientVersion) == "" {
		id.ClientVersion = "0.1"
	}
	return id
}

// String renders the identity as the hello value user+host+client+version.
// Each token is restricted to characters that survive the query string
// unescaped.
func (id Identity) String() string {
	id = id.withDefaults()
	return strings.Join([]string{
		sanitizeToken(id.User),
		sanitizeToken(id.Host),
		sanitizeToken(id.ClientName),
		sanitizeToken(id.ClientVersion),
	}, "+")
}

func sanitizeToken(value string) string {
	value = strings.TrimSpace(value)
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if b.Len() >= maxIdentityToken {
			break
		}
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "unknown"
	}
	return b.String()
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			return value
		}
	}
	return ""
}

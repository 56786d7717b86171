package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"cdmeta/internal/cddb"
	"cdmeta/internal/config"
)

const serverCheckTimeout = 10 * time.Second

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckCacheDirectory is CheckDirectoryAccess for a directory the cache
// creates on first use: a missing directory passes when its nearest existing
// parent is writable.
func CheckCacheDirectory(name, path string) Result {
	if _, err := os.Stat(path); err == nil || !os.IsNotExist(err) {
		return CheckDirectoryAccess(name, path)
	}
	parent := filepath.Dir(path)
	for {
		if _, err := os.Stat(parent); err == nil {
			break
		}
		next := filepath.Dir(parent)
		if next == parent {
			break
		}
		parent = next
	}
	if err := unix.Access(parent, unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, parent, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (created on first lookup)", path)}
}

// CheckDevice verifies the optical drive node exists and is readable.
func CheckDevice(name, device string) Result {
	if device == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(device)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", device)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", device, err)}
	}
	if info.Mode()&os.ModeDevice == 0 {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not a device node)", device)}
	}
	if err := unix.Access(device, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v; add your user to the cdrom group)", device, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (readable)", device)}
}

// CheckServer sends "stat" to the configured server with a single attempt.
func CheckServer(ctx context.Context, cfg *config.Config, transport cddb.Transport) Result {
	name := "CDDB server"
	checkCtx, cancel := context.WithTimeout(ctx, serverCheckTimeout)
	defer cancel()

	opts := []cddb.Option{}
	if transport != nil {
		opts = append(opts, cddb.WithTransport(transport))
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
		Timeout: serverCheckTimeout,
	}, opts...)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}

	level, err := session.NegotiateProtocolLevel(checkCtx)
	if err != nil {
		if cddb.IsTransport(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: %s)", session.Server(), summarizeTransportError(err))}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (reachable; stat unsupported: %v)", session.Server(), err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (protocol level %d)", session.Server(), level)}
}

func summarizeTransportError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timed out (server unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timed out (server unreachable)"
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return fmt.Sprintf("cannot resolve %s", dnsErr.Name)
	}
	return err.Error()
}

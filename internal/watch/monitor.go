package watch

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"cdmeta/internal/logging"
)

// DefaultDebounce is the window in which repeated events for one device are
// treated as a single insertion.
const DefaultDebounce = 3 * time.Second

// ErrUnsupported is returned by Start on platforms without udev.
var ErrUnsupported = errors.New("disc insert monitoring requires linux udev")

// Handler is called with the device node of a newly inserted disc.
type Handler func(ctx context.Context, device string) error

// Monitor dispatches disc-insert events for one drive to a Handler.
// Events are handled one at a time in arrival order.
type Monitor struct {
	device   string
	handler  Handler
	logger   *slog.Logger
	debounce time.Duration
	now      func() time.Time

	mu       sync.Mutex
	running  bool
	stop     func()
	lastSeen time.Time
}

// New returns a monitor for device. It returns nil when device is empty.
func New(device string, handler Handler, logger *slog.Logger) *Monitor {
	device = strings.TrimSpace(device)
	if device == "" {
		return nil
	}
	return &Monitor{
		device:   device,
		handler:  handler,
		logger:   logging.NewComponentLogger(logger, "watch"),
		debounce: DefaultDebounce,
		now:      time.Now,
	}
}

// Device returns the watched drive.
func (m *Monitor) Device() string {
	if m == nil {
		return ""
	}
	return m.device
}

// Running reports whether the monitor is listening.
func (m *Monitor) Running() bool {
	if m == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Stop shuts the monitor down. Safe on a nil or stopped monitor.
func (m *Monitor) Stop() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	if m.stop != nil {
		m.stop()
		m.stop = nil
	}
	m.running = false
	m.logger.Info("disc monitor stopped",
		logging.String(logging.FieldEventType, "watch_stopped"),
	)
}

// Run starts the monitor and blocks until ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	if m == nil {
		return errors.New("watch: no device configured")
	}
	if err := m.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	m.Stop()
	return nil
}

// dispatch handles one matched event for devname.
func (m *Monitor) dispatch(ctx context.Context, devname, action string) {
	if devname == "" {
		m.logger.Debug("ignoring event without device name", logging.String("action", action))
		return
	}
	if devname != m.device {
		m.logger.Debug("ignoring event for other device",
			logging.String(logging.FieldDevice, devname),
			logging.String("configured_device", m.device),
		)
		return
	}

	now := m.now()
	m.mu.Lock()
	if !m.lastSeen.IsZero() && now.Sub(m.lastSeen) < m.debounce {
		m.mu.Unlock()
		m.logger.Debug("ignoring repeated event", logging.String("action", action))
		return
	}
	m.lastSeen = now
	m.mu.Unlock()

	m.logger.Info("audio disc detected",
		logging.String(logging.FieldEventType, "watch_disc_detected"),
		logging.String(logging.FieldDevice, devname),
		logging.String("action", action),
	)
	if m.handler == nil {
		return
	}
	if err := m.handler(ctx, devname); err != nil {
		logging.ErrorWithContext(m.logger, "disc handler failed", "watch_handler_failed",
			logging.Error(err),
			logging.String(logging.FieldDevice, devname),
			logging.String(logging.FieldErrorHint, "run cdmeta lookup to retry"),
		)
	}
}

// deviceName picks the device node from a uevent environment, falling back
// to the last DEVPATH element.
func deviceName(env map[string]string) string {
	if devname := env["DEVNAME"]; devname != "" {
		if !strings.HasPrefix(devname, "/") {
			return "/dev/" + devname
		}
		return devname
	}
	devpath := env["DEVPATH"]
	if devpath == "" {
		return ""
	}
	parts := strings.Split(strings.TrimRight(devpath, "/"), "/")
	return "/dev/" + parts[len(parts)-1]
}

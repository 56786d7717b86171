//go:build linux

package watch

import (
	"context"
	"fmt"

	"github.com/pilebones/go-udev/netlink"

	"cdmeta/internal/logging"
)

// Start connects to the kernel udev netlink socket and begins dispatching
// events in the background.
func (m *Monitor) Start(ctx context.Context) error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return nil
	}

	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		return fmt.Errorf("connect udev netlink socket: %w", err)
	}

	queue := make(chan netlink.UEvent)
	errs := make(chan error)
	monitorQuit := conn.Monitor(queue, errs, audioDiscMatcher())
	quit := make(chan struct{})

	m.stop = func() {
		close(quit)
		_ = conn.Close()
	}
	m.running = true

	go m.loop(ctx, quit, monitorQuit, queue, errs)

	m.logger.Info("disc monitor started",
		logging.String(logging.FieldEventType, "watch_started"),
		logging.String(logging.FieldDevice, m.device),
	)
	return nil
}

func (m *Monitor) loop(ctx context.Context, quit <-chan struct{}, monitorQuit chan struct{}, queue <-chan netlink.UEvent, errs <-chan error) {
	defer close(monitorQuit)
	for {
		select {
		case <-ctx.Done():
			return
		case <-quit:
			return
		case uevent := <-queue:
			m.dispatch(ctx, deviceName(uevent.Env), string(uevent.Action))
		case err := <-errs:
			logging.WarnWithContext(m.logger, "udev monitor error", "watch_monitor_error",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check kernel netlink subsystem"),
				logging.String(logging.FieldImpact, "disc insertions may be missed"),
			)
		}
	}
}

// audioDiscMatcher matches media arriving in an optical drive:
// SUBSYSTEM=block, ID_CDROM=1, ID_CDROM_MEDIA=1 and ID_CDROM_MEDIA_TRACK_COUNT_AUDIO set.
func audioDiscMatcher() netlink.Matcher {
	action := "change|add"
	rules := &netlink.RuleDefinitions{}
	rules.AddRule(netlink.RuleDefinition{
		Action: &action,
		Env: map[string]string{
			"SUBSYSTEM":                       "block",
			"ID_CDROM":                        "1",
			"ID_CDROM_MEDIA":                  "1",
			"ID_CDROM_MEDIA_TRACK_COUNT_AUDIO": "[1-9][0-9]*",
		},
	})
	return rules
}

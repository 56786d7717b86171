package disc

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DriveStatus represents the result of a CDROM_DRIVE_STATUS ioctl call.
type DriveStatus int

const (
	DriveStatusNoInfo   DriveStatus = 0
	DriveStatusNoDisc   DriveStatus = 1
	DriveStatusTrayOpen DriveStatus = 2
	DriveStatusNotReady DriveStatus = 3
	DriveStatusDiscOK   DriveStatus = 4
)

// String returns a human-readable label for the drive status.
func (s DriveStatus) String() string {
	switch s {
	case DriveStatusNoInfo:
		return "no_info"
	case DriveStatusNoDisc:
		return "no_disc"
	case DriveStatusTrayOpen:
		return "tray_open"
	case DriveStatusNotReady:
		return "not_ready"
	case DriveStatusDiscOK:
		return "disc_ok"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// ErrNoDisc is returned when the drive reports an empty or open tray.
var ErrNoDisc = errors.New("no disc in drive")

const (
	readyPolls        = 30
	readyPollInterval = time.Second
)

// WaitForReady polls the drive until it reports DriveStatusDiscOK, the
// context is cancelled, or readyPolls attempts have passed. An empty drive
// or open tray stops the wait early with ErrNoDisc.
func WaitForReady(ctx context.Context, device string) (DriveStatus, error) {
	return waitForReady(ctx, device, CheckDriveStatus, readyPolls, readyPollInterval)
}

func waitForReady(ctx context.Context, device string, check func(string) (DriveStatus, error), polls int, interval time.Duration) (DriveStatus, error) {
	var last DriveStatus
	for i := 0; i < polls; i++ {
		status, err := check(device)
		if err != nil {
			return status, err
		}
		last = status
		switch status {
		case DriveStatusDiscOK:
			return status, nil
		case DriveStatusNoDisc, DriveStatusTrayOpen:
			return status, fmt.Errorf("%s: %w (%s)", device, ErrNoDisc, status)
		}

		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-time.After(interval):
		}
	}
	return last, fmt.Errorf("drive %s not ready after %d polls (last status: %s)", device, polls, last)
}

package disc

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDriveStatusString(t *testing.T) {
	tests := []struct {
		status DriveStatus
		want   string
	}{
		{DriveStatusNoInfo, "no_info"},
		{DriveStatusNoDisc, "no_disc"},
		{DriveStatusTrayOpen, "tray_open"},
		{DriveStatusNotReady, "not_ready"},
		{DriveStatusDiscOK, "disc_ok"},
		{DriveStatus(99), "unknown(99)"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.status.String(); got != tt.want {
				t.Errorf("DriveStatus(%d).String() = %q, want %q", int(tt.status), got, tt.want)
			}
		})
	}
}

func TestCheckDriveStatusEmptyPath(t *testing.T) {
	if _, err := CheckDriveStatus(""); err == nil {
		t.Fatal("expected error for empty device path")
	}
}

func TestCheckDriveStatusInvalidPath(t *testing.T) {
	if _, err := CheckDriveStatus("/dev/nonexistent_device_12345"); err == nil {
		t.Fatal("expected error for nonexistent device")
	}
}

func sequence(statuses ...DriveStatus) func(string) (DriveStatus, error) {
	i := 0
	return func(string) (DriveStatus, error) {
		s := statuses[min(i, len(statuses)-1)]
		i++
		return s, nil
	}
}

func TestWaitForReady(t *testing.T) {
	ctx := context.Background()

	status, err := waitForReady(ctx, "/dev/sr0", sequence(DriveStatusNotReady, DriveStatusNotReady, DriveStatusDiscOK), 5, time.Millisecond)
	if err != nil || status != DriveStatusDiscOK {
		t.Fatalf("status = %s, err = %v", status, err)
	}

	_, err = waitForReady(ctx, "/dev/sr0", sequence(DriveStatusTrayOpen), 5, time.Millisecond)
	if !errors.Is(err, ErrNoDisc) {
		t.Fatalf("tray open: err = %v, want ErrNoDisc", err)
	}

	status, err = waitForReady(ctx, "/dev/sr0", sequence(DriveStatusNotReady), 3, time.Millisecond)
	if err == nil || status != DriveStatusNotReady {
		t.Fatalf("expected timeout error, got status %s err %v", status, err)
	}
}

func TestWaitForReadyCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := waitForReady(ctx, "/dev/sr0", sequence(DriveStatusNotReady), 5, time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

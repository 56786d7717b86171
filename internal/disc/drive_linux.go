//go:build linux

package disc

import (
	"fmt"
	"strings"

	"golang.org/x/sys/unix"
)

// linux/cdrom.h
const (
	cdromEject       = 0x5309
	cdromDriveStatus = 0x5326
)

// CheckDriveStatus queries the drive state using the CDROM_DRIVE_STATUS ioctl.
func CheckDriveStatus(device string) (DriveStatus, error) {
	device = strings.TrimSpace(device)
	if device == "" {
		return DriveStatusNoInfo, fmt.Errorf("empty device path")
	}

	fd, err := unix.Open(device, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return DriveStatusNoInfo, fmt.Errorf("open %s: %w", device, err)
	}
	defer unix.Close(fd)

	status, err := unix.IoctlRetInt(fd, cdromDriveStatus)
	if err != nil {
		return DriveStatusNoInfo, fmt.Errorf("ioctl CDROM_DRIVE_STATUS on %s: %w", device, err)
	}
	return DriveStatus(status), nil
}

// Eject opens the drive tray.
func Eject(device string) error {
	device = strings.TrimSpace(device)
	if device == "" {
		return fmt.Errorf("eject: device path required")
	}
	fd, err := unix.Open(device, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", device, err)
	}
	defer unix.Close(fd)

	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), cdromEject, 0); errno != 0 {
		return fmt.Errorf("eject %s: %w", device, errno)
	}
	return nil
}

//go:build linux

package disc

import (
	"context"
	"fmt"
	"strings"
	"unsafe"

	"golang.org/x/sys/unix"
)

// linux/cdrom.h
const (
	cdromReadTOCHeader = 0x5305
	cdromReadTOCEntry  = 0x5306
	cdromMSF           = 0x02
	cdromLeadOut       = 0xAA
)

type cdromTOCHeader struct {
	FirstTrack uint8
	LastTrack  uint8
}

// cdromTOCEntry mirrors struct cdrom_tocentry. The address union is four
// bytes and int aligned; in MSF form the first three bytes are minute,
// second and frame.
type cdromTOCEntry struct {
	Track    uint8
	AdrCtrl  uint8
	Format   uint8
	_        uint8
	Addr     [4]byte
	DataMode uint8
	_        [3]byte
}

// DeviceReader reads the TOC from a Linux CD-ROM device node.
type DeviceReader struct{}

// NewDeviceReader returns the platform TOC reader.
func NewDeviceReader() TOCReader {
	return DeviceReader{}
}

// ReadTOC opens device non-blocking and reads every track entry followed by
// the lead-out.
func (DeviceReader) ReadTOC(ctx context.Context, device string) (TOC, error) {
	device = strings.TrimSpace(device)
	if device == "" {
		return TOC{}, fmt.Errorf("read toc: device path required")
	}
	if err := ctx.Err(); err != nil {
		return TOC{}, err
	}

	fd, err := unix.Open(device, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return TOC{}, fmt.Errorf("open %s: %w", device, err)
	}
	defer unix.Close(fd)

	if status, err := unix.IoctlRetInt(fd, cdromDriveStatus); err == nil {
		switch DriveStatus(status) {
		case DriveStatusNoDisc, DriveStatusTrayOpen:
			return TOC{}, fmt.Errorf("%s: %w (%s)", device, ErrNoDisc, DriveStatus(status))
		}
	}

	var hdr cdromTOCHeader
	if err := ioctl(fd, cdromReadTOCHeader, unsafe.Pointer(&hdr)); err != nil {
		return TOC{}, fmt.Errorf("read toc header from %s: %w", device, err)
	}
	if hdr.FirstTrack == 0 || hdr.LastTrack < hdr.FirstTrack {
		return TOC{}, fmt.Errorf("read toc header from %s: invalid track range %d-%d", device, hdr.FirstTrack, hdr.LastTrack)
	}

	toc := TOC{Tracks: make([]TrackOffset, 0, int(hdr.LastTrack-hdr.FirstTrack)+1)}
	for track := int(hdr.FirstTrack); track <= int(hdr.LastTrack); track++ {
		off, err := readEntry(fd, uint8(track))
		if err != nil {
			return TOC{}, fmt.Errorf("read toc entry %d from %s: %w", track, device, err)
		}
		toc.Tracks = append(toc.Tracks, off)
	}
	leadOut, err := readEntry(fd, cdromLeadOut)
	if err != nil {
		return TOC{}, fmt.Errorf("read lead-out from %s: %w", device, err)
	}
	toc.LeadOut = leadOut
	return toc, nil
}

func readEntry(fd int, track uint8) (TrackOffset, error) {
	entry := cdromTOCEntry{Track: track, Format: cdromMSF}
	if err := ioctl(fd, cdromReadTOCEntry, unsafe.Pointer(&entry)); err != nil {
		return TrackOffset{}, err
	}
	return TrackOffset{
		Minute: int(entry.Addr[0]),
		Second: int(entry.Addr[1]),
		Frame:  int(entry.Addr[2]),
	}, nil
}

func ioctl(fd int, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

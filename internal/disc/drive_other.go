//go:build !linux

package disc

// CheckDriveStatus always returns ErrUnsupported.
func CheckDriveStatus(string) (DriveStatus, error) {
	return DriveStatusNoInfo, ErrUnsupported
}

// Eject always returns ErrUnsupported.
func Eject(string) error {
	return ErrUnsupported
}

// Package watch listens for udev media-change events on an optical drive and
// hands the device to a handler each time an audio disc is inserted.
package watch

package disc

import (
	"context"
	"errors"
	"fmt"
)

// FramesPerSecond is the number of CD frames (sectors) in one second of audio.
const FramesPerSecond = 75

// MaxTracks is the highest track number a Redbook disc can carry.
const MaxTracks = 99

// ErrUnsupported is returned by TOC readers on platforms without a CD-ROM
// ioctl implementation.
var ErrUnsupported = errors.New("reading a disc table of contents is not supported on this platform")

// TrackOffset is a position on the disc in minute/second/frame form.
type TrackOffset struct {
	Minute int `json:"minute"`
	Second int `json:"second"`
	Frame  int `json:"frame"`
}

// Frames returns the absolute frame count of the offset.
func (o TrackOffset) Frames() int {
	return o.Frame + o.Minute*60*FramesPerSecond + o.Second*FramesPerSecond
}

// Seconds returns the whole-second position, ignoring the frame remainder.
func (o TrackOffset) Seconds() int {
	return o.Minute*60 + o.Second
}

// OffsetFromFrames converts an absolute frame count into MSF form.
func OffsetFromFrames(frames int) TrackOffset {
	return TrackOffset{
		Minute: frames / (60 * FramesPerSecond),
		Second: (frames / FramesPerSecond) % 60,
		Frame:  frames % FramesPerSecond,
	}
}

// TOC is the table of contents of an audio disc: the start of every track in
// order plus the lead-out position.
type TOC struct {
	Tracks  []TrackOffset `json:"tracks"`
	LeadOut TrackOffset   `json:"lead_out"`
}

// TrackCount returns the number of real tracks.
func (t TOC) TrackCount() int {
	return len(t.Tracks)
}

// Offsets returns the track offsets followed by the lead-out entry. The
// returned slice is a copy.
func (t TOC) Offsets() []TrackOffset {
	out := make([]TrackOffset, 0, len(t.Tracks)+1)
	out = append(out, t.Tracks...)
	return append(out, t.LeadOut)
}

// Validate reports whether the TOC has at least one track, no more than
// MaxTracks, and strictly increasing offsets ending at the lead-out.
func (t TOC) Validate() error {
	if len(t.Tracks) == 0 {
		return errors.New("toc has no tracks")
	}
	if len(t.Tracks) > MaxTracks {
		return fmt.Errorf("toc has %d tracks (max %d)", len(t.Tracks), MaxTracks)
	}
	prev := -1
	for i, off := range t.Offsets() {
		if off.Minute < 0 || off.Second < 0 || off.Second >= 60 || off.Frame < 0 || off.Frame >= FramesPerSecond {
			return fmt.Errorf("toc entry %d has invalid msf %02d:%02d:%02d", i+1, off.Minute, off.Second, off.Frame)
		}
		frames := off.Frames()
		if frames <= prev {
			return fmt.Errorf("toc entry %d at frame %d does not follow frame %d", i+1, frames, prev)
		}
		prev = frames
	}
	return nil
}

// FromFrames builds a TOC from absolute frame offsets. The last value is the
// lead-out; at least two values are required.
func FromFrames(frames []int) (TOC, error) {
	if len(frames) < 2 {
		return TOC{}, errors.New("need at least one track offset and a lead-out offset")
	}
	toc := TOC{Tracks: make([]TrackOffset, 0, len(frames)-1)}
	for _, f := range frames[:len(frames)-1] {
		if f < 0 {
			return TOC{}, fmt.Errorf("negative frame offset %d", f)
		}
		toc.Tracks = append(toc.Tracks, OffsetFromFrames(f))
	}
	toc.LeadOut = OffsetFromFrames(frames[len(frames)-1])
	if err := toc.Validate(); err != nil {
		return TOC{}, err
	}
	return toc, nil
}

// TOCReader reads the table of contents from an optical drive.
type TOCReader interface {
	ReadTOC(ctx context.Context, device string) (TOC, error)
}

// TOCReaderFunc adapts a function to the TOCReader interface.
type TOCReaderFunc func(ctx context.Context, device string) (TOC, error)

// ReadTOC calls f.
func (f TOCReaderFunc) ReadTOC(ctx context.Context, device string) (TOC, error) {
	return f(ctx, device)
}

package disc

import (
	"context"
	"errors"
	"testing"
)

func TestTrackOffsetFrames(t *testing.T) {
	tests := []struct {
		name string
		off  TrackOffset
		want int
	}{
		{"zero", TrackOffset{}, 0},
		{"pregap", TrackOffset{Second: 2}, 150},
		{"mixed", TrackOffset{Minute: 0, Second: 42, Frame: 30}, 3180},
		{"lead-out", TrackOffset{Minute: 4, Second: 10}, 18750},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.off.Frames(); got != tc.want {
				t.Fatalf("Frames() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestOffsetFromFramesRoundTrip(t *testing.T) {
	for _, frames := range []int{0, 150, 3180, 18750, 334799} {
		off := OffsetFromFrames(frames)
		if off.Frames() != frames {
			t.Fatalf("OffsetFromFrames(%d) = %+v, back to %d", frames, off, off.Frames())
		}
		if off.Second >= 60 || off.Frame >= FramesPerSecond {
			t.Fatalf("OffsetFromFrames(%d) not normalized: %+v", frames, off)
		}
	}
}

func TestOffsetsAppendsLeadOut(t *testing.T) {
	toc := TOC{
		Tracks:  []TrackOffset{{Second: 2}, {Second: 42, Frame: 30}},
		LeadOut: TrackOffset{Minute: 4, Second: 10},
	}
	offsets := toc.Offsets()
	if len(offsets) != 3 {
		t.Fatalf("expected 3 offsets, got %d", len(offsets))
	}
	if offsets[2] != toc.LeadOut {
		t.Fatalf("last offset should be lead-out, got %+v", offsets[2])
	}
	offsets[0].Second = 59
	if toc.Tracks[0].Second != 2 {
		t.Fatal("Offsets must return a copy")
	}
}

func TestFromFrames(t *testing.T) {
	toc, err := FromFrames([]int{150, 3180, 18750})
	if err != nil {
		t.Fatalf("FromFrames: %v", err)
	}
	if toc.TrackCount() != 2 {
		t.Fatalf("expected 2 tracks, got %d", toc.TrackCount())
	}
	if toc.Tracks[1] != (TrackOffset{Second: 42, Frame: 30}) {
		t.Fatalf("unexpected second track: %+v", toc.Tracks[1])
	}
	if toc.LeadOut != (TrackOffset{Minute: 4, Second: 10}) {
		t.Fatalf("unexpected lead-out: %+v", toc.LeadOut)
	}
}

func TestFromFramesRejectsBadInput(t *testing.T) {
	cases := map[string][]int{
		"too short":   {150},
		"negative":    {-1, 200},
		"not ordered": {3000, 150, 18750},
		"equal":       {150, 150},
	}
	for name, frames := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := FromFrames(frames); err == nil {
				t.Fatalf("expected error for %v", frames)
			}
		})
	}
}

func TestValidateRejectsEmptyTOC(t *testing.T) {
	if err := (TOC{LeadOut: TrackOffset{Minute: 1}}).Validate(); err == nil {
		t.Fatal("expected error for toc without tracks")
	}
}

func TestTOCReaderFunc(t *testing.T) {
	want := errors.New("boom")
	var reader TOCReader = TOCReaderFunc(func(ctx context.Context, device string) (TOC, error) {
		if device != "/dev/sr0" {
			t.Fatalf("unexpected device %q", device)
		}
		return TOC{}, want
	})
	if _, err := reader.ReadTOC(context.Background(), "/dev/sr0"); !errors.Is(err, want) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cdmeta/internal/disc"
)

// tocFlags selects where a command gets its table of contents from.
type tocFlags struct {
	device string
	frames string
}

func (f *tocFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.device, "device", "d", "", "Optical drive to read (defaults to drive.device)")
	cmd.Flags().StringVar(&f.frames, "frames", "", "Comma separated track frame offsets followed by the lead-out, instead of reading a drive")
	cmd.MarkFlagsMutuallyExclusive("device", "frames")
}

func (f *tocFlags) hasFrames() bool {
	return strings.TrimSpace(f.frames) != ""
}

func (f *tocFlags) read(ctx context.Context, defaultDevice string) (disc.TOC, error) {
	if f.hasFrames() {
		return parseFrames(f.frames)
	}
	device := strings.TrimSpace(f.device)
	if device == "" {
		device = defaultDevice
	}
	toc, err := disc.NewDeviceReader().ReadTOC(ctx, device)
	if err != nil {
		return disc.TOC{}, fmt.Errorf("read toc from %s: %w", device, err)
	}
	return toc, nil
}

func parseFrames(value string) (disc.TOC, error) {
	parts := strings.Split(value, ",")
	frames := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return disc.TOC{}, fmt.Errorf("invalid frame offset %q", part)
		}
		frames = append(frames, n)
	}
	toc, err := disc.FromFrames(frames)
	if err != nil {
		return disc.TOC{}, fmt.Errorf("--frames: %w", err)
	}
	return toc, nil
}

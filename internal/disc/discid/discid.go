package discid

import (
	"fmt"
	"strconv"
	"strings"

	"cdmeta/internal/disc"
)

// ID is a 32-bit freedb disc identifier.
type ID uint32

// String renders the id as 8 lowercase hex digits, the form used in cache
// file names and protocol commands.
func (id ID) String() string {
	return fmt.Sprintf("%08x", uint32(id))
}

// TrackCount returns the low byte of the id.
func (id ID) TrackCount() int {
	return int(id & 0xff)
}

// Parse reads an id written as up to 8 hex digits, with or without a 0x
// prefix.
func Parse(value string) (ID, error) {
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(strings.TrimPrefix(value, "0x"), "0X")
	if value == "" || len(value) > 8 {
		return 0, fmt.Errorf("disc id %q: want 1-8 hex digits", value)
	}
	n, err := strconv.ParseUint(value, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("disc id %q: %w", value, err)
	}
	return ID(n), nil
}

// Compute derives the disc id from offsets, which must hold every track
// start followed by the lead-out. Callers must pass at least one track plus
// the lead-out; shorter input yields 0.
func Compute(offsets []disc.TrackOffset) ID {
	if len(offsets) < 2 {
		return 0
	}
	tracks := offsets[:len(offsets)-1]
	leadOut := offsets[len(offsets)-1]

	sum := 0
	for _, off := range tracks {
		sum += digitSum(off.Seconds())
	}
	playTime := leadOut.Seconds() - tracks[0].Seconds()

	// freedb reduces the checksum modulo 255, not 256.
	return ID(uint32(sum%0xff)<<24 | uint32(playTime)<<8 | uint32(len(tracks)))
}

// FromTOC is Compute over toc.Offsets().
func FromTOC(toc disc.TOC) ID {
	return Compute(toc.Offsets())
}

func digitSum(n int) int {
	sum := 0
	for n > 0 {
		sum += n % 10
		n /= 10
	}
	return sum
}

// Query holds the parameters of a "cddb query" command.
type Query struct {
	ID           ID    `json:"disc_id"`
	TrackCount   int   `json:"track_count"`
	Offsets      []int `json:"offsets"`
	TotalSeconds int   `json:"total_seconds"`
}

// NewQuery derives the query parameters for toc. Offsets are absolute frame
// counts per track; TotalSeconds is the lead-out position in whole seconds.
func NewQuery(toc disc.TOC) Query {
	offsets := make([]int, 0, len(toc.Tracks))
	for _, off := range toc.Tracks {
		offsets = append(offsets, off.Frames())
	}
	return Query{
		ID:           FromTOC(toc),
		TrackCount:   len(toc.Tracks),
		Offsets:      offsets,
		TotalSeconds: toc.LeadOut.Frames() / disc.FramesPerSecond,
	}
}

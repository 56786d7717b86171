// Package disc models the table of contents of an audio CD and reads it from
// an optical drive.
//
// Offsets are kept in the minute/second/frame form the drive reports, with
// helpers to convert to absolute frame counts (75 per second). The Linux
// reader issues CDROMREADTOCHDR and CDROMREADTOCENTRY ioctls; other platforms
// report ErrUnsupported so callers can fall back to a TOC supplied by hand.
package disc

// Package discid computes the freedb disc identifier from a table of
// contents.
//
// The identifier packs a digit-sum checksum of the track start times, the
// total play time in seconds and the track count into 32 bits. It is the key
// for both the remote query and the local metadata cache. Different discs may
// share an identifier; the protocol accepts that.
package discid

// Package resolver turns an audio disc into its freedb metadata record.
//
// A resolution reads the table of contents, derives the disc id, and checks
// the local xmcd cache. On a miss it opens a fresh CDDB session, negotiates
// the protocol level, queries the server, reads the matched entry and stores
// it in the cache before returning. Every resolution carries its own
// correlation id in the log output.
package resolver

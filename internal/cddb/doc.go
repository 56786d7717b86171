// Package cddb speaks the freedb/CDDB protocol over HTTP.
//
// A Session issues the stat, query, read and sites commands as single GET
// requests against http://<server>/~cddb/cddb.cgi, carrying the hello
// identity and the negotiated protocol level. Replies are split into a status
// line and data lines ending at a lone ".", then interpreted per command:
//
//	stat   210 -> max protocol level
//	query  200 exact match, 210 exact matches (first wins), 202 no match,
//	       211 inexact matches (not followed)
//	read   210 -> raw xmcd block, 400 not found
//	sites  210 -> mirror list, 401 none available
//
// Failures are typed: *TransportError when the server cannot be reached or
// the HTTP exchange breaks, *ServerError for unexpected status codes,
// *ParseError when a reply does not match the grammar. ErrNoMatch and
// ErrNotFound are valid empty outcomes rather than faults.
//
// The package never touches the local cache; callers decide what to persist.
package cddb

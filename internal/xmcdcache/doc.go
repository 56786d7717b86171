// Package xmcdcache stores raw xmcd records fetched from a CDDB server so a
// disc seen before resolves without the network.
//
// # Storage
//
// Every record lives in its own file under the cache directory (default
// ~/.cddb), named by the disc id as eight lowercase hex digits with no
// extension. The file holds the xmcd block exactly as the server sent it, so
// the directory can be shared with other freedb clients.
//
// Writes go to a temporary file that is renamed into place while an advisory
// lock on <dir>/.lock is held; readers never observe a partial record.
//
// CLI commands for inspection and management:
//
//	cdmeta cache list
//	cdmeta cache show <disc-id>
//	cdmeta cache remove <disc-id>
//	cdmeta cache clear
package xmcdcache

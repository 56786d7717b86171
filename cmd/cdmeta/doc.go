// Command cdmeta identifies audio CDs against a CDDB/freedb server and keeps
// the returned xmcd records in a local cache.
package main

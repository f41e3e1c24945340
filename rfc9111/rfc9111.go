// Package rfc9111 holds the wire format of the response header fields
// defined by RFC 9111 (HTTP Caching) that an origin server generates
// for downstream caches: Cache-Control, Expires and Pragma.
//
// Sections of the RFC are quoted where the code implements them.
package rfc9111

import "net/http"

// Header field names.
const (
	HeaderCacheControl = "Cache-Control"
	HeaderExpires      = "Expires"
	HeaderPragma       = "Pragma"
	HeaderVary         = "Vary"
)

// HasCacheControl reports whether the header already carries a
// Cache-Control field line, even an empty one.
func HasCacheControl(header http.Header) bool {
	return len(header.Values(HeaderCacheControl)) > 0
}

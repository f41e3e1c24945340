package rfc9111

// §  5.4.  Pragma
// §
// §     The "Pragma" request header field was defined for HTTP/1.0 caches, so
// §     that clients could specify a "no-cache" request (as Cache-Control was
// §     not defined until HTTP/1.1).
// §
// §        |  *Note:* Because the meaning of "Pragma: no-cache" in responses
// §        |  was never specified, it does not provide a reliable replacement
// §        |  for "Cache-Control: no-cache" in them.

// PragmaNoCache is still sent alongside no-cache to HTTP/1.0 peers.
const PragmaNoCache = "no-cache"

// NeedsPragma reports whether a response with the given protocol version
// goes to an HTTP/1.0 recipient. Only exactly 1.0 qualifies.
func NeedsPragma(protoMajor, protoMinor int) bool {
	return protoMajor == 1 && protoMinor == 0
}

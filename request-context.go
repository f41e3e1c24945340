package recollect

import (
	"net/http"
	"strings"
)

// RequestContext is the per-request input resolved before the engine runs.
type RequestContext struct {
	// The caller's identity was authenticated upstream.
	Authenticated bool
	// The request has an Authorization header with a scheme or a parameter.
	AuthorizationPresent bool
}

// NewRequestContext resolves the context for r. A nil authenticated func
// treats every caller as anonymous.
func NewRequestContext(r *http.Request, authenticated func(*http.Request) bool) RequestContext {
	rc := RequestContext{
		AuthorizationPresent: AuthorizationPresent(r.Header),
	}
	if authenticated != nil {
		rc.Authenticated = authenticated(r)
	}
	return rc
}

// AuthorizationPresent reports whether the Authorization header has a
// non-empty scheme or parameter. A missing or blank header is absent.
func AuthorizationPresent(header http.Header) bool {
	scheme, parameter, _ := strings.Cut(strings.TrimSpace(header.Get("Authorization")), " ")
	return scheme != "" || strings.TrimSpace(parameter) != ""
}

// ResponseOutcome describes the response the engine decides about.
type ResponseOutcome struct {
	// The status code is 2xx.
	Success bool
	// A Cache-Control header was already set, e.g. by the handler.
	HasCacheControl bool
	ProtoMajor      int
	ProtoMinor      int
	HasBody         bool
}

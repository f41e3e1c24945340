package recollect

import (
	"net/http"
	"strings"
	"time"

	"github.com/always-cache/recollect/rfc9111"
)

// HeaderPlan is the result of one engine decision: the header values to
// merge into a single response. The zero value is the empty plan.
type HeaderPlan struct {
	// Nil if the engine did not act.
	CacheControl *rfc9111.ResponseDirectives
	// Zero if no Expires is generated.
	Expires time.Time
	// Names to merge into the response's Vary list.
	Vary []string
	// "no-cache" for HTTP/1.0 responses, otherwise empty.
	Pragma string
}

// Empty reports whether the plan adds no header at all.
func (p HeaderPlan) Empty() bool {
	return p.CacheControl == nil && p.Expires.IsZero() && len(p.Vary) == 0 && p.Pragma == ""
}

// Public reports whether the plan marks the response public.
func (p HeaderPlan) Public() bool {
	return p.CacheControl != nil && p.CacheControl.Public
}

// Header returns the plan as header field lines.
func (p HeaderPlan) Header() http.Header {
	h := make(http.Header)
	p.ApplyTo(h)
	return h
}

// ApplyTo merges the plan into header. Cache-Control, Expires and Pragma are
// set, Vary names are merged into any Vary list already present, and no
// other field is touched.
func (p HeaderPlan) ApplyTo(header http.Header) {
	if p.CacheControl != nil {
		if value := p.CacheControl.String(); value != "" {
			header.Set(rfc9111.HeaderCacheControl, value)
		}
	}
	if !p.Expires.IsZero() {
		header.Set(rfc9111.HeaderExpires, rfc9111.FormatHttpDate(p.Expires))
	}
	if p.Pragma != "" && !hasToken(header.Values(rfc9111.HeaderPragma), p.Pragma) {
		header.Add(rfc9111.HeaderPragma, p.Pragma)
	}
	if len(p.Vary) > 0 {
		existing := rfc9111.GetListHeader(header, rfc9111.HeaderVary)
		merged := MergeHeaderList(existing, p.Vary...)
		header.Set(rfc9111.HeaderVary, strings.Join(merged, ", "))
	}
}

func hasToken(values []string, token string) bool {
	for _, v := range values {
		for _, t := range strings.Split(v, ",") {
			if strings.EqualFold(strings.TrimSpace(t), token) {
				return true
			}
		}
	}
	return false
}

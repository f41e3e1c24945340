package rfc9111

import (
	"strings"
	"time"
)

// §  5.2.  Cache-Control
// §
// §     The "Cache-Control" header field is used to list directives for caches
// §     along the request/response chain. [...] Cache directives are identified
// §     by a token, to be compared case-insensitively, and have an optional
// §     argument that can use both token and quoted-string syntax.
// §
// §       Cache-Control   = #cache-directive
// §
// §       cache-directive = token [ "=" ( token / quoted-string ) ]

// Response directive names (Section 5.2.2).
const (
	DirectiveMaxAge          = "max-age"
	DirectiveMustRevalidate  = "must-revalidate"
	DirectiveNoCache         = "no-cache"
	DirectiveNoStore         = "no-store"
	DirectiveNoTransform     = "no-transform"
	DirectivePrivate         = "private"
	DirectiveProxyRevalidate = "proxy-revalidate"
	DirectivePublic          = "public"
	DirectiveSMaxAge         = "s-maxage"
)

type CacheControl struct {
	directives map[string]string
}

func (c CacheControl) Get(directive string) (string, bool) {
	val, ok := c.directives[directive]
	return val, ok
}

func (c CacheControl) HasDirective(directive string) bool {
	_, ok := c.Get(directive)
	return ok
}

// Len returns the number of distinct directives.
func (c CacheControl) Len() int {
	return len(c.directives)
}

func (c CacheControl) MaxAge() (time.Duration, bool) {
	return c.getDeltaSeconds(DirectiveMaxAge)
}

func (c CacheControl) SMaxAge() (time.Duration, bool) {
	return c.getDeltaSeconds(DirectiveSMaxAge)
}

// PrivateFields returns the field names listed in the argument of the
// qualified form of the private directive.
func (c CacheControl) PrivateFields() []string {
	arg, ok := c.Get(DirectivePrivate)
	if !ok || arg == "" {
		return nil
	}
	fields := make([]string, 0)
	for _, f := range strings.Split(arg, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

func (c CacheControl) getDeltaSeconds(directive string) (time.Duration, bool) {
	if secondsStr, ok := c.Get(directive); ok && secondsStr != "" {
		return deltaSeconds(secondsStr), true
	}
	return 0, false
}

// ParseCacheControl takes Cache-Control headers as a slice of strings
// and returns an instance of `CacheControl`.
func ParseCacheControl(headers []string) CacheControl {
	m := make(map[string]string)
	// note setting map values like this means last defined directive wins
	for _, header := range headers {
		for _, directive := range splitDirectives(header) {
			name, arg, _ := strings.Cut(directive, "=")
			m[getCacheControlDirectiveName(name)] = getCacheControlDirectiveArgument(arg)
		}
	}
	return CacheControl{m}
}

// splitDirectives splits a field value on the commas that are not inside
// a quoted-string, so that private="a,b" stays one directive.
func splitDirectives(header string) []string {
	directives := make([]string, 0)
	quoted := false
	start := 0
	for i := 0; i < len(header); i++ {
		switch header[i] {
		case '"':
			quoted = !quoted
		case '\\':
			if quoted {
				i++
			}
		case ',':
			if !quoted {
				directives = appendDirective(directives, header[start:i])
				start = i + 1
			}
		}
	}
	return appendDirective(directives, header[start:])
}

func appendDirective(directives []string, directive string) []string {
	if directive = strings.TrimSpace(directive); directive != "" {
		return append(directives, directive)
	}
	return directives
}

func getCacheControlDirectiveName(token string) string {
	// §  [...] to be compared case-insensitively [...]
	return strings.ToLower(strings.TrimSpace(token))
}

func getCacheControlDirectiveArgument(arg string) string {
	// §  [...] argument that can use both token and quoted-string syntax. [...]
	return strings.Trim(strings.TrimSpace(arg), "\"")
}

// ResponseDirectives is the set of response directives an origin server
// generates. A nil MaxAge or SMaxAge leaves that directive out.
type ResponseDirectives struct {
	Public          bool
	Private         []string
	NoCache         bool
	NoStore         bool
	MaxAge          *time.Duration
	SMaxAge         *time.Duration
	NoTransform     bool
	MustRevalidate  bool
	ProxyRevalidate bool
}

// Seconds is a convenience for setting MaxAge and SMaxAge.
func Seconds(n int) *time.Duration {
	d := time.Duration(n) * time.Second
	return &d
}

// §  5.2.2.7.  private
// §
// §     [...] If a qualified private response directive is present, with an
// §     argument that lists one or more field names, then only the listed
// §     header fields are limited to a single user [...]
// §
// §     This directive uses the quoted-string form of the argument syntax.
// §     A sender SHOULD NOT generate the token form (even if quoting appears
// §     not to be needed for single-entry lists).

// String generates the field value. It is empty if no directive is set.
func (d ResponseDirectives) String() string {
	directives := make([]string, 0, 9)
	if d.Public {
		directives = append(directives, DirectivePublic)
	}
	if len(d.Private) > 0 {
		directives = append(directives, DirectivePrivate+`="`+strings.Join(d.Private, ",")+`"`)
	}
	if d.NoCache {
		directives = append(directives, DirectiveNoCache)
	}
	if d.NoStore {
		directives = append(directives, DirectiveNoStore)
	}
	if d.MaxAge != nil {
		directives = append(directives, DirectiveMaxAge+"="+toDeltaSeconds(*d.MaxAge))
	}
	if d.SMaxAge != nil {
		directives = append(directives, DirectiveSMaxAge+"="+toDeltaSeconds(*d.SMaxAge))
	}
	if d.NoTransform {
		directives = append(directives, DirectiveNoTransform)
	}
	if d.MustRevalidate {
		directives = append(directives, DirectiveMustRevalidate)
	}
	if d.ProxyRevalidate {
		directives = append(directives, DirectiveProxyRevalidate)
	}
	return strings.Join(directives, ", ")
}

package recollect

// Policy is the set of caching directives attached to one endpoint.
// It is built once at registration time and only read afterwards, so a
// Policy value is safe to share between concurrent requests.
type Policy struct {
	// The number of seconds the client is allowed to cache the response for.
	// Negative values are treated as zero.
	ClientCacheSeconds int
	// If true, 304 Not Modified responses may carry the same directives as
	// the original response, extending the client's cached copy.
	// See Config.ReapplyOnNotModified.
	ClientCacheExtendedOnNotModified bool
	// Tells caches they must revalidate with the origin once stale.
	MustRevalidate bool
	// Tells caches not to store the response at all.
	NoStore bool
	// Tells caches to revalidate before every reuse, even when fresh.
	NoCache bool
	// Controls if and when shared caches (proxies, CDNs) may store the response.
	PublicCache PublicCacheAllowed
	// The number of seconds a shared cache may store the response for.
	// Negative values are treated as zero.
	SharedCacheSeconds int
	// Intermediaries must not transform the content.
	NoTransform bool
	// Request header names caches must add to their cache key.
	VaryHeaders []string
	// Response header names listed in the qualified private directive.
	PrivateHeaders []string
	// Shared caches must revalidate once stale.
	ProxyRevalidate bool
}

// DefaultPolicy returns the policy used when no option is given:
// must-revalidate set, everything else off or zero.
func DefaultPolicy() Policy {
	return Policy{
		MustRevalidate: true,
		PublicCache:    PublicCacheNever,
	}
}

type PolicyOption func(*Policy)

// NewPolicy builds a policy from DefaultPolicy and the given options.
// Seconds are clamped to zero and header lists are split and deduplicated.
func NewPolicy(opts ...PolicyOption) Policy {
	p := DefaultPolicy()
	for _, opt := range opts {
		opt(&p)
	}
	return p.normalized()
}

// normalized returns a copy that owns its header slices.
func (p Policy) normalized() Policy {
	p.ClientCacheSeconds = clampSeconds(p.ClientCacheSeconds)
	p.SharedCacheSeconds = clampSeconds(p.SharedCacheSeconds)
	p.VaryHeaders = MergeHeaderList(nil, p.VaryHeaders...)
	p.PrivateHeaders = MergeHeaderList(nil, p.PrivateHeaders...)
	return p
}

func clampSeconds(seconds int) int {
	if seconds < 0 {
		return 0
	}
	return seconds
}

func WithClientCacheSeconds(seconds int) PolicyOption {
	return func(p *Policy) { p.ClientCacheSeconds = seconds }
}

func WithClientCacheExtendedOnNotModified(extended bool) PolicyOption {
	return func(p *Policy) { p.ClientCacheExtendedOnNotModified = extended }
}

func WithMustRevalidate(mustRevalidate bool) PolicyOption {
	return func(p *Policy) { p.MustRevalidate = mustRevalidate }
}

func WithNoStore(noStore bool) PolicyOption {
	return func(p *Policy) { p.NoStore = noStore }
}

func WithNoCache(noCache bool) PolicyOption {
	return func(p *Policy) { p.NoCache = noCache }
}

func WithPublicCache(allowed PublicCacheAllowed) PolicyOption {
	return func(p *Policy) { p.PublicCache = allowed }
}

func WithSharedCacheSeconds(seconds int) PolicyOption {
	return func(p *Policy) { p.SharedCacheSeconds = seconds }
}

func WithNoTransform(noTransform bool) PolicyOption {
	return func(p *Policy) { p.NoTransform = noTransform }
}

// WithVaryHeaders adds header names. Each name may itself be a
// comma-separated list, e.g. "accept,accept-encoding".
func WithVaryHeaders(names ...string) PolicyOption {
	return func(p *Policy) { p.VaryHeaders = MergeHeaderList(p.VaryHeaders, names...) }
}

// WithPrivateHeaders adds header names, accepting comma-separated lists
// like WithVaryHeaders.
func WithPrivateHeaders(names ...string) PolicyOption {
	return func(p *Policy) { p.PrivateHeaders = MergeHeaderList(p.PrivateHeaders, names...) }
}

func WithProxyRevalidate(proxyRevalidate bool) PolicyOption {
	return func(p *Policy) { p.ProxyRevalidate = proxyRevalidate }
}

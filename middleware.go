package recollect

import (
	"net/http"
	"time"

	hook "github.com/always-cache/recollect/pkg/response-writer-hook"
	"github.com/always-cache/recollect/rfc9111"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type Config struct {
	// Logger to use. A console logger is used if nil.
	Logger *zerolog.Logger
	// Resolves whether the caller is authenticated. Authentication itself
	// happens upstream; every caller is anonymous if nil.
	Authenticated func(*http.Request) bool
	// Reapply the policy to 304 Not Modified responses when the policy sets
	// ClientCacheExtendedOnNotModified. Off by default.
	ReapplyOnNotModified bool
	// Clock for the Expires header. time.Now if nil.
	Clock func() time.Time
}

// ClientCache adds Cache-Control, Expires, Vary and Pragma headers to
// responses according to endpoint policies.
type ClientCache struct {
	engine               Engine
	log                  zerolog.Logger
	authenticated        func(*http.Request) bool
	reapplyOnNotModified bool
}

// New creates the middleware factory.
func New(config Config) *ClientCache {
	// use console logger if not specified in config
	var logger zerolog.Logger
	if config.Logger == nil {
		logger = zerolog.New(zerolog.NewConsoleWriter())
	} else {
		logger = *config.Logger
	}

	return &ClientCache{
		engine:               NewEngine(config.Clock),
		log:                  logger.With().Str("component", "recollect").Logger(),
		authenticated:        config.Authenticated,
		reapplyOnNotModified: config.ReapplyOnNotModified,
	}
}

// Middleware applies one policy to every response of next.
func (c *ClientCache) Middleware(policy Policy) func(http.Handler) http.Handler {
	policy = policy.normalized()
	return c.middleware(func(*http.Request) (Policy, bool) {
		return policy, true
	})
}

// Handler looks up the policy of each request in registry, by chi route
// pattern if the router is chi and by URL path otherwise. Requests without
// a matching policy pass through unchanged.
func (c *ClientCache) Handler(registry *Registry) func(http.Handler) http.Handler {
	return c.middleware(func(r *http.Request) (Policy, bool) {
		return registry.Lookup(r.Method, routePattern(r), r.URL.Path)
	})
}

// routePattern is only complete once chi has routed the request, which is
// why it is read when the header is written and not on the way in.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}

func (c *ClientCache) middleware(resolve func(*http.Request) (Policy, bool)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hw := hook.NewResponseWriter(w, func(status int, bodyFollows bool) {
				policy, ok := resolve(r)
				if !ok {
					c.log.Trace().Str("path", r.URL.Path).Msg("No cache policy for request")
					return
				}
				c.apply(w.Header(), r, policy, status, bodyFollows)
			})
			next.ServeHTTP(hw, r)
			hw.Finish()
		})
	}
}

// apply runs the engine once for a response and merges the plan into header.
func (c *ClientCache) apply(header http.Header, r *http.Request, policy Policy, status int, bodyFollows bool) {
	log := c.log.With().Str("method", r.Method).Str("path", r.URL.Path).Int("status", status).Logger()

	outcome := ResponseOutcome{
		Success:         status >= 200 && status < 300,
		HasCacheControl: rfc9111.HasCacheControl(header),
		ProtoMajor:      r.ProtoMajor,
		ProtoMinor:      r.ProtoMinor,
		// HEAD gets the headers a GET would get
		HasBody: bodyFollows,
	}
	rc := NewRequestContext(r, c.authenticated)

	var plan HeaderPlan
	var result string
	switch {
	case outcome.HasCacheControl:
		result = ResultSkippedExisting
	case status == http.StatusNotModified && c.reapplyOnNotModified:
		plan = c.engine.PlanNotModified(policy, rc, outcome)
		result = ResultNotModified
		if plan.Empty() {
			result = ResultSkippedStatus
		}
	case !outcome.Success:
		result = ResultSkippedStatus
	default:
		plan = c.engine.Plan(policy, rc, outcome)
		result = ResultApplied
	}
	Decisions.WithLabelValues(result).Inc()

	if result == ResultSkippedExisting {
		logExisting(log.Trace(), header).Msg("Leaving handler's cache headers unchanged")
		return
	}
	if plan.Empty() {
		log.Trace().Str("result", result).Msg("Leaving response headers unchanged")
		return
	}
	if plan.Public() {
		PublicResponses.Inc()
	}
	plan.ApplyTo(header)
	log.Trace().
		Str("result", result).
		Strs("cacheControl", header.Values(rfc9111.HeaderCacheControl)).
		Strs("vary", plan.Vary).
		Msg("Applied cache policy")

	if rc.AuthorizationPresent {
		cc := rfc9111.ParseCacheControl(header.Values(rfc9111.HeaderCacheControl))
		if rfc9111.SharedCacheMayStoreAuthorized(cc) {
			event := log.Debug().Strs("privateFields", cc.PrivateFields())
			if sMaxAge, ok := cc.SMaxAge(); ok {
				event = event.Dur("sMaxAge", sMaxAge)
			}
			event.Msg("Shared caches may store this response to an authorized request")
		}
	}
}

// logExisting adds the freshness the handler chose itself to event.
func logExisting(event *zerolog.Event, header http.Header) *zerolog.Event {
	cc := rfc9111.ParseCacheControl(header.Values(rfc9111.HeaderCacheControl))
	if maxAge, ok := cc.MaxAge(); ok {
		event = event.Dur("maxAge", maxAge)
	}
	if expires, err := rfc9111.GetExpires(header); err == nil {
		event = event.Time("expires", expires)
	}
	return event.Str("result", ResultSkippedExisting)
}

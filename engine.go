package recollect

import (
	"time"

	"github.com/always-cache/recollect/rfc9111"
)

// Engine computes header plans. The zero value uses time.Now for Expires.
// An Engine holds no mutable state and may be shared between goroutines.
type Engine struct {
	now func() time.Time
}

// NewEngine returns an engine reading the time from clock.
// A nil clock means time.Now.
func NewEngine(clock func() time.Time) Engine {
	return Engine{now: clock}
}

func (e Engine) clock() time.Time {
	if e.now == nil {
		return time.Now().UTC()
	}
	return e.now().UTC()
}

// Eligible reports whether the engine acts on a response at all: it must be
// a success and must not already carry Cache-Control. An existing header is
// a decision made elsewhere and is left alone.
func Eligible(outcome ResponseOutcome) bool {
	return outcome.Success && !outcome.HasCacheControl
}

// Plan returns the headers to add to the response. The plan is empty if the
// response is not eligible.
func (e Engine) Plan(policy Policy, rc RequestContext, outcome ResponseOutcome) HeaderPlan {
	if !Eligible(outcome) {
		return HeaderPlan{}
	}
	return e.compute(policy, rc, outcome)
}

// PlanNotModified computes the plan for a 304 Not Modified response whose
// policy extends the client's cached copy. It returns an empty plan unless
// the policy sets ClientCacheExtendedOnNotModified and the response has no
// Cache-Control yet. A 304 never has a body, so Expires is not generated.
func (e Engine) PlanNotModified(policy Policy, rc RequestContext, outcome ResponseOutcome) HeaderPlan {
	if !policy.ClientCacheExtendedOnNotModified || outcome.HasCacheControl {
		return HeaderPlan{}
	}
	outcome.Success = true
	outcome.HasBody = false
	return e.compute(policy, rc, outcome)
}

func (e Engine) compute(policy Policy, rc RequestContext, outcome ResponseOutcome) HeaderPlan {
	cc := &rfc9111.ResponseDirectives{
		NoStore: policy.NoStore,
		NoCache: policy.NoCache,
	}
	plan := HeaderPlan{CacheControl: cc}

	if policy.NoCache && rfc9111.NeedsPragma(outcome.ProtoMajor, outcome.ProtoMinor) {
		plan.Pragma = rfc9111.PragmaNoCache
	}

	// freshness and validation only mean something if storing is allowed
	if !policy.NoCache && !policy.NoStore {
		clientSeconds := clampSeconds(policy.ClientCacheSeconds)
		cc.MaxAge = rfc9111.Seconds(clientSeconds)
		if clientSeconds > 0 && outcome.HasBody {
			plan.Expires = e.clock().Add(*cc.MaxAge).Truncate(time.Second)
		}
		cc.SMaxAge = rfc9111.Seconds(clampSeconds(policy.SharedCacheSeconds))
		cc.NoTransform = policy.NoTransform
		cc.MustRevalidate = policy.MustRevalidate
		cc.ProxyRevalidate = policy.ProxyRevalidate
		cc.Public = policy.PublicCache.Allows(rc)
		if len(policy.PrivateHeaders) > 0 {
			cc.Private = MergeHeaderList(cc.Private, policy.PrivateHeaders...)
		}
	}

	if len(policy.VaryHeaders) > 0 {
		plan.Vary = MergeHeaderList(plan.Vary, policy.VaryHeaders...)
	}
	return plan
}

package recollect

import (
	"net/http"
	"strings"
	"sync"
)

// Rule attaches a policy to the requests it matches. Path matches the
// route pattern (e.g. "/api/product/{id}") or the literal request path.
// Prefix matches the start of the request path. An empty Method matches
// GET and HEAD only.
type Rule struct {
	Path   string
	Prefix string
	Method string
	Policy Policy
}

type Rules []Rule

func (rule Rule) matches(method, pattern, path string) bool {
	if rule.Method == "" && method != http.MethodGet && method != http.MethodHead {
		return false
	}
	if rule.Method != "" && !strings.EqualFold(rule.Method, method) {
		return false
	}
	if rule.Path != "" && rule.Path != pattern && rule.Path != path {
		return false
	}
	if rule.Prefix != "" && !strings.HasPrefix(path, rule.Prefix) {
		return false
	}
	return true
}

// find returns the first matching rule.
func (r Rules) find(method, pattern, path string) *Rule {
	for i := range r {
		if r[i].matches(method, pattern, path) {
			return &r[i]
		}
	}
	return nil
}

// Registry holds the policies of all endpoints, keyed by route. Rules are
// checked in registration order and the first match wins.
//
// Registration normally happens before serving, but Lookup is safe to call
// concurrently with Register.
type Registry struct {
	mu    sync.RWMutex
	rules Rules
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register attaches policy to the route pattern for GET and HEAD requests.
func (reg *Registry) Register(pattern string, policy Policy) {
	reg.RegisterRule(Rule{Path: pattern, Policy: policy})
}

func (reg *Registry) RegisterRule(rule Rule) {
	rule.Policy = rule.Policy.normalized()
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.rules = append(reg.rules, rule)
}

// Lookup returns the policy for a request. pattern may be empty when the
// router does not expose route patterns.
func (reg *Registry) Lookup(method, pattern, path string) (Policy, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	if rule := reg.rules.find(method, pattern, path); rule != nil {
		return rule.Policy, true
	}
	return Policy{}, false
}

// Rules returns a copy of the registered rules.
func (reg *Registry) Rules() Rules {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return append(Rules(nil), reg.rules...)
}

// Len returns the number of registered rules.
func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rules)
}

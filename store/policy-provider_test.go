package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/always-cache/recollect"
)

func newTestStore(t *testing.T) *SQLiteStore {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "policies.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func productRule() recollect.Rule {
	return recollect.Rule{
		Path: "/api/product/{id}",
		Policy: recollect.NewPolicy(
			recollect.WithClientCacheSeconds(60),
			recollect.WithSharedCacheSeconds(60),
			recollect.WithProxyRevalidate(true),
			recollect.WithNoTransform(true),
			recollect.WithPublicCache(recollect.PublicCacheAlways),
			recollect.WithVaryHeaders("accept,accept-encoding,accept-language,accept-charset"),
			recollect.WithPrivateHeaders("X-Custom-ResponseId,X-Custom-RequestId"),
		),
	}
}

func TestPutAndGet(t *testing.T) {
	s := newTestStore(t)
	rule := productRule()
	if err := s.Put(rule); err != nil {
		t.Fatal(err)
	}

	stored, err := s.Get(Key(rule))
	if err != nil {
		t.Fatal(err)
	}
	if stored.Path != rule.Path || stored.Method != "" || stored.Prefix != "" {
		t.Fatalf("Stored rule is %+v", stored)
	}
	p := stored.Policy
	if p.ClientCacheSeconds != 60 || p.SharedCacheSeconds != 60 || !p.MustRevalidate ||
		!p.ProxyRevalidate || !p.NoTransform || p.NoStore || p.NoCache {
		t.Fatalf("Stored policy is %+v", p)
	}
	if p.PublicCache != recollect.PublicCacheAlways {
		t.Fatalf("Public cache is %v", p.PublicCache)
	}
	if len(p.VaryHeaders) != 4 || p.VaryHeaders[3] != "accept-charset" {
		t.Fatalf("Vary headers are %v", p.VaryHeaders)
	}
	if len(p.PrivateHeaders) != 2 || p.PrivateHeaders[0] != "X-Custom-ResponseId" {
		t.Fatalf("Private headers are %v", p.PrivateHeaders)
	}
}

func TestGetMissing(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Get("/nothing"); !errors.Is(err, ErrPolicyNotFound) {
		t.Fatalf("Error is %v", err)
	}
}

func TestPutKeepsPosition(t *testing.T) {
	s := newTestStore(t)
	first := productRule()
	second := recollect.Rule{Prefix: "/api/info", Policy: recollect.NewPolicy(recollect.WithNoCache(true))}
	for _, rule := range []recollect.Rule{first, second} {
		if err := s.Put(rule); err != nil {
			t.Fatal(err)
		}
	}
	// replace the first rule, it must stay first
	first.Policy.ClientCacheSeconds = 120
	if err := s.Put(first); err != nil {
		t.Fatal(err)
	}

	rules, err := s.All()
	if err != nil {
		t.Fatal(err)
	}
	if len(rules) != 2 {
		t.Fatalf("Got %d rules", len(rules))
	}
	if rules[0].Path != first.Path || rules[0].Policy.ClientCacheSeconds != 120 {
		t.Fatalf("First rule is %+v", rules[0])
	}
	if rules[1].Prefix != "/api/info" || !rules[1].Policy.NoCache {
		t.Fatalf("Second rule is %+v", rules[1])
	}
}

func TestPurge(t *testing.T) {
	s := newTestStore(t)
	rule := productRule()
	if err := s.Put(rule); err != nil {
		t.Fatal(err)
	}
	if err := s.Purge(Key(rule)); err != nil {
		t.Fatal(err)
	}
	if rules, err := s.All(); err != nil || len(rules) != 0 {
		t.Fatalf("Rules after purge: %v (%v)", rules, err)
	}
}

func TestLoad(t *testing.T) {
	s := newTestStore(t)
	if err := s.Put(productRule()); err != nil {
		t.Fatal(err)
	}
	reg := recollect.NewRegistry()

	n, err := Load(s, reg)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 || reg.Len() != 1 {
		t.Fatalf("Loaded %d rules, registry has %d", n, reg.Len())
	}
	if p, ok := reg.Lookup("GET", "/api/product/{id}", "/api/product/1"); !ok || p.ClientCacheSeconds != 60 {
		t.Fatalf("Lookup returned %+v, %v", p, ok)
	}
}

func TestKey(t *testing.T) {
	if k := Key(recollect.Rule{Method: "get", Path: "/a"}); k != "GET /a" {
		t.Fatalf("Key is %q", k)
	}
	if k := Key(recollect.Rule{Prefix: "/static/"}); k != "/static/*" {
		t.Fatalf("Key is %q", k)
	}
	if k := Key(recollect.Rule{Path: "/a"}); k != "/a" {
		t.Fatalf("Key is %q", k)
	}
}

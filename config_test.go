package recollect

import (
	"os"
	"path/filepath"
	"testing"
)

const testConfig = `
policies:
  - path: /api/product/{id}
    clientCacheSeconds: 60
    sharedCacheSeconds: 60
    proxyRevalidate: true
    noTransform: true
    publicCache: always
    varyHeaders: accept,accept-encoding,accept-language,accept-charset
    privateHeaders: X-Custom-ResponseId,X-Custom-RequestId
  - path: /api/info/servertime
    noCache: true
    noStore: true
    mustRevalidate: false
  - prefix: /api/
    method: POST
    noStore: true
`

func TestParseConfig(t *testing.T) {
	config, err := ParseConfig([]byte(testConfig))
	if err != nil {
		t.Fatal(err)
	}
	if len(config.Policies) != 3 {
		t.Fatalf("Got %d policies", len(config.Policies))
	}

	product := config.Policies[0].Rule()
	p := product.Policy
	if product.Path != "/api/product/{id}" || p.ClientCacheSeconds != 60 || p.SharedCacheSeconds != 60 {
		t.Fatalf("Product rule is %+v", product)
	}
	if !p.MustRevalidate {
		t.Fatal("mustRevalidate should default to true")
	}
	if p.PublicCache != PublicCacheAlways || !p.ProxyRevalidate || !p.NoTransform {
		t.Fatalf("Product policy is %+v", p)
	}
	if len(p.VaryHeaders) != 4 || len(p.PrivateHeaders) != 2 {
		t.Fatalf("Header lists are %v and %v", p.VaryHeaders, p.PrivateHeaders)
	}

	serverTime := config.Policies[1].Policy()
	if !serverTime.NoCache || !serverTime.NoStore || serverTime.MustRevalidate || serverTime.PublicCache != PublicCacheNever {
		t.Fatalf("Server time policy is %+v", serverTime)
	}

	post := config.Policies[2].Rule()
	if post.Prefix != "/api/" || post.Method != "POST" || !post.Policy.NoStore {
		t.Fatalf("Post rule is %+v", post)
	}
}

func TestParseConfigErrors(t *testing.T) {
	if _, err := ParseConfig([]byte("policies:\n  - publicCache: sometimes\n    path: /")); err == nil {
		t.Fatal("Expected error for unknown publicCache")
	}
	if _, err := ParseConfig([]byte("policies:\n  - noCache: true\n")); err == nil {
		t.Fatal("Expected error for rule without path")
	}
}

func TestLoadConfigAndRegister(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "recollect.yaml")
	if err := os.WriteFile(filename, []byte(testConfig), 0644); err != nil {
		t.Fatal(err)
	}
	config, err := LoadConfig(filename)
	if err != nil {
		t.Fatal(err)
	}
	reg := NewRegistry()
	config.Register(reg)

	if p, ok := reg.Lookup("GET", "/api/product/{id}", "/api/product/1"); !ok || p.ClientCacheSeconds != 60 {
		t.Fatalf("Lookup returned %+v, %v", p, ok)
	}
	if p, ok := reg.Lookup("POST", "", "/api/product/1"); !ok || !p.NoStore {
		t.Fatalf("Lookup returned %+v, %v", p, ok)
	}
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Expected error for missing file")
	}
}

func TestHeaderNamesAcceptListsAndStrings(t *testing.T) {
	config, err := ParseConfig([]byte(`
policies:
  - path: /a
    varyHeaders: [accept, accept-encoding]
    privateHeaders:
      - X-Custom-ResponseId
      - X-Custom-RequestId, X-Other
  - path: /b
    varyHeaders: accept, accept-encoding
`))
	if err != nil {
		t.Fatal(err)
	}
	a := config.Policies[0].Policy()
	if len(a.VaryHeaders) != 2 || a.VaryHeaders[0] != "accept" || a.VaryHeaders[1] != "accept-encoding" {
		t.Fatalf("Vary headers are %v", a.VaryHeaders)
	}
	if len(a.PrivateHeaders) != 3 || a.PrivateHeaders[2] != "X-Other" {
		t.Fatalf("Private headers are %v", a.PrivateHeaders)
	}
	b := config.Policies[1].Policy()
	if len(b.VaryHeaders) != 2 || b.VaryHeaders[1] != "accept-encoding" {
		t.Fatalf("Vary headers are %v", b.VaryHeaders)
	}

	if _, err := ParseConfig([]byte("policies:\n  - path: /\n    varyHeaders: {accept: true}\n")); err == nil {
		t.Fatal("Expected error for mapping")
	}
}

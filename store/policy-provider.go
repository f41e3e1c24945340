package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/always-cache/recollect"

	_ "github.com/glebarez/go-sqlite"
)

var ErrPolicyNotFound = errors.New("policy not found")

// PolicyProvider is a persistent source of endpoint policies.
// Rules are returned in the order they were first stored.
//
// Implementations must be thread-safe!
type PolicyProvider interface {
	// All returns every stored rule.
	All() (recollect.Rules, error)
	// Get returns the rule stored under key (see Key).
	Get(key string) (recollect.Rule, error)
	// Put stores the rule, replacing a rule with the same key but keeping
	// its position.
	Put(rule recollect.Rule) error
	// Purge removes the rule stored under key.
	Purge(key string) error
}

const (
	methodSeparator = " "
	prefixMarker    = "*"
)

// Key identifies a rule by method and route, e.g. "POST /api/product/{id}",
// "/api/product/{id}" when the method is left empty, or "/static/*" for a
// prefix rule.
func Key(rule recollect.Rule) string {
	route := rule.Path
	if rule.Prefix != "" {
		route = strings.TrimSpace(route + methodSeparator + rule.Prefix + prefixMarker)
	}
	return strings.TrimSpace(strings.ToUpper(rule.Method) + methodSeparator + route)
}

// Load registers every stored rule in reg and returns how many there were.
func Load(p PolicyProvider, reg *recollect.Registry) (int, error) {
	rules, err := p.All()
	if err != nil {
		return 0, err
	}
	for _, rule := range rules {
		reg.RegisterRule(rule)
	}
	return len(rules), nil
}

type SQLiteStore struct {
	db         *sql.DB
	writeMutex *sync.Mutex
}

// NewSQLiteStore opens the policy db with the given filename.
// If file name is empty, a new in-memory db is opened.
func NewSQLiteStore(filename string) (*SQLiteStore, error) {
	if filename == "" {
		filename = "file::memory:?cache=shared"
	}
	db, err := sql.Open("sqlite", filename)
	if err != nil {
		return nil, fmt.Errorf("open policy db: %w", err)
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS policies (
		key TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		method TEXT NOT NULL,
		path TEXT NOT NULL,
		prefix TEXT NOT NULL,
		client_cache_seconds INTEGER NOT NULL,
		client_cache_extended_on_not_modified INTEGER NOT NULL,
		must_revalidate INTEGER NOT NULL,
		no_store INTEGER NOT NULL,
		no_cache INTEGER NOT NULL,
		public_cache TEXT NOT NULL,
		shared_cache_seconds INTEGER NOT NULL,
		no_transform INTEGER NOT NULL,
		vary_headers TEXT NOT NULL,
		private_headers TEXT NOT NULL,
		proxy_revalidate INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create policies table: %w", err)
	}
	return &SQLiteStore{
		db:         db,
		writeMutex: &sync.Mutex{},
	}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const selectColumns = `method, path, prefix,
	client_cache_seconds, client_cache_extended_on_not_modified, must_revalidate,
	no_store, no_cache, public_cache, shared_cache_seconds, no_transform,
	vary_headers, private_headers, proxy_revalidate`

type scanner interface {
	Scan(dest ...any) error
}

func scanRule(row scanner) (recollect.Rule, error) {
	var rule recollect.Rule
	var publicCache, vary, private string
	p := &rule.Policy
	err := row.Scan(&rule.Method, &rule.Path, &rule.Prefix,
		&p.ClientCacheSeconds, &p.ClientCacheExtendedOnNotModified, &p.MustRevalidate,
		&p.NoStore, &p.NoCache, &publicCache, &p.SharedCacheSeconds, &p.NoTransform,
		&vary, &private, &p.ProxyRevalidate)
	if err != nil {
		return rule, err
	}
	if err := p.PublicCache.UnmarshalText([]byte(publicCache)); err != nil {
		return rule, err
	}
	p.VaryHeaders = recollect.MergeHeaderList(nil, vary)
	p.PrivateHeaders = recollect.MergeHeaderList(nil, private)
	return rule, nil
}

func (s *SQLiteStore) All() (recollect.Rules, error) {
	rules := make(recollect.Rules, 0)
	rows, err := s.db.Query(`SELECT ` + selectColumns + ` FROM policies ORDER BY position ASC`)
	if err != nil {
		return rules, fmt.Errorf("query policies: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return rules, fmt.Errorf("scan policy: %w", err)
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (s *SQLiteStore) Get(key string) (recollect.Rule, error) {
	row := s.db.QueryRow(`SELECT `+selectColumns+` FROM policies WHERE key = ?`, key)
	rule, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return rule, fmt.Errorf("%w: %s", ErrPolicyNotFound, key)
	}
	if err != nil {
		return rule, fmt.Errorf("get policy %s: %w", key, err)
	}
	return rule, nil
}

func (s *SQLiteStore) Put(rule recollect.Rule) error {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	p := rule.Policy
	publicCache, err := p.PublicCache.MarshalText()
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT INTO policies (key, position, `+selectColumns+`)
		VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM policies), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			method = excluded.method,
			path = excluded.path,
			prefix = excluded.prefix,
			client_cache_seconds = excluded.client_cache_seconds,
			client_cache_extended_on_not_modified = excluded.client_cache_extended_on_not_modified,
			must_revalidate = excluded.must_revalidate,
			no_store = excluded.no_store,
			no_cache = excluded.no_cache,
			public_cache = excluded.public_cache,
			shared_cache_seconds = excluded.shared_cache_seconds,
			no_transform = excluded.no_transform,
			vary_headers = excluded.vary_headers,
			private_headers = excluded.private_headers,
			proxy_revalidate = excluded.proxy_revalidate`,
		Key(rule), rule.Method, rule.Path, rule.Prefix,
		p.ClientCacheSeconds, p.ClientCacheExtendedOnNotModified, p.MustRevalidate,
		p.NoStore, p.NoCache, string(publicCache), p.SharedCacheSeconds, p.NoTransform,
		strings.Join(p.VaryHeaders, ","), strings.Join(p.PrivateHeaders, ","), p.ProxyRevalidate)
	if err != nil {
		return fmt.Errorf("put policy %s: %w", Key(rule), err)
	}
	return nil
}

func (s *SQLiteStore) Purge(key string) error {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	if _, err := s.db.Exec("DELETE FROM policies WHERE key = ?", key); err != nil {
		return fmt.Errorf("purge policy %s: %w", key, err)
	}
	return nil
}

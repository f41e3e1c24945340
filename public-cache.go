package recollect

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownPublicCache = errors.New("unknown public cache setting")

// PublicCacheAllowed determines if and when a response may be marked
// public, i.e. stored by shared caches.
type PublicCacheAllowed int

const (
	// No response is marked public.
	PublicCacheNever PublicCacheAllowed = iota
	// Every response is marked public.
	PublicCacheAlways
	// Only responses to unauthenticated callers are marked public.
	PublicCacheAnonymous
	// Only responses to requests without an Authorization header are marked
	// public. This suits auth schemes that never resolve an identity.
	PublicCacheNoAuthHeader
	// Both Anonymous and NoAuthHeader must hold.
	PublicCacheAnonymousAndNoAuthHeader
)

var publicCacheNames = map[PublicCacheAllowed]string{
	PublicCacheNever:                    "never",
	PublicCacheAlways:                   "always",
	PublicCacheAnonymous:                "anonymous",
	PublicCacheNoAuthHeader:             "no-auth-header",
	PublicCacheAnonymousAndNoAuthHeader: "anonymous-and-no-auth-header",
}

// Allows resolves the public directive for one request. It only reads the
// already resolved request context.
func (a PublicCacheAllowed) Allows(rc RequestContext) bool {
	switch a {
	case PublicCacheNever:
		return false
	case PublicCacheAlways:
		return true
	case PublicCacheAnonymous:
		return !rc.Authenticated
	case PublicCacheNoAuthHeader:
		return !rc.AuthorizationPresent
	case PublicCacheAnonymousAndNoAuthHeader:
		return !rc.Authenticated && !rc.AuthorizationPresent
	default:
		return false
	}
}

func (a PublicCacheAllowed) String() string {
	if name, ok := publicCacheNames[a]; ok {
		return name
	}
	return fmt.Sprintf("PublicCacheAllowed(%d)", int(a))
}

// ParsePublicCacheAllowed accepts the names returned by String, ignoring
// case, dashes and underscores ("NoAuthHeader" and "no_auth_header" both work).
func ParsePublicCacheAllowed(s string) (PublicCacheAllowed, error) {
	wanted := normalizeEnumName(s)
	for a, name := range publicCacheNames {
		if normalizeEnumName(name) == wanted {
			return a, nil
		}
	}
	return PublicCacheNever, fmt.Errorf("%w: %q", ErrUnknownPublicCache, s)
}

func normalizeEnumName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
}

func (a PublicCacheAllowed) MarshalText() ([]byte, error) {
	if _, ok := publicCacheNames[a]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPublicCache, int(a))
	}
	return []byte(a.String()), nil
}

func (a *PublicCacheAllowed) UnmarshalText(text []byte) error {
	parsed, err := ParsePublicCacheAllowed(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

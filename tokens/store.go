// Package tokens implements the client token store: an access/refresh token
// pair plus a last-auth-provider marker, persisted in one of two storage
// areas depending on the caller's remember-me choice.
package tokens

// Storage keys. Each lives in exactly one of the two areas at a time for a
// given login session, though a stale copy may linger in the other area
// until cleared.
const (
	KeyAccessToken  = "auth_token"
	KeyRefreshToken = "refresh_token"
	KeyAuthProvider = "last_auth_provider"
)

// Auth provider markers recorded at login time.
const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
)

// Pair is an access/refresh token pair as issued by the backend. Both are
// opaque bearer strings.
type Pair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Store owns the two storage areas. Reads prefer the ephemeral area so a
// non-remembered session wins over a stale remembered one.
type Store struct {
	ephemeral Area
	durable   Area
}

// NewStore creates a token store over the given areas.
func NewStore(ephemeral, durable Area) *Store {
	return &Store{ephemeral: ephemeral, durable: durable}
}

// Save writes both tokens into the durable area if rememberMe, otherwise the
// ephemeral area. The other area is left untouched.
func (s *Store) Save(pair Pair, rememberMe bool) error {
	area := s.area(rememberMe)
	if err := area.Set(KeyAccessToken, pair.Access); err != nil {
		return err
	}
	return area.Set(KeyRefreshToken, pair.Refresh)
}

// AccessToken returns the stored access token, ephemeral area first.
func (s *Store) AccessToken() (string, bool) {
	return s.lookup(KeyAccessToken)
}

// RefreshToken returns the stored refresh token, ephemeral area first.
func (s *Store) RefreshToken() (string, bool) {
	return s.lookup(KeyRefreshToken)
}

// RotateAccess overwrites the access token in whichever area currently holds
// one, preferring the ephemeral area; with neither holding one the durable
// area receives it. The refresh token is untouched.
func (s *Store) RotateAccess(token string) error {
	if _, ok := s.ephemeral.Get(KeyAccessToken); ok {
		return s.ephemeral.Set(KeyAccessToken, token)
	}
	return s.durable.Set(KeyAccessToken, token)
}

// Clear removes both token keys from both areas. Idempotent.
func (s *Store) Clear() error {
	for _, area := range []Area{s.ephemeral, s.durable} {
		if err := area.Delete(KeyAccessToken); err != nil {
			return err
		}
		if err := area.Delete(KeyRefreshToken); err != nil {
			return err
		}
	}
	return nil
}

// RecordProvider stores the last-auth-provider marker in the area matching
// rememberMe. The guard uses it later to pick an onboarding redirect variant.
func (s *Store) RecordProvider(name string, rememberMe bool) error {
	return s.area(rememberMe).Set(KeyAuthProvider, name)
}

// Provider returns the recorded last-auth-provider marker, if any.
func (s *Store) Provider() (string, bool) {
	return s.lookup(KeyAuthProvider)
}

// ClearProvider removes the provider marker from both areas.
func (s *Store) ClearProvider() error {
	if err := s.ephemeral.Delete(KeyAuthProvider); err != nil {
		return err
	}
	return s.durable.Delete(KeyAuthProvider)
}

func (s *Store) area(rememberMe bool) Area {
	if rememberMe {
		return s.durable
	}
	return s.ephemeral
}

func (s *Store) lookup(key string) (string, bool) {
	if v, ok := s.ephemeral.Get(key); ok && v != "" {
		return v, true
	}
	if v, ok := s.durable.Get(key); ok && v != "" {
		return v, true
	}
	return "", false
}

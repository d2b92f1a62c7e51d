package session

import (
	"encoding/json"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hashicorp/go-uuid"
)

// Session carries the fields of one full session write: the access token the
// login or refresh exchange produced, the refresh token if the session is
// refreshable, and the identity record when the exchange returned one.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         *Identity
}

// Store owns the persisted session record.  All reads and writes of session
// fields go through it; the write path always replaces the whole logical
// record (clear-then-set) so a reader never observes a mix of old and new
// fields.
type Store struct {
	storage Storage
	keys    Keys
}

// New creates a Store over the given persistence surface.  A nil storage
// gets an in-process MemoryStorage.  Supported options: WithKeys.
func New(storage Storage, opt ...Option) *Store {
	opts := getStoreOpts(opt...)
	if storage == nil {
		storage = NewMemoryStorage()
	}
	return &Store{
		storage: storage,
		keys:    opts.withKeys,
	}
}

// Storage returns the persistence surface backing the store.
func (s *Store) Storage() Storage { return s.storage }

// Keys returns the storage key mapping in use.
func (s *Store) Keys() Keys { return s.keys }

// AccessToken returns the stored access token, or "" when no session is
// active.
func (s *Store) AccessToken() string {
	v, _ := s.storage.Get(s.keys.AccessToken)
	return v
}

// AccessTokenPayload returns the stored decoded payload of the access token.
// It fails with ErrNoSession when no session is active.
func (s *Store) AccessTokenPayload() (jwt.MapClaims, error) {
	const op = "session.Store.AccessTokenPayload"
	raw, ok := s.storage.Get(s.keys.AccessTokenPayload)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrNoSession)
	}
	claims := jwt.MapClaims{}
	if err := json.Unmarshal([]byte(raw), &claims); err != nil {
		return nil, fmt.Errorf("%s: unable to decode stored payload: %w", op, ErrMalformedRecord)
	}
	return claims, nil
}

// User returns the stored identity record.  It fails with ErrNoSession when
// no session is active.
func (s *Store) User() (*Identity, error) {
	const op = "session.Store.User"
	raw, ok := s.storage.Get(s.keys.User)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrNoSession)
	}
	var id Identity
	if err := json.Unmarshal([]byte(raw), &id); err != nil {
		return nil, fmt.Errorf("%s: unable to decode stored identity: %w", op, ErrMalformedRecord)
	}
	return &id, nil
}

// RefreshToken returns the stored refresh token, or "" when the session is
// not refreshable.
func (s *Store) RefreshToken() string {
	v, _ := s.storage.Get(s.keys.RefreshToken)
	return v
}

// LastConnection returns the provider of the most recent saved identity.  It
// survives Clear so the next login attempt can pre-select the connection.
func (s *Store) LastConnection() string {
	v, _ := s.storage.Get(s.keys.LastConnection)
	return v
}

// StateKey returns the per-storage secret used to key state round-trip
// encryption, generating and persisting it on first access.  Once generated
// it is immutable for the lifetime of the storage; clearing the storage
// regenerates it and thereby invalidates any outstanding login redirect.
func (s *Store) StateKey() (string, error) {
	const op = "session.Store.StateKey"
	if v, ok := s.storage.Get(s.keys.StateKey); ok && v != "" {
		return v, nil
	}
	key, err := uuid.GenerateUUID()
	if err != nil {
		return "", fmt.Errorf("%s: unable to generate state key: %w", op, err)
	}
	s.storage.Set(s.keys.StateKey, key)
	return key, nil
}

// Save replaces the whole session record with the given one.  The access
// token's payload is recomputed by decoding the token, the identity's
// provider becomes the last connection, and any field absent from sess is
// cleared rather than left over from the prior record.  Nothing is written
// until every derived value has been computed, so a failed Save leaves the
// prior record intact.
func (s *Store) Save(sess Session) error {
	const op = "session.Store.Save"
	if sess.AccessToken == "" {
		return fmt.Errorf("%s: access token is empty: %w", op, ErrInvalidParameter)
	}

	claims, err := DecodeClaims(sess.AccessToken)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		return fmt.Errorf("%s: unable to encode payload: %w", op, err)
	}
	var user []byte
	if sess.User != nil {
		if user, err = json.Marshal(sess.User); err != nil {
			return fmt.Errorf("%s: unable to encode identity: %w", op, err)
		}
	}

	// Whole-record replacement: one synchronous pass, no suspension points.
	s.Clear()
	s.storage.Set(s.keys.AccessToken, sess.AccessToken)
	s.storage.Set(s.keys.AccessTokenPayload, string(payload))
	if sess.User != nil {
		s.storage.Set(s.keys.User, string(user))
		s.storage.Set(s.keys.LastConnection, sess.User.Provider)
	}
	if sess.RefreshToken != "" {
		s.storage.Set(s.keys.RefreshToken, sess.RefreshToken)
	}
	return nil
}

// Clear removes the active session: access token, payload, identity and
// refresh token.  The last connection and the state key are kept; the last
// connection pre-selects the provider on the next login, and the state key
// must outlive sessions so in-flight redirects stay decodable.
func (s *Store) Clear() {
	s.storage.Delete(s.keys.AccessToken)
	s.storage.Delete(s.keys.AccessTokenPayload)
	s.storage.Delete(s.keys.User)
	s.storage.Delete(s.keys.RefreshToken)
}

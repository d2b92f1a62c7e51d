// Package state encodes and decodes the opaque value carried through the
// OAuth redirect flow as the "state" parameter.  The value is an encrypted
// JSON payload keyed from the session store's per-storage state key, so a
// returned state proves the round trip started from the same storage and
// carries client context (such as the post-login redirect target) without
// exposing it.
package state

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// keyInfo binds derived keys to this codec so a state key reused elsewhere
// cannot produce colliding key material.
const keyInfo = "auth0-kits state v1"

// Codec symmetric-encrypts state round-trip payloads.  The encryption key is
// derived from the store's state key via HKDF-SHA256 and sealing uses
// ChaCha20-Poly1305, so any tampering or key mismatch fails authentication
// on open.
type Codec struct {
	aead cipher.AEAD
}

// NewCodec creates a Codec keyed from the given state key.  Two codecs built
// from the same state key are interchangeable; a codec built from a
// different key fails every Decode with ErrStateIntegrity.
func NewCodec(stateKey string) (*Codec, error) {
	const op = "state.NewCodec"
	if stateKey == "" {
		return nil, fmt.Errorf("%s: state key is empty: %w", op, ErrInvalidParameter)
	}
	key := make([]byte, chacha20poly1305.KeySize)
	kdf := hkdf.New(sha256.New, []byte(stateKey), nil, []byte(keyInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("%s: unable to derive key: %w", op, err)
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to create cipher: %w", op, err)
	}
	return &Codec{aead: aead}, nil
}

// Encode seals the JSON-serializable payload into the opaque string sent as
// the OAuth state parameter.
func (c *Codec) Encode(payload interface{}) (string, error) {
	const op = "state.Codec.Encode"
	if payload == nil {
		return "", fmt.Errorf("%s: payload is nil: %w", op, ErrNilParameter)
	}
	plain, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%s: unable to encode payload: %w", op, err)
	}
	nonce := make([]byte, chacha20poly1305.NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("%s: unable to generate nonce: %w", op, err)
	}
	sealed := c.aead.Seal(nonce, nonce, plain, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decode opens a state blob produced by Encode and unmarshals it into v.
// Every failure mode of a returned state (undecodable encoding, truncated
// blob, wrong key, tampering, non-JSON plaintext) reports ErrStateIntegrity.
func (c *Codec) Decode(blob string, v interface{}) error {
	const op = "state.Codec.Decode"
	if v == nil {
		return fmt.Errorf("%s: target is nil: %w", op, ErrNilParameter)
	}
	raw, err := base64.RawURLEncoding.DecodeString(blob)
	if err != nil {
		return fmt.Errorf("%s: undecodable state blob: %w", op, ErrStateIntegrity)
	}
	if len(raw) < chacha20poly1305.NonceSize {
		return fmt.Errorf("%s: truncated state blob: %w", op, ErrStateIntegrity)
	}
	nonce, sealed := raw[:chacha20poly1305.NonceSize], raw[chacha20poly1305.NonceSize:]
	plain, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return fmt.Errorf("%s: unable to open state blob: %w", op, ErrStateIntegrity)
	}
	if err := json.Unmarshal(plain, v); err != nil {
		return fmt.Errorf("%s: state payload is not valid structured data: %w", op, ErrStateIntegrity)
	}
	return nil
}

// Package apikey provides an API key authenticator that validates
// keys against a static store using SHA-256 hashing and constant-time
// comparison.
//
// Keys are accepted either as a bearer token or in the
// X-Genesis-Api-Key header, matching the header the adapter itself
// sends to the remote service.
package apikey

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/genesistools/genesis/pkg/auth"
)

// KeyEntry maps a key hash to an identity.
type KeyEntry struct {
	KeyHash  [32]byte
	Identity auth.Identity
}

// Authenticator validates API keys against a static key store.
type Authenticator struct {
	keys []KeyEntry
}

// RawKeyEntry is the configuration format for API keys.
type RawKeyEntry struct {
	Key      string
	Identity auth.Identity
}

// New creates an API key authenticator from a list of raw keys and identities.
// Keys are hashed immediately; plaintext keys are not stored.
func New(entries []RawKeyEntry) *Authenticator {
	a := &Authenticator{}
	for _, e := range entries {
		a.keys = append(a.keys, KeyEntry{
			KeyHash:  sha256.Sum256([]byte(e.Key)),
			Identity: e.Identity,
		})
	}
	return a
}

// Authenticate extracts the API key and validates it.
// Returns Yes if valid, No if a key is present but invalid,
// Abstain if the request carries no recognizable key.
func (a *Authenticator) Authenticate(_ context.Context, r *http.Request) auth.AuthResult {
	key := keyFromRequest(r)
	if key == "" {
		return auth.AuthResult{Decision: auth.Abstain}
	}

	// Hash the key and compare against stored hashes.
	keyHash := sha256.Sum256([]byte(key))

	for _, entry := range a.keys {
		if subtle.ConstantTimeCompare(keyHash[:], entry.KeyHash[:]) == 1 {
			// Copy identity to avoid shared state.
			id := entry.Identity
			return auth.AuthResult{Decision: auth.Yes, Identity: &id}
		}
	}

	// Key present but not found.
	return auth.AuthResult{Decision: auth.No, Err: auth.ErrUnauthenticated}
}

// keyFromRequest pulls the API key from the X-Genesis-Api-Key header
// or an Authorization bearer token, in that order.
func keyFromRequest(r *http.Request) string {
	if key := r.Header.Get("X-Genesis-Api-Key"); key != "" {
		return key
	}
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

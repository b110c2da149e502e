package genesis

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// WSHeaderSigner mints short-lived HS256 bearer tokens scoped to a
// single sandbox session. The same tokens authenticate the automation
// WebSocket and presigned live-view URLs.
type WSHeaderSigner struct {
	key []byte

	// now is overridable for testing.
	now func() time.Time
}

// NewWSHeaderSigner creates a signer using the given symmetric key.
func NewWSHeaderSigner(key []byte) *WSHeaderSigner {
	return &WSHeaderSigner{key: key, now: time.Now}
}

// Sign returns a token binding the session ID and host with the given
// time to live.
func (s *WSHeaderSigner) Sign(sessionID, host string, ttl time.Duration) (string, error) {
	if len(s.key) == 0 {
		return "", fmt.Errorf("ws signing key not configured")
	}

	now := s.now()
	claims := jwtlib.MapClaims{
		"sid": sessionID,
		"aud": host,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return signed, nil
}

// Verify parses a token and returns the session ID it was minted for.
// Used by the mock service and by tests; the real service does its own
// verification.
func (s *WSHeaderSigner) Verify(token string) (string, error) {
	parsed, err := jwtlib.Parse(token, func(t *jwtlib.Token) (any, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.key, nil
	}, jwtlib.WithTimeFunc(s.now))
	if err != nil {
		return "", fmt.Errorf("parsing session token: %w", err)
	}

	claims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return "", fmt.Errorf("unexpected claims type %T", parsed.Claims)
	}
	sid, _ := claims["sid"].(string)
	if sid == "" {
		return "", fmt.Errorf("token has no session ID claim")
	}
	return sid, nil
}

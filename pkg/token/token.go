// Package token implements the HMAC-signed bearer tokens used by the open
// API. Tokens are transient credentials: they carry a public client
// identifier plus standard issued-at/expiry claims and are signed with the
// static secret of the API credential that owns the client identifier.
//
// Because the signing key is per-credential, verification is a two-step
// sequence: decode the unverified payload to learn which client the token
// claims to belong to, look up that credential's secret, then verify the
// signature with it. DecodeClientID and Verify exist as separate functions
// so callers cannot accidentally verify blind.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Sentinel errors for token operations.
var (
	ErrMalformedToken   = errors.New("token: malformed token")
	ErrMissingClientID  = errors.New("token: clientId not found in token")
	ErrExpiredToken     = errors.New("token: token expired")
	ErrInvalidSignature = errors.New("token: invalid signature")
	ErrSigningFailed    = errors.New("token: signing failed")
)

// DefaultTTL is the validity window for issued tokens.
const DefaultTTL = 24 * time.Hour

// Claims is the payload carried by a signed token.
type Claims struct {
	// ClientID names the API credential whose secret signed this token.
	ClientID string `json:"clientId"`

	jwt.RegisteredClaims
}

// Issue signs a new HS256 token for the given client identifier using the
// owning credential's secret. The token is valid for ttl (DefaultTTL when
// zero) from the moment of issuance.
func Issue(clientID, secret string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	now := time.Now()
	claims := Claims{
		ClientID: clientID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSigningFailed, err)
	}
	return signed, nil
}

// DecodeClientID extracts the claimed client identifier from a token
// WITHOUT verifying its signature. The result is untrusted input used only
// to select the credential whose secret the caller must then pass to
// Verify.
func DecodeClientID(raw string) (string, error) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if claims.ClientID == "" {
		return "", ErrMissingClientID
	}
	return claims.ClientID, nil
}

// Verify checks the token's HS256 signature and expiry against the given
// secret and returns the parsed claims.
func Verify(raw, secret string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return []byte(secret), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("%w: %v", ErrExpiredToken, err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
	}
	return claims, nil
}

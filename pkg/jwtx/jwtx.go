// Package jwtx issues and verifies HS256 session tokens over a single
// shared secret. Rotating the secret invalidates every outstanding token.
package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token lifetimes. Access tokens are short-lived to bound the
// blast radius of a leak; refresh tokens keep the session alive.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 24 * time.Hour
)

// SigningAlgorithm is the fixed algorithm identifier this service uses.
const SigningAlgorithm = "HS256"

var (
	// ErrExpired reports a structurally valid, correctly signed token
	// whose expiry has passed.
	ErrExpired = errors.New("jwtx: token expired")

	// ErrInvalid reports a malformed token or a signature mismatch.
	// A tampered token is always ErrInvalid, never ErrExpired.
	ErrInvalid = errors.New("jwtx: token invalid")
)

// Claims are the session claims embedded in both access and refresh
// tokens. Both kinds carry the same subject payload and differ only in
// their expiry horizon.
type Claims struct {
	jwt.RegisteredClaims

	// Role is the opaque role string from the user record.
	Role string `json:"role,omitempty"`

	// FullName is the display name for the subject.
	FullName string `json:"full_name,omitempty"`

	// Phone is carried when the record has one, for profile echo.
	Phone string `json:"phone,omitempty"`
}

// NewClaims builds claims for the given subject with exp = now + ttl.
func NewClaims(subject, role, fullName, phone, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role:     role,
		FullName: fullName,
		Phone:    phone,
	}
}

// Signer signs session claims with the shared secret.
type Signer struct {
	secret []byte
}

func NewSigner(secret []byte) *Signer {
	return &Signer{secret: secret}
}

func (s *Signer) Sign(c Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign token: %w", err)
	}
	return signed, nil
}

// Verifier validates tokens against the shared secret and reports expiry
// and signature failures as distinct kinds so callers can answer
// differently.
type Verifier struct {
	secret []byte
	issuer string
}

// NewVerifier returns a Verifier. issuer is enforced when non-empty.
func NewVerifier(secret []byte, issuer string) *Verifier {
	return &Verifier{secret: secret, issuer: issuer}
}

func (v *Verifier) Verify(tokenString string) (Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{SigningAlgorithm}),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		// Signature is checked before claim validation, so a tampered
		// token can never surface as expired.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpired
		}
		return Claims{}, ErrInvalid
	}

	return claims, nil
}

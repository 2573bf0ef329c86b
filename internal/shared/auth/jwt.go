package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenMissing is returned when no token was supplied at all.
	ErrTokenMissing = errors.New("token missing")
	// ErrTokenMalformed covers bad structure, bad signature, and wrong algorithm.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrTokenExpired is returned for well-formed tokens past their expiry.
	ErrTokenExpired = errors.New("token expired")
)

// Claims carries the account identity inside a signed token.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Signer issues and verifies HS256 tokens. The secret and validity window are
// injected at construction; there is no process-global fallback.
type Signer struct {
	secret []byte
	ttl    time.Duration
}

// NewSigner constructs a Signer with the given secret and token validity.
func NewSigner(secret []byte, ttl time.Duration) (*Signer, error) {
	if len(secret) == 0 {
		return nil, errors.New("signing secret is required")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Signer{secret: secret, ttl: ttl}, nil
}

// Issue signs a fresh token for the given account id.
func (s *Signer) Issue(userID string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", errors.New("user id is required")
	}
	now := time.Now().UTC()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// IssueWithTTL signs a token with an explicit validity window. Used by tests
// to produce already-expired tokens.
func (s *Signer) IssueWithTTL(userID string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks signature and expiry and returns the account id. It is a pure
// function of the token and the current time; anything unverifiable fails
// closed with a precise error.
func (s *Signer) Verify(tokenStr string) (string, error) {
	if strings.TrimSpace(tokenStr) == "" {
		return "", ErrTokenMissing
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenMalformed
	}
	if !token.Valid || claims.UserID == "" {
		return "", ErrTokenMalformed
	}
	return claims.UserID, nil
}

// Package filetoken issues and verifies the signed tokens that grant management
// of a single uploaded file. A token binds the public file id to the provider's
// object id, so delete and metadata requests never trust a client-supplied key.
package filetoken

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for malformed, expired, or mismatched tokens.
var ErrInvalidToken = errors.New("invalid or expired file token")

// Claims is the token payload. Subject holds the provider object id.
type Claims struct {
	FileID string `json:"fid"`
	jwt.RegisteredClaims
}

// PublicID returns the provider object id the token grants access to.
func (c *Claims) PublicID() string {
	return c.Subject
}

// Issuer signs and parses HS256 file tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates an Issuer. Tokens expire ttl after issue.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue creates a signed token for the object publicID exposed as fileID.
func (i *Issuer) Issue(publicID, fileID string) (string, error) {
	now := i.now()
	claims := Claims{
		FileID: fileID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   publicID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign file token: %w", err)
	}
	return signed, nil
}

// Parse verifies raw and checks that it was issued for fileID.
func (i *Issuer) Parse(raw, fileID string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" || claims.FileID != fileID {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Package token issues and verifies the signed session tokens that bind an
// authenticated request to a user id. Tokens are stateless HS256 JWTs with a
// fixed expiry window; there is no server-side revocation list.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrExpired indicates the token's expiry has passed.
	ErrExpired = errors.New("token expired")
	// ErrInvalid indicates a malformed token or a signature mismatch.
	ErrInvalid = errors.New("invalid token")
)

// Claims extends the registered JWT claims with the subject user id.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}

// Issue signs a token for userID valid for ttl from now.
func Issue(userID string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID,
	})
	return t.SignedString(secret)
}

// Verify checks the signature and expiry and returns the bound user id.
func Verify(tokenString string, secret []byte) (string, error) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpired
		}
		return "", ErrInvalid
	}
	if !t.Valid {
		return "", ErrInvalid
	}
	return claims.UserID, nil
}

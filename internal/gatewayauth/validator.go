// Package gatewayauth validates bearer tokens presented by gateway
// clients during the WebSocket handshake. It only checks tokens; issuing
// them is someone else's concern.
package gatewayauth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("gatewayauth: invalid token")

// Claims is the subset of a gateway session token's claims this package
// cares about.
type Claims struct {
	UserID string   `json:"user_id"`
	Perms  []string `json:"perms,omitempty"`
	jwt.RegisteredClaims
}

// Validator checks bearer tokens against a shared HMAC secret.
type Validator struct {
	secret []byte
}

// NewValidator creates a Validator using secret to verify signatures.
func NewValidator(secret string) *Validator {
	return &Validator{secret: []byte(secret)}
}

// Check validates tokenString (with or without a "Bearer " prefix) and
// returns its claims.
func (v *Validator) Check(tokenString string) (*Claims, error) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// HasPerm reports whether claims carries perm.
func (c *Claims) HasPerm(perm string) bool {
	for _, p := range c.Perms {
		if p == perm {
			return true
		}
	}
	return false
}

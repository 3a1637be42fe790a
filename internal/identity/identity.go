package identity

import (
	"errors"

	"github.com/golang-jwt/jwt/v4"
)

// Roles recognized by the authorization policy.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ErrInvalidCredential is returned whenever a bearer credential cannot be
// resolved, regardless of the underlying cause.
var ErrInvalidCredential = errors.New("invalid or missing credential")

// Identity is the resolved principal behind a request or socket connection.
type Identity struct {
	UserID      uint   `json:"user_id"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// Provider resolves a bearer credential to an identity. Token issuance is
// out of scope; implementations only verify.
type Provider interface {
	Resolve(token string) (Identity, error)
}

// Claims are the custom claims carried by forkful access tokens.
type Claims struct {
	UserID      uint   `json:"user_id"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	jwt.RegisteredClaims
}

// JWTProvider verifies HMAC-signed access tokens.
type JWTProvider struct {
	secret []byte
}

// NewJWTProvider creates a provider that verifies tokens with the given secret.
func NewJWTProvider(secret string) *JWTProvider {
	return &JWTProvider{secret: []byte(secret)}
}

// Resolve parses and verifies the token and extracts the identity claims.
func (p *JWTProvider) Resolve(tokenString string) (Identity, error) {
	if tokenString == "" {
		return Identity{}, ErrInvalidCredential
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidCredential
		}
		return p.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidCredential
	}

	role := claims.Role
	if role == "" {
		role = RoleUser
	}

	return Identity{
		UserID:      claims.UserID,
		DisplayName: claims.DisplayName,
		Role:        role,
	}, nil
}

// StaticProvider resolves tokens from a fixed map. Used in tests.
type StaticProvider struct {
	Tokens map[string]Identity
}

func (p *StaticProvider) Resolve(token string) (Identity, error) {
	id, ok := p.Tokens[token]
	if !ok {
		return Identity{}, ErrInvalidCredential
	}
	return id, nil
}

package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer mints and verifies short-lived bearer tokens for API clients
// that cannot hold the session cookie (the client-rendered UI's fetch layer).
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

type tokenClaims struct {
	FamilyID int64  `json:"fam"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Configured reports whether a signing secret is set.
func (t *TokenIssuer) Configured() bool {
	return len(t.secret) > 0
}

// Issue returns a signed token for the given caller.
func (t *TokenIssuer) Issue(ac AuthContext, now time.Time) (string, error) {
	claims := tokenClaims{
		FamilyID: ac.FamilyID,
		Role:     ac.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", ac.UserID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a bearer token and returns the caller it identifies.
func (t *TokenIssuer) Verify(tokenString string) (AuthContext, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return AuthContext{}, fmt.Errorf("parse token: %w", err)
	}

	var userID int64
	if _, err := fmt.Sscanf(claims.Subject, "%d", &userID); err != nil {
		return AuthContext{}, fmt.Errorf("invalid subject: %w", err)
	}

	return AuthContext{
		UserID:   userID,
		FamilyID: claims.FamilyID,
		Role:     claims.Role,
	}, nil
}

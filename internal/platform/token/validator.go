// Package token validates bearer tokens issued by the surrounding platform.
//
// Authentication itself (login, token issuance, cookies) is owned by the UI
// platform; this core only verifies the HMAC signature and extracts the
// caller identity and role claim.
package token

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	id "caseworks/pkg/domain"
)

// Claims carries the identity this core needs from a verified token.
type Claims struct {
	UserID id.UserID
	Role   string
}

// Validator verifies HS256-signed tokens with a shared signing key.
type Validator struct {
	signingKey []byte
}

func NewValidator(signingKey string) *Validator {
	return &Validator{signingKey: []byte(signingKey)}
}

// ValidateToken parses and verifies a token string, returning the caller
// identity claims.
func (v *Validator) ValidateToken(tokenString string) (*Claims, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.signingKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	sub, err := mapClaims.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("token missing subject")
	}
	userID, err := id.ParseUserID(sub)
	if err != nil {
		return nil, fmt.Errorf("token subject is not a user id: %w", err)
	}

	role, _ := mapClaims["role"].(string)

	return &Claims{UserID: userID, Role: role}, nil
}

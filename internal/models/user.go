package models

import (
	"errors"
	"strings"
)

var ErrInvalidClaim = errors.New("invalid authorizer claim")

// AuthClaim is the identity asserted by the upstream authorizer.
type AuthClaim struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
}

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

func NewUser(id, name, email string) User {
	return User{ID: id, Name: name, Email: email}
}

// ResolveUser fails closed: a claim without a subject never maps to a user.
func ResolveUser(claim AuthClaim) (User, error) {
	subject := strings.TrimSpace(claim.Subject)
	if subject == "" {
		return User{}, ErrInvalidClaim
	}

	return User{
		ID:    subject,
		Email: claim.Email,
	}, nil
}

// ClaimFromMap reads sub/email out of a loosely typed claims map, as delivered
// by API Gateway authorizers and decoded JWTs.
func ClaimFromMap(claims map[string]interface{}) AuthClaim {
	var claim AuthClaim
	if sub, ok := claims["sub"].(string); ok {
		claim.Subject = sub
	}
	if email, ok := claims["email"].(string); ok {
		claim.Email = email
	}
	return claim
}

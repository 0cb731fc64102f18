package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"eventrequests/internal/domain"
)

// userClaim is the "user" object the backend embeds in every token.
type userClaim struct {
	ID       string `json:"id"`
	Role     string `json:"role"`
	FullName string `json:"fullname,omitempty"`
	Email    string `json:"email,omitempty"`
}

type jwtClaims struct {
	jwt.RegisteredClaims
	User userClaim `json:"user"`
}

func (c *jwtClaims) identity(token string) (domain.Identity, error) {
	id := c.User.ID
	if id == "" {
		id = c.Subject
	}
	if id == "" {
		return domain.Identity{}, fmt.Errorf("%w: token carries no user id", domain.ErrIdentity)
	}
	return domain.Identity{
		UserID:   id,
		Role:     domain.Role(c.User.Role),
		FullName: c.User.FullName,
		Email:    c.User.Email,
		Token:    token,
	}, nil
}

type jwtVerifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewJWTVerifier returns a TokenVerifier that accepts HS256 tokens signed with secret.
func NewJWTVerifier(secret string) domain.TokenVerifier {
	return &jwtVerifier{
		secret: []byte(secret),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()),
	}
}

func (v *jwtVerifier) Verify(token string) (domain.Identity, error) {
	claims := &jwtClaims{}
	parsed, err := v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return domain.Identity{}, fmt.Errorf("parse token: %w", err)
	}
	if !parsed.Valid {
		return domain.Identity{}, errors.New("invalid token")
	}
	return claims.identity(token)
}

// DecodeIdentity reads the caller identity from a bearer credential without
// verifying its signature. The client holds no secret; the backend verifies
// every call it receives. Any failure wraps domain.ErrIdentity.
func DecodeIdentity(token string) (domain.Identity, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return domain.Identity{}, fmt.Errorf("%w: no token found", domain.ErrIdentity)
	}
	claims := &jwtClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", domain.ErrIdentity, err)
	}
	return claims.identity(token)
}

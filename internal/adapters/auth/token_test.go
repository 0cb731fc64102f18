package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventrequests/internal/domain"
)

func signToken(t *testing.T, secret string, user userClaim, expiry time.Duration) string {
	t.Helper()
	now := time.Now()
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		User: user,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestJWTVerifier_Verify(t *testing.T) {
	secret := "test-secret"
	verifier := NewJWTVerifier(secret)

	token := signToken(t, secret, userClaim{ID: "org-1", Role: "Organizer", FullName: "Olga", Email: "o@example.com"}, time.Hour)
	id, err := verifier.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "org-1", id.UserID)
	assert.Equal(t, domain.RoleOrganizer, id.Role)
	assert.Equal(t, "Olga", id.FullName)
	assert.Equal(t, token, id.Token)
}

func TestJWTVerifier_Rejects(t *testing.T) {
	verifier := NewJWTVerifier("test-secret")

	tests := []struct {
		name  string
		token string
	}{
		{"wrong secret", signToken(t, "other", userClaim{ID: "u1"}, time.Hour)},
		{"expired", signToken(t, "test-secret", userClaim{ID: "u1"}, -time.Minute)},
		{"garbage", "not-a-jwt"},
		{"no user id", signToken(t, "test-secret", userClaim{Role: "User"}, time.Hour)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := verifier.Verify(tt.token)
			require.Error(t, err)
		})
	}
}

func TestDecodeIdentity(t *testing.T) {
	token := signToken(t, "whatever", userClaim{ID: "user-7", Role: "User", Email: "u@example.com"}, time.Hour)

	id, err := DecodeIdentity("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "user-7", id.UserID)
	assert.Equal(t, domain.RoleUser, id.Role)
	assert.Equal(t, token, id.Token)
	assert.True(t, id.Resolved())
}

func TestDecodeIdentity_Failures(t *testing.T) {
	for _, token := range []string{"", "   ", "abc.def", signToken(t, "s", userClaim{}, time.Hour)} {
		_, err := DecodeIdentity(token)
		require.ErrorIs(t, err, domain.ErrIdentity, "token %q", token)
	}
}

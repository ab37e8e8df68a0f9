package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseJWT(t *testing.T) {
	token, err := GenerateJWT(42, RoleAdmin, "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, "42", claims.Subject)
	assert.True(t, claims.IsAdmin())
}

func TestParseJWTFailures(t *testing.T) {
	valid, err := GenerateJWT(1, RoleUser, "secret", time.Hour)
	require.NoError(t, err)
	expired, err := GenerateJWT(1, RoleUser, "secret", -time.Minute)
	require.NoError(t, err)
	noRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: 1}).SignedString([]byte("secret"))
	require.NoError(t, err)
	wrongAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{UserID: 1, Role: RoleUser}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := map[string]struct{ token, secret string }{
		"wrong secret":    {valid, "other"},
		"expired":         {expired, "secret"},
		"missing role":    {noRole, "secret"},
		"wrong algorithm": {wrongAlg, "secret"},
		"garbage":         {"not.a.token", "secret"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseJWT(tt.token, tt.secret)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaker_GenerateAndParseAccessToken(t *testing.T) {
	maker := NewMaker("test-secret", "v1", time.Hour, 24*time.Hour)

	token, err := maker.GenerateAccessToken("550e8400-e29b-41d4-a716-446655440000", "testuser")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := maker.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", claims.Subject)
	assert.Equal(t, "testuser", claims.Username)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
}

func TestMaker_GenerateRefreshToken(t *testing.T) {
	maker := NewMaker("test-secret", "v1", time.Hour, 24*time.Hour)

	token, err := maker.GenerateRefreshToken("550e8400-e29b-41d4-a716-446655440000", "testuser")
	require.NoError(t, err)

	claims, err := maker.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, claims.TokenType)
	// refresh живет дольше access
	assert.True(t, claims.ExpiresAt.After(time.Now().Add(23*time.Hour)))
}

func TestMaker_ParseToken_Errors(t *testing.T) {
	maker := NewMaker("test-secret", "v1", time.Hour, 24*time.Hour)

	tests := []struct {
		name    string
		token   func(t *testing.T) string
		wantErr error
	}{
		{
			name: "expired token",
			token: func(t *testing.T) string {
				expired := NewMaker("test-secret", "v1", -time.Minute, 24*time.Hour)
				token, err := expired.GenerateAccessToken("uid-1", "testuser")
				require.NoError(t, err)
				return token
			},
			wantErr: ErrExpiredToken,
		},
		{
			name: "token signed with different key",
			token: func(t *testing.T) string {
				other := NewMaker("other-secret", "v1", time.Hour, 24*time.Hour)
				token, err := other.GenerateAccessToken("uid-1", "testuser")
				require.NoError(t, err)
				return token
			},
			wantErr: ErrInvalidSignature,
		},
		{
			name:    "structurally invalid token",
			token:   func(_ *testing.T) string { return "not.a.jwt" },
			wantErr: ErrMalformedToken,
		},
		{
			name:    "empty token",
			token:   func(_ *testing.T) string { return "" },
			wantErr: ErrMalformedToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := maker.ParseToken(tt.token(t))
			require.Error(t, err)
			assert.Nil(t, claims)
			assert.True(t, errors.Is(err, tt.wantErr), "expected %v, got %v", tt.wantErr, err)
		})
	}
}

func TestMaker_KeyIDHeader(t *testing.T) {
	maker := NewMaker("test-secret", "2024-01", time.Hour, 24*time.Hour)

	token, err := maker.GenerateAccessToken("uid-1", "testuser")
	require.NoError(t, err)

	// заголовок kid присутствует, чтобы ротация ключей не ломала старые токены
	claims, err := maker.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "uid-1", claims.Subject)
}

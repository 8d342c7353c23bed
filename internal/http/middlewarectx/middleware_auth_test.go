package middlewarectx_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/golang-jwt/jwt/v5"

	"github.com/magabrotheeeer/consumption-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/consumption-tracker/internal/http/response"
	customjwt "github.com/magabrotheeeer/consumption-tracker/internal/lib/jwt"
)

// Mock for auth service
type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) ValidateAccessToken(ctx context.Context, token string) (*customjwt.CustomClaims, error) {
	args := m.Called(ctx, token)
	claims, _ := args.Get(0).(*customjwt.CustomClaims)
	return claims, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestJWTMiddleware(t *testing.T) {
	validClaims := &customjwt.CustomClaims{
		Username:  "testuser",
		TokenType: customjwt.TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: "uid-123",
		},
	}

	tests := []struct {
		name           string
		authHeader     string
		mockClaims     *customjwt.CustomClaims
		mockErr        error
		wantStatusCode int
		wantErrorCode  string
		wantCalled     bool
	}{
		{
			name:           "missing Authorization header",
			authHeader:     "",
			wantStatusCode: http.StatusUnauthorized,
			wantErrorCode:  response.CodeMissingToken,
			wantCalled:     false,
		},
		{
			name:           "invalid Authorization header prefix",
			authHeader:     "Basic sometoken",
			wantStatusCode: http.StatusUnauthorized,
			wantErrorCode:  response.CodeMissingToken,
			wantCalled:     false,
		},
		{
			name:           "malformed token",
			authHeader:     "Bearer garbage",
			mockErr:        customjwt.ErrMalformedToken,
			wantStatusCode: http.StatusUnauthorized,
			wantErrorCode:  response.CodeMalformedToken,
			wantCalled:     false,
		},
		{
			name:           "invalid signature",
			authHeader:     "Bearer forged",
			mockErr:        customjwt.ErrInvalidSignature,
			wantStatusCode: http.StatusUnauthorized,
			wantErrorCode:  response.CodeInvalidSignature,
			wantCalled:     false,
		},
		{
			name:           "expired token",
			authHeader:     "Bearer stale",
			mockErr:        customjwt.ErrExpiredToken,
			wantStatusCode: http.StatusUnauthorized,
			wantErrorCode:  response.CodeTokenExpired,
			wantCalled:     false,
		},
		{
			name:           "valid token",
			authHeader:     "Bearer validtoken",
			mockClaims:     validClaims,
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authMock := new(AuthServiceMock)
			logger := newNoopLogger()
			handlerCalled := false

			nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				assert.Equal(t, "uid-123", r.Context().Value(middlewarectx.UserUID))
				assert.Equal(t, "testuser", r.Context().Value(middlewarectx.Username))
				w.WriteHeader(http.StatusOK)
			})

			mw := middlewarectx.JWTMiddleware(authMock, logger)(nextHandler)

			if tt.mockClaims != nil || tt.mockErr != nil {
				authMock.On("ValidateAccessToken", mock.Anything, strings.TrimPrefix(tt.authHeader, "Bearer ")).
					Return(tt.mockClaims, tt.mockErr).Once()
			}

			req := httptest.NewRequest(http.MethodGet, "/somepath", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			mw.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			assert.Equal(t, tt.wantCalled, handlerCalled)

			if tt.wantErrorCode != "" {
				var resp response.Response
				assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, response.StatusError, resp.Status)
				assert.Equal(t, tt.wantErrorCode, resp.ErrorCode)
			}
			authMock.AssertExpectations(t)
		})
	}
}

package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/consumption-tracker/internal/client"
	"github.com/magabrotheeeer/consumption-tracker/internal/http/response"
	"github.com/magabrotheeeer/consumption-tracker/internal/models"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func loginOK(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, response.StatusOKWithData(map[string]any{
		"access_token":  "access-1",
		"refresh_token": "refresh-1",
		"user":          models.UserSummary{UID: "uid-1", Username: "alice"},
	}))
}

func TestLoginAndState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/auth/login", r.URL.Path)
		loginOK(w)
	}))
	defer srv.Close()

	c, err := client.New(srv.URL, client.NewMemoryStore(), newNoopLogger())
	require.NoError(t, err)
	assert.Equal(t, client.StateUnauthenticated, c.State())

	require.NoError(t, c.Login(context.Background(), "alice@example.com", "password1"))
	assert.Equal(t, client.StateAuthenticated, c.State())

	user, err := c.CurrentUser()
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
}

func TestLoginFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnauthorized,
			response.Error(response.CodeInvalidCredentials, "invalid email or password"))
	}))
	defer srv.Close()

	c, err := client.New(srv.URL, client.NewMemoryStore(), newNoopLogger())
	require.NoError(t, err)

	err = c.Login(context.Background(), "alice@example.com", "wrong")
	require.Error(t, err)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, response.CodeInvalidCredentials, apiErr.Code)
	assert.Equal(t, client.StateUnauthenticated, c.State())
}

func TestSessionRestoredFromStore(t *testing.T) {
	store := client.NewMemoryStore()
	require.NoError(t, store.Save(&client.Session{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		User:         models.UserSummary{UID: "uid-1", Username: "alice"},
	}))

	c, err := client.New("http://localhost", store, newNoopLogger())
	require.NoError(t, err)
	assert.Equal(t, client.StateAuthenticated, c.State())
}

func TestAuthedRequestUsesToken(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/login":
			loginOK(w)
		case "/api/v1/consumption/analytics":
			calls++
			assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, response.StatusOKWithData(models.AnalyticsSummary{
				TotalRecords: 3,
			}))
		default:
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c, err := client.New(srv.URL, client.NewMemoryStore(), newNoopLogger())
	require.NoError(t, err)
	require.NoError(t, c.Login(context.Background(), "alice@example.com", "password1"))

	summary, err := c.Analytics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalRecords)
	assert.Equal(t, 1, calls)
}

func TestExpiredAccessTokenIsRefreshed(t *testing.T) {
	listCalls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/login":
			loginOK(w)
		case "/api/v1/auth/refresh":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "refresh-1", body["refresh_token"])
			writeJSON(w, http.StatusOK, response.StatusOKWithData(map[string]any{
				"access_token": "access-2",
			}))
		case "/api/v1/consumption":
			listCalls++
			if r.Header.Get("Authorization") == "Bearer access-1" {
				writeJSON(w, http.StatusUnauthorized,
					response.Error(response.CodeTokenExpired, "token expired"))
				return
			}
			assert.Equal(t, "Bearer access-2", r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, response.StatusOKWithData(map[string]any{
				"items":      []*models.Consumption{},
				"pagination": models.Pagination{Page: 1, PerPage: 20},
			}))
		default:
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c, err := client.New(srv.URL, client.NewMemoryStore(), newNoopLogger())
	require.NoError(t, err)
	require.NoError(t, c.Login(context.Background(), "alice@example.com", "password1"))

	_, meta, err := c.ListConsumption(context.Background(), 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, meta.Page)
	assert.Equal(t, 2, listCalls, "request retried once after refresh")
	assert.Equal(t, client.StateAuthenticated, c.State())
}

func TestStaleSessionForcesLogout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/consumption/analytics":
			writeJSON(w, http.StatusUnauthorized,
				response.Error(response.CodeInvalidSignature, "invalid token signature"))
		default:
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	store := client.NewMemoryStore()
	require.NoError(t, store.Save(&client.Session{
		AccessToken:  "forged",
		RefreshToken: "forged-refresh",
		User:         models.UserSummary{UID: "uid-1"},
	}))

	c, err := client.New(srv.URL, store, newNoopLogger())
	require.NoError(t, err)

	_, err = c.Analytics(context.Background())
	assert.ErrorIs(t, err, client.ErrSessionExpired)
	assert.Equal(t, client.StateUnauthenticated, c.State())

	// Сессия удалена и из хранилища.
	saved, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, saved)
}

func TestExpiredRefreshTokenForcesLogout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/consumption/analytics":
			writeJSON(w, http.StatusUnauthorized,
				response.Error(response.CodeTokenExpired, "token expired"))
		case "/api/v1/auth/refresh":
			writeJSON(w, http.StatusUnauthorized,
				response.Error(response.CodeTokenExpired, "token expired"))
		default:
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	store := client.NewMemoryStore()
	require.NoError(t, store.Save(&client.Session{
		AccessToken:  "stale",
		RefreshToken: "stale-refresh",
	}))

	c, err := client.New(srv.URL, store, newNoopLogger())
	require.NoError(t, err)

	_, err = c.Analytics(context.Background())
	assert.ErrorIs(t, err, client.ErrSessionExpired)
	assert.Equal(t, client.StateUnauthenticated, c.State())
}

func TestConcurrentExpiredSessionDiscard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/consumption/analytics":
			writeJSON(w, http.StatusUnauthorized,
				response.Error(response.CodeTokenExpired, "token expired"))
		case "/api/v1/auth/refresh":
			writeJSON(w, http.StatusUnauthorized,
				response.Error(response.CodeTokenExpired, "token expired"))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	store := client.NewMemoryStore()
	require.NoError(t, store.Save(&client.Session{
		AccessToken:  "stale",
		RefreshToken: "stale-refresh",
	}))

	c, err := client.New(srv.URL, store, newNoopLogger())
	require.NoError(t, err)

	// Несколько запросов с истекшим токеном одновременно: часть из них
	// застаёт сессию уже сброшенной соседним запросом.
	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Analytics(context.Background())
		}(i)
	}
	wg.Wait()

	for _, gotErr := range errs {
		require.Error(t, gotErr)
		assert.True(t,
			errors.Is(gotErr, client.ErrSessionExpired) || errors.Is(gotErr, client.ErrNotAuthenticated),
			"unexpected error: %v", gotErr)
	}
	assert.Equal(t, client.StateUnauthenticated, c.State())
}

func TestNotAuthenticated(t *testing.T) {
	c, err := client.New("http://localhost", client.NewMemoryStore(), newNoopLogger())
	require.NoError(t, err)

	_, err = c.Analytics(context.Background())
	assert.ErrorIs(t, err, client.ErrNotAuthenticated)

	_, err = c.CurrentUser()
	assert.ErrorIs(t, err, client.ErrNotAuthenticated)
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := client.NewFileStore(path)

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)

	session := &client.Session{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		User:         models.UserSummary{UID: "uid-1", Username: "alice"},
	}
	require.NoError(t, store.Save(session))

	loaded, err = store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, session.AccessToken, loaded.AccessToken)
	assert.Equal(t, "alice", loaded.User.Username)

	require.NoError(t, store.Clear())
	loaded, err = store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)

	// Повторная очистка не падает.
	require.NoError(t, store.Clear())
}

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/magabrotheeeer/consumption-tracker/internal/http/response"
	"github.com/magabrotheeeer/consumption-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/consumption-tracker/internal/models"
)

// State — состояние клиента относительно аутентификации.
type State string

// Состояния клиента. Переходы: Unauthenticated -> Authenticating ->
// Authenticated, и принудительный возврат в Unauthenticated при
// невосстановимой ошибке токена.
const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticating  State = "authenticating"
	StateAuthenticated   State = "authenticated"
)

// Ошибки клиента.
var (
	// ErrNotAuthenticated — операция требует входа в систему.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrSessionExpired — сессия недействительна и была сброшена.
	// Требуется повторный вход.
	ErrSessionExpired = errors.New("session expired, login required")
)

// APIError — ошибка, возвращённая сервером.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Details    map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// Client — HTTP-клиент сервиса учёта потребления.
//
// Потокобезопасен. Хранит сессию через SessionStore и автоматически
// пытается обновить access токен по refresh токену. Невосстановимая
// ошибка токена (неверная подпись, истёкший refresh) принудительно
// сбрасывает сессию: устаревшим учётным данным доверять нельзя.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      SessionStore
	log        *slog.Logger

	mu      sync.Mutex
	state   State
	session *Session
}

// New создает клиент и восстанавливает сессию из хранилища, если она есть.
func New(baseURL string, store SessionStore, log *slog.Logger) (*Client, error) {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		store:      store,
		log:        log,
		state:      StateUnauthenticated,
	}

	session, err := store.Load()
	if err != nil {
		return nil, err
	}
	if session != nil {
		c.session = session
		c.state = StateAuthenticated
	}
	return c, nil
}

// State возвращает текущее состояние клиента.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CurrentUser возвращает пользователя активной сессии.
func (c *Client) CurrentUser() (*models.UserSummary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil, ErrNotAuthenticated
	}
	user := c.session.User
	return &user, nil
}

// Register создает новую учётную запись. Сессию не открывает.
func (c *Client) Register(ctx context.Context, email, username, password string) (*models.UserSummary, error) {
	body := map[string]string{
		"email":            email,
		"username":         username,
		"password":         password,
		"confirm_password": password,
	}
	var data struct {
		User models.UserSummary `json:"user"`
	}
	if err := c.post(ctx, "/api/v1/auth/register", body, &data); err != nil {
		return nil, err
	}
	return &data.User, nil
}

// Login выполняет вход и сохраняет сессию в хранилище.
func (c *Client) Login(ctx context.Context, email, password string) error {
	const op = "client.Login"

	c.mu.Lock()
	c.state = StateAuthenticating
	c.mu.Unlock()

	var pair struct {
		AccessToken  string             `json:"access_token"`
		RefreshToken string             `json:"refresh_token"`
		User         models.UserSummary `json:"user"`
	}
	if err := c.post(ctx, "/api/v1/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &pair); err != nil {
		c.mu.Lock()
		c.state = StateUnauthenticated
		c.mu.Unlock()
		return fmt.Errorf("%s: %w", op, err)
	}

	session := &Session{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         pair.User,
	}

	c.mu.Lock()
	c.session = session
	c.state = StateAuthenticated
	c.mu.Unlock()

	if err := c.store.Save(session); err != nil {
		c.log.Warn("failed to persist session", sl.Err(err))
	}
	return nil
}

// Logout сбрасывает сессию локально.
func (c *Client) Logout() error {
	c.mu.Lock()
	c.session = nil
	c.state = StateUnauthenticated
	c.mu.Unlock()
	return c.store.Clear()
}

// CreateConsumption создает запись потребления от имени текущего пользователя.
func (c *Client) CreateConsumption(ctx context.Context, req models.DummyConsumption) (*models.Consumption, error) {
	var created models.Consumption
	if err := c.doAuthed(ctx, http.MethodPost, "/api/v1/consumption", req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// ListConsumption возвращает страницу записей потребления.
func (c *Client) ListConsumption(ctx context.Context, page, perPage int) ([]*models.Consumption, *models.Pagination, error) {
	var data struct {
		Items []*models.Consumption `json:"items"`
		Meta  models.Pagination     `json:"pagination"`
	}
	path := "/api/v1/consumption?" + url.Values{
		"page":     []string{strconv.Itoa(page)},
		"per_page": []string{strconv.Itoa(perPage)},
	}.Encode()
	if err := c.doAuthed(ctx, http.MethodGet, path, nil, &data); err != nil {
		return nil, nil, err
	}
	return data.Items, &data.Meta, nil
}

// Analytics возвращает аналитическую сводку текущего пользователя.
func (c *Client) Analytics(ctx context.Context) (*models.AnalyticsSummary, error) {
	var summary models.AnalyticsSummary
	if err := c.doAuthed(ctx, http.MethodGet, "/api/v1/consumption/analytics", nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// doAuthed выполняет запрос с access токеном. При истёкшем access токене
// делает одну попытку обновления по refresh токену; если и она
// отклонена, сессия сбрасывается.
func (c *Client) doAuthed(ctx context.Context, method, path string, body, out any) error {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()
	if session == nil {
		return ErrNotAuthenticated
	}

	err := c.do(ctx, method, path, body, session.AccessToken, out)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	switch apiErr.Code {
	case response.CodeTokenExpired:
		if refreshErr := c.refreshAccessToken(ctx); refreshErr != nil {
			c.discardSession()
			return ErrSessionExpired
		}
		// Параллельный запрос мог сбросить сессию, пока шло обновление.
		c.mu.Lock()
		session = c.session
		c.mu.Unlock()
		if session == nil {
			return ErrSessionExpired
		}
		return c.do(ctx, method, path, body, session.AccessToken, out)
	case response.CodeInvalidSignature, response.CodeMalformedToken:
		c.discardSession()
		return ErrSessionExpired
	}
	return err
}

func (c *Client) refreshAccessToken(ctx context.Context) error {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()
	if session == nil {
		return ErrNotAuthenticated
	}

	var data struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.post(ctx, "/api/v1/auth/refresh", map[string]string{
		"refresh_token": session.RefreshToken,
	}, &data); err != nil {
		return err
	}

	c.mu.Lock()
	if c.session == nil {
		c.mu.Unlock()
		return ErrNotAuthenticated
	}
	c.session.AccessToken = data.AccessToken
	updated := *c.session
	c.mu.Unlock()

	if err := c.store.Save(&updated); err != nil {
		c.log.Warn("failed to persist refreshed session", sl.Err(err))
	}
	return nil
}

func (c *Client) discardSession() {
	c.log.Info("discarding invalid session")
	c.mu.Lock()
	c.session = nil
	c.state = StateUnauthenticated
	c.mu.Unlock()
	if err := c.store.Clear(); err != nil {
		c.log.Warn("failed to clear session store", sl.Err(err))
	}
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, "", out)
}

func (c *Client) do(ctx context.Context, method, path string, body any, token string, out any) error {
	const op = "client.do"

	var reqBody *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		reqBody = bytes.NewReader(raw)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var envelope struct {
		Status    string            `json:"status"`
		ErrorCode string            `json:"error_code"`
		Error     string            `json:"error"`
		Details   map[string]string `json:"details"`
		Data      json.RawMessage   `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if envelope.Status != response.StatusOK {
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       envelope.ErrorCode,
			Message:    envelope.Error,
			Details:    envelope.Details,
		}
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}

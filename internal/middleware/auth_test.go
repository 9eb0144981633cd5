package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/todolist/todolist/internal/auth"
	"github.com/todolist/todolist/internal/handler/dto"
	"github.com/todolist/todolist/internal/model"
	"github.com/todolist/todolist/internal/repository"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]*model.User
	err   error
	calls int
}

func (f *fakeUsers) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

type fakePrincipalCache struct {
	mu      sync.Mutex
	entries map[string]*model.Principal
	getErr  error
}

func (f *fakePrincipalCache) GetPrincipal(ctx context.Context, userID string) (*model.Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.entries[userID], nil
}

func (f *fakePrincipalCache) SetPrincipal(ctx context.Context, p *model.Principal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[p.UserID] = p
	return nil
}

type authFixture struct {
	tokens *auth.TokenProvider
	users  *fakeUsers
	cache  *fakePrincipalCache
	logs   *bytes.Buffer
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	tokens, err := auth.NewTokenProvider(testSecret, "todolist-test")
	if err != nil {
		t.Fatalf("NewTokenProvider() error = %v", err)
	}
	return &authFixture{
		tokens: tokens,
		users: &fakeUsers{users: map[string]*model.User{
			"u1": {ID: "u1", Username: "ann", Email: "ann@example.com"},
		}},
		cache: &fakePrincipalCache{entries: map[string]*model.Principal{}},
		logs:  &bytes.Buffer{},
	}
}

func (f *authFixture) handler(next http.Handler) http.Handler {
	return Auth(AuthConfig{
		Logger:     slog.New(slog.NewJSONHandler(f.logs, nil)),
		Tokens:     f.tokens,
		Users:      f.users,
		Cache:      f.cache,
		CookieName: "todo_token",
	})(next)
}

func (f *authFixture) token(t *testing.T, userID string) string {
	t.Helper()
	token, _, err := f.tokens.Issue(userID, 1)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	return token
}

func principalEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := auth.PrincipalFromContext(r.Context())
		if p == nil {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		_, _ = io.WriteString(w, p.UserID)
	})
}

func TestAuth_AcceptsBearerAndCookie(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	token := f.token(t, "u1")

	tests := []struct {
		name  string
		setup func(r *http.Request)
	}{
		{"bearer header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }},
		{"lower-case scheme", func(r *http.Request) { r.Header.Set("Authorization", "bearer "+token) }},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "todo_token", Value: token}) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()

			f.handler(principalEcho()).ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
			}
			if rec.Body.String() != "u1" {
				t.Errorf("principal = %q, want u1", rec.Body.String())
			}
		})
	}
}

func TestAuth_Rejects(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	other, err := auth.NewTokenProvider(strings.Repeat("x", 32), "todolist-test")
	if err != nil {
		t.Fatal(err)
	}
	foreign, _, err := other.Issue("u1", 1)
	if err != nil {
		t.Fatal(err)
	}
	valid := f.token(t, "u1")

	tests := []struct {
		name   string
		header string
	}{
		{"missing token", ""},
		{"malformed token", "Bearer not-a-jwt"},
		{"wrong signing key", "Bearer " + foreign},
		{"tampered token", "Bearer " + valid[:len(valid)-2] + "xx"},
		{"basic scheme", "Basic dXNlcjpwYXNz"},
		{"unknown user", "Bearer " + f.token(t, "ghost")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			f.handler(principalEcho()).ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
			var body dto.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Code != "UNAUTHORIZED" || body.Error != "Authentication required" {
				t.Errorf("body = %+v", body)
			}
		})
	}
}

func TestAuth_HeaderTakesPrecedenceOverCookie(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	req.AddCookie(&http.Cookie{Name: "todo_token", Value: f.token(t, "u1")})
	rec := httptest.NewRecorder()

	f.handler(principalEcho()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuth_CachesPrincipal(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	token := f.token(t, "u1")

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		f.handler(principalEcho()).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
	}

	if f.users.calls != 1 {
		t.Errorf("user lookups = %d, want 1", f.users.calls)
	}
	if f.cache.entries["u1"] == nil {
		t.Error("principal was not cached")
	}
}

func TestAuth_CacheErrorFallsBackToStore(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	f.cache.getErr = errors.New("redis down")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+f.token(t, "u1"))
	rec := httptest.NewRecorder()
	f.handler(principalEcho()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestAuth_StoreErrorIsUnauthorized(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	f.users.err = errors.New("connection refused")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+f.token(t, "u1"))
	rec := httptest.NewRecorder()
	f.handler(principalEcho()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuth_TokenNeverLogged(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	token := f.token(t, "u1")

	for _, header := range []string{"Bearer " + token, "Bearer " + token + "tampered"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		f.handler(principalEcho()).ServeHTTP(httptest.NewRecorder(), req)
	}

	if strings.Contains(f.logs.String(), token) {
		t.Error("log output contains the access token")
	}
}

func TestExtractToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		cookie string
		want   string
	}{
		{"bearer", "Bearer abc", "", "abc"},
		{"bearer with padding", "Bearer   abc  ", "", "abc"},
		{"cookie only", "", "xyz", "xyz"},
		{"non-bearer header ignores cookie", "Token abc", "xyz", ""},
		{"nothing", "", "", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "todo_token", Value: tt.cookie})
			}
			if got := extractToken(req, "todo_token"); got != tt.want {
				t.Errorf("extractToken() = %q, want %q", got, tt.want)
			}
		})
	}
}

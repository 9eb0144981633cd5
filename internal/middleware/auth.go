package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/todolist/todolist/internal/auth"
	"github.com/todolist/todolist/internal/model"
	"github.com/todolist/todolist/internal/repository"
)

// TokenParser verifies access tokens. Implemented by *auth.TokenProvider.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// UserLookup resolves a token subject to a user.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// PrincipalCache caches resolved principals. Implemented by *cache.Cache.
type PrincipalCache interface {
	GetPrincipal(ctx context.Context, userID string) (*model.Principal, error)
	SetPrincipal(ctx context.Context, p *model.Principal) error
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger     *slog.Logger
	Tokens     TokenParser
	Users      UserLookup
	Cache      PrincipalCache // optional
	CookieName string
}

// Auth returns a middleware that authenticates requests with a bearer token,
// falling back to the auth cookie. Every failure yields the same 401 body.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := cfg.Logger.With(
				slog.String("endpoint", r.Method+" "+r.URL.Path),
				slog.String("request_id", GetRequestID(ctx)),
			)

			token := extractToken(r, cfg.CookieName)
			if token == "" {
				log.Warn("authentication failed", slog.String("reason", "missing_token"))
				writeAuthError(w)
				return
			}

			claims, err := cfg.Tokens.Parse(token)
			if err != nil {
				log.Warn("authentication failed", slog.String("reason", "invalid_token"))
				writeAuthError(w)
				return
			}

			principal, cacheHit, err := resolvePrincipal(ctx, cfg, claims.UserID)
			if err != nil {
				if errors.Is(err, repository.ErrUserNotFound) {
					log.Warn("authentication failed",
						slog.String("reason", "unknown_user"),
						slog.String("user_id", claims.UserID),
					)
				} else {
					log.Error("user lookup failed during auth", slog.String("error", err.Error()))
				}
				writeAuthError(w)
				return
			}

			log.Debug("authentication successful",
				slog.String("user_id", principal.UserID),
				slog.Bool("cache_hit", cacheHit),
			)

			setRequestUser(ctx, principal.UserID)
			next.ServeHTTP(w, r.WithContext(auth.ContextWithPrincipal(ctx, principal)))
		})
	}
}

func resolvePrincipal(ctx context.Context, cfg AuthConfig, userID string) (*model.Principal, bool, error) {
	if cfg.Cache != nil {
		if p, err := cfg.Cache.GetPrincipal(ctx, userID); err == nil && p != nil {
			return p, true, nil
		}
	}

	user, err := cfg.Users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, false, err
	}

	p := model.PrincipalFor(user)
	if cfg.Cache != nil {
		if err := cfg.Cache.SetPrincipal(ctx, p); err != nil {
			cfg.Logger.Warn("failed to cache principal", slog.String("error", err.Error()))
		}
	}
	return p, false, nil
}

// extractToken reads "Authorization: Bearer <token>" first, then the auth cookie.
func extractToken(r *http.Request, cookieName string) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}

	if cookieName == "" {
		return ""
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="todolist"`)
	writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
}

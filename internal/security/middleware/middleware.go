package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/yourorg/taskboard/internal/domain"
	"github.com/yourorg/taskboard/internal/security/audit"
	"github.com/yourorg/taskboard/internal/security/auth"
	"github.com/yourorg/taskboard/internal/security/ratelimit"
)

type ActorContextKey struct{}
type ClaimsContextKey struct{}
type TokenContextKey struct{}

func isPublicPath(path string) bool {
	switch path {
	case "/healthz", "/readyz", "/metrics", "/api/auth/register", "/api/auth/login":
		return true
	}
	return false
}

// JWTMiddleware validates the bearer token, rejects blacklisted tokens, and
// injects the actor into the request context. Downstream code trusts the
// actor without re-verifying signatures.
func JWTMiddleware(tm *auth.TokenManager, blacklist *auth.Blacklist, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			var tokenString string
			if r.URL.Path == "/ws" {
				// Browser websocket clients cannot set headers
				tokenString = r.URL.Query().Get("token")
			} else {
				authHeader := r.Header.Get("Authorization")
				if authHeader == "" {
					http.Error(w, `{"error":"missing auth"}`, http.StatusUnauthorized)
					return
				}
				var err error
				tokenString, err = auth.ExtractToken(authHeader)
				if err != nil {
					http.Error(w, `{"error":"invalid auth"}`, http.StatusUnauthorized)
					return
				}
			}

			claims, err := tm.ValidateToken(tokenString)
			if err != nil {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			if blacklist != nil && blacklist.Contains(r.Context(), tokenString) {
				http.Error(w, `{"error":"token invalidated"}`, http.StatusUnauthorized)
				return
			}

			actor := domain.Actor{ID: claims.UserID, Role: claims.Role}
			ctx := context.WithValue(r.Context(), ActorContextKey{}, actor)
			ctx = context.WithValue(ctx, ClaimsContextKey{}, claims)
			ctx = context.WithValue(ctx, TokenContextKey{}, tokenString)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RateLimitMiddleware applies a strict per-address window to the auth
// endpoints and a per-actor window everywhere else.
func RateLimitMiddleware(limiter *ratelimit.Limiter, strictLimit int, strictWindow time.Duration, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/api/auth/") {
				addr := r.RemoteAddr
				if i := strings.LastIndex(addr, ":"); i > 0 {
					addr = addr[:i]
				}
				if !limiter.AllowStrict(addr, strictLimit, strictWindow) {
					log.Warn("auth rate limit exceeded", slog.String("addr", addr))
					http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			actorID := ""
			if a, ok := GetActorFromContext(r.Context()); ok {
				actorID = a.ID
			}
			if !limiter.Allow(actorID) {
				http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AuditMiddleware records mutation attempts on the task ledger
func AuditMiddleware(auditLog *audit.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/api/tasks") {
				actor, _ := GetActorFromContext(r.Context())
				switch r.Method {
				case http.MethodPost, http.MethodPut, http.MethodPatch:
					auditLog.LogMutation(r.Context(), actor, strings.ToLower(r.Method), r.PathValue("id"), "initiated", "")
				case http.MethodDelete:
					auditLog.LogMutation(r.Context(), actor, "delete", r.PathValue("id"), "initiated", "")
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetActorFromContext extracts the authenticated actor
func GetActorFromContext(ctx context.Context) (domain.Actor, bool) {
	if a := ctx.Value(ActorContextKey{}); a != nil {
		return a.(domain.Actor), true
	}
	return domain.Actor{}, false
}

// GetClaimsFromContext extracts the validated token claims
func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	if c := ctx.Value(ClaimsContextKey{}); c != nil {
		return c.(*auth.Claims)
	}
	return nil
}

// GetTokenFromContext extracts the raw bearer token (for logout)
func GetTokenFromContext(ctx context.Context) string {
	if t := ctx.Value(TokenContextKey{}); t != nil {
		return t.(string)
	}
	return ""
}

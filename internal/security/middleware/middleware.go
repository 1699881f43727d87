package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/visulab/backend/internal/security"
	"github.com/visulab/backend/internal/security/audit"
	"github.com/visulab/backend/internal/security/auth"
	"github.com/visulab/backend/internal/security/ratelimit"
)

type TenantContextKey struct{}
type ClaimsContextKey struct{}

// isPublicPath reports whether a path is reachable without a token.
// The websocket feed authenticates via query parameter inside its handler.
func isPublicPath(path string) bool {
	return path == "/healthz" || path == "/readyz" || path == "/metrics" ||
		path == "/api/login" ||
		strings.HasPrefix(path, "/ws/feed")
}

func JWTMiddleware(tm *auth.TokenManager, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, `{"error":"missing auth"}`, http.StatusUnauthorized)
				return
			}

			tokenString, err := auth.ExtractToken(authHeader)
			if err != nil {
				http.Error(w, `{"error":"invalid auth"}`, http.StatusUnauthorized)
				return
			}

			claims, err := tm.ValidateToken(tokenString)
			if err != nil {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsContextKey{}, claims)
			ctx = context.WithValue(ctx, TenantContextKey{}, claims.TenantID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePermission rejects requests whose token role lacks the given
// permission. Must run after JWTMiddleware.
func RequirePermission(authz *security.AuthorizationService, perm security.Permission, log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := GetClaimsFromContext(r.Context())
		if claims == nil || authz.ValidatePermission(security.Role(claims.Role), perm) != nil {
			log.Warn("endpoint denied",
				slog.String("path", r.URL.Path),
				slog.String("permission", string(perm)),
				slog.String("user_id", userIDOrEmpty(claims)),
			)
			http.Error(w, `{"error":"insufficient permissions"}`, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func userIDOrEmpty(claims *auth.Claims) string {
	if claims == nil {
		return ""
	}
	return claims.UserID
}

func RateLimitMiddleware(limiter *ratelimit.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			userID := ""
			if c := r.Context().Value(ClaimsContextKey{}); c != nil {
				userID = c.(*auth.Claims).UserID
			}

			if !limiter.Allow(userID) {
				http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func AuditMiddleware(auditLog *audit.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenantID := ""
			userID := ""
			if t := r.Context().Value(TenantContextKey{}); t != nil {
				tenantID = t.(string)
			}
			if c := r.Context().Value(ClaimsContextKey{}); c != nil {
				userID = c.(*auth.Claims).UserID
			}

			if r.Method == http.MethodPost && r.URL.Path == "/api/shortages" {
				auditLog.LogAction(r.Context(), tenantID, userID, "create", "shortage_record", "", "initiated", "")
			}
			if r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/api/shortages/") {
				auditLog.LogAction(r.Context(), tenantID, userID, "delete", "shortage_record", r.PathValue("id"), "initiated", "")
			}
			if r.Method == http.MethodGet && r.URL.Path == "/api/reports/shortages" {
				auditLog.LogAction(r.Context(), tenantID, userID, "generate", "report", "", "initiated", "")
			}

			next.ServeHTTP(w, r)
		})
	}
}

func GetTenantFromContext(ctx context.Context) string {
	if t := ctx.Value(TenantContextKey{}); t != nil {
		return t.(string)
	}
	return ""
}

func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	if c := ctx.Value(ClaimsContextKey{}); c != nil {
		return c.(*auth.Claims)
	}
	return nil
}

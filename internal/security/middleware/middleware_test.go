package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/visulab/backend/internal/security/auth"
	"github.com/visulab/backend/internal/security/ratelimit"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// The limiter keys on the token's user ID, so JWT validation has to run
// before rate limiting or every request passes with an empty key.
func TestRateLimitAppliesToAuthenticatedUser(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", "visulab")
	token, err := tm.GenerateToken("company-1", "user-1", "alice@example.com", "user", time.Minute)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}

	limiter := ratelimit.NewLimiter(1, time.Minute)
	defer limiter.Stop()

	log := discardLogger()
	chain := JWTMiddleware(tm, log)(RateLimitMiddleware(limiter, log)(okHandler()))

	var statuses []int
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/shortages", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		chain.ServeHTTP(rec, req)
		statuses = append(statuses, rec.Code)
	}

	if statuses[0] != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", statuses[0])
	}
	if statuses[1] != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", statuses[1])
	}
}

func TestRateLimitIsPerUser(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", "visulab")
	limiter := ratelimit.NewLimiter(1, time.Minute)
	defer limiter.Stop()

	log := discardLogger()
	chain := JWTMiddleware(tm, log)(RateLimitMiddleware(limiter, log)(okHandler()))

	send := func(userID string) int {
		token, err := tm.GenerateToken("company-1", userID, userID+"@example.com", "user", time.Minute)
		if err != nil {
			t.Fatalf("generate token failed: %v", err)
		}
		req := httptest.NewRequest(http.MethodGet, "/api/shortages", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		chain.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send("user-1"); code != http.StatusOK {
		t.Fatalf("user-1: expected 200, got %d", code)
	}
	// Another user's budget is untouched by user-1's request.
	if code := send("user-2"); code != http.StatusOK {
		t.Fatalf("user-2: expected 200, got %d", code)
	}
	if code := send("user-1"); code != http.StatusTooManyRequests {
		t.Fatalf("user-1 second request: expected 429, got %d", code)
	}
}

func TestJWTMiddlewareRejectsMissingToken(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", "visulab")
	chain := JWTMiddleware(tm, discardLogger())(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/shortages", nil)
	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestJWTMiddlewarePopulatesClaims(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", "visulab")
	token, err := tm.GenerateToken("company-1", "user-1", "alice@example.com", "admin", time.Minute)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}

	var claims *auth.Claims
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims = GetClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	chain := JWTMiddleware(tm, discardLogger())(inner)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, req)

	if claims == nil {
		t.Fatalf("expected claims in context")
	}
	if claims.UserID != "user-1" || claims.TenantID != "company-1" || claims.Role != "admin" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestPublicPathsBypassAuthAndRateLimit(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", "visulab")
	limiter := ratelimit.NewLimiter(1, time.Minute)
	defer limiter.Stop()

	log := discardLogger()
	chain := JWTMiddleware(tm, log)(RateLimitMiddleware(limiter, log)(okHandler()))

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()
		chain.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("health check %d: expected 200, got %d", i+1, rec.Code)
		}
	}
}

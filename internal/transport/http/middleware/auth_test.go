package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AyushPithale/social-platform-gateway/internal/infra/security"
)

func newAuthRouter(t *testing.T, handler gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/protected", handler, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": GetUserID(c)})
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	issuer, err := security.NewTokenIssuer("test-secret", "test-issuer", 10*time.Minute)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}

	token, err := issuer.Issue("user-1", "alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	r := newAuthRouter(t, RequireAuth(issuer))

	cases := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, rec.Code)
			}
		})
	}
}

func TestRequireAuth_ExpiredTokenIs401(t *testing.T) {
	issuer, err := security.NewTokenIssuer("test-secret", "test-issuer", 10*time.Minute)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}

	past := time.Now().Add(-time.Hour)
	issuer.WithClock(func() time.Time { return past })
	token, err := issuer.Issue("user-1", "alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	issuer.WithClock(time.Now)

	r := newAuthRouter(t, RequireAuth(issuer))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", rec.Code)
	}
}

func TestTrustedIdentity(t *testing.T) {
	r := newAuthRouter(t, TrustedIdentity())

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(TrustedIdentityHeader, "user-42")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity header, got %d", rec.Code)
	}
}

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"
)

type fakeAdmissionStore struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func newFakeAdmissionStore() *fakeAdmissionStore {
	return &fakeAdmissionStore{counts: make(map[string]int64)}
}

func (f *fakeAdmissionStore) IncrementWindow(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, 0, f.err
	}
	f.counts[key]++
	return f.counts[key], window, nil
}

func newAdmissionRouter(store *fakeAdmissionStore, t *testing.T, rules ...AdmissionRule) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	controller := NewAdmissionController(store, zaptest.NewLogger(t))
	r.Use(controller.Admit(rules...))
	r.GET("/resource", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return r
}

func doRequest(r *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/resource", nil)
	req.RemoteAddr = ip + ":1234"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAdmissionController_QuotaBoundary(t *testing.T) {
	store := newFakeAdmissionStore()
	r := newAdmissionRouter(store, t, AdmissionRule{
		Name:       "global",
		Limit:      3,
		Window:     time.Second,
		Identifier: ClientIPIdentifier(),
	})

	wantStatuses := []int{200, 200, 200, 429}
	for i, want := range wantStatuses {
		rec := doRequest(r, "10.0.0.1")
		if rec.Code != want {
			t.Fatalf("request %d: expected status %d, got %d", i+1, want, rec.Code)
		}
	}
}

func TestAdmissionController_RejectionShape(t *testing.T) {
	store := newFakeAdmissionStore()
	r := newAdmissionRouter(store, t, AdmissionRule{
		Name:       "global",
		Limit:      1,
		Window:     30 * time.Second,
		Identifier: ClientIPIdentifier(),
	})

	doRequest(r, "10.0.0.1")
	rec := doRequest(r, "10.0.0.1")

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"success":false`) || !strings.Contains(body, "too many requests") {
		t.Fatalf("unexpected rejection body: %s", body)
	}
}

func TestAdmissionController_IndependentIdentities(t *testing.T) {
	store := newFakeAdmissionStore()
	r := newAdmissionRouter(store, t, AdmissionRule{
		Name:       "global",
		Limit:      1,
		Window:     time.Second,
		Identifier: ClientIPIdentifier(),
	})

	if rec := doRequest(r, "10.0.0.1"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for first identity, got %d", rec.Code)
	}
	if rec := doRequest(r, "10.0.0.2"); rec.Code != http.StatusOK {
		t.Fatalf("expected independent budget for second identity, got %d", rec.Code)
	}
	if rec := doRequest(r, "10.0.0.1"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 for exhausted identity, got %d", rec.Code)
	}
}

func TestAdmissionController_FailOpen(t *testing.T) {
	store := newFakeAdmissionStore()
	store.err = errors.New("store down")

	r := newAdmissionRouter(store, t, AdmissionRule{
		Name:       "global",
		Limit:      1,
		Window:     time.Second,
		Identifier: ClientIPIdentifier(),
	})

	if rec := doRequest(r, "10.0.0.1"); rec.Code != http.StatusOK {
		t.Fatalf("expected fail-open 200, got %d", rec.Code)
	}
}

func TestAdmissionController_FailClosed(t *testing.T) {
	store := newFakeAdmissionStore()
	store.err = errors.New("store down")

	r := newAdmissionRouter(store, t, AdmissionRule{
		Name:       "sensitive",
		Limit:      1,
		Window:     time.Minute,
		Identifier: ClientIPIdentifier(),
		FailClosed: true,
	})

	rec := doRequest(r, "10.0.0.1")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected fail-closed 503, got %d", rec.Code)
	}
}

func TestAdmissionController_RejectedRequestStillCounts(t *testing.T) {
	store := newFakeAdmissionStore()
	r := newAdmissionRouter(store, t, AdmissionRule{
		Name:       "global",
		Limit:      2,
		Window:     time.Second,
		Identifier: ClientIPIdentifier(),
	})

	for i := 0; i < 5; i++ {
		doRequest(r, "10.0.0.1")
	}

	if got := store.counts["global:10.0.0.1"]; got != 5 {
		t.Fatalf("expected rejected requests to advance the window, count %d", got)
	}
}

func TestAdmissionController_RateLimitHeaders(t *testing.T) {
	store := newFakeAdmissionStore()
	r := newAdmissionRouter(store, t, AdmissionRule{
		Name:       "global",
		Limit:      3,
		Window:     time.Second,
		Identifier: ClientIPIdentifier(),
	})

	rec := doRequest(r, "10.0.0.1")
	if rec.Header().Get("X-RateLimit-Limit") != "3" {
		t.Fatalf("expected limit header 3, got %q", rec.Header().Get("X-RateLimit-Limit"))
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "2" {
		t.Fatalf("expected remaining header 2, got %q", rec.Header().Get("X-RateLimit-Remaining"))
	}
}

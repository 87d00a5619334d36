package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sushihentaime/quill/internal/authservice"
	"github.com/sushihentaime/quill/internal/common"
)

func TestRecoverPanic(t *testing.T) {
	app := newUnitApplication(t)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("something went wrong")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	res := httptest.NewRecorder()

	app.recoverPanic(handler).ServeHTTP(res, req)

	assert.Equal(t, http.StatusInternalServerError, res.Code)
	assert.Equal(t, "close", res.Header().Get("Connection"))
	assert.NotContains(t, res.Body.String(), "something went wrong")
}

func TestAuthenticate(t *testing.T) {
	app := newUnitApplication(t)

	token, err := app.authService.Issuer().Issue("0b8e5f4a-0a57-4c1e-9a43-3f1d2b6f7c10")
	require.NoError(t, err)

	other, err := authservice.NewIssuer("another-secret")
	require.NoError(t, err)
	foreign, err := other.Issue("0b8e5f4a-0a57-4c1e-9a43-3f1d2b6f7c10")
	require.NoError(t, err)

	var gotSubject string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSubject = app.contextGetSubject(r)
		w.WriteHeader(http.StatusOK)
	})

	testCases := []struct {
		name        string
		header      string
		wantStatus  int
		wantSubject string
	}{
		{name: "No Header", wantStatus: http.StatusOK},
		{name: "Valid Token", header: "Bearer " + token, wantStatus: http.StatusOK, wantSubject: "0b8e5f4a-0a57-4c1e-9a43-3f1d2b6f7c10"},
		{name: "Missing Scheme", header: token, wantStatus: http.StatusOK},
		{name: "Wrong Scheme", header: "Basic " + token, wantStatus: http.StatusOK},
		{name: "Garbage Token", header: "Bearer not-a-jwt", wantStatus: http.StatusOK},
		{name: "Other Secret", header: "Bearer " + foreign, wantStatus: http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gotSubject = ""

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			res := httptest.NewRecorder()

			app.authenticate(next).ServeHTTP(res, req)

			assert.Equal(t, tc.wantStatus, res.Code)
			assert.Equal(t, "Authorization", res.Header().Get("Vary"))
			assert.Equal(t, tc.wantSubject, gotSubject)
		})
	}
}

func TestRequireAuthUser(t *testing.T) {
	app := newUnitApplication(t)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	t.Run("Anonymous", func(t *testing.T) {
		res := httptest.NewRecorder()
		app.requireAuthUser(next).ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, res.Code)
		assert.Equal(t, "Bearer", res.Header().Get("WWW-Authenticate"))
	})

	t.Run("Authenticated", func(t *testing.T) {
		req := app.contextSetSubject(httptest.NewRequest(http.MethodGet, "/", nil), "someone")
		res := httptest.NewRecorder()
		app.requireAuthUser(next).ServeHTTP(res, req)
		assert.Equal(t, http.StatusTeapot, res.Code)
	})
}

type stubLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (l *stubLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.keys = append(l.keys, key)
	return l.allowed, l.err
}

func TestRateLimit(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("Disabled", func(t *testing.T) {
		app := newUnitApplication(t)
		res := httptest.NewRecorder()
		app.rateLimit(next).ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, res.Code)
	})

	t.Run("Keyed By IP", func(t *testing.T) {
		app := newUnitApplication(t)
		limiter := &stubLimiter{allowed: true}
		app.limiter = limiter

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.7:51234"
		res := httptest.NewRecorder()
		app.rateLimit(next).ServeHTTP(res, req)

		assert.Equal(t, http.StatusOK, res.Code)
		assert.Equal(t, []string{"10.0.0.7"}, limiter.keys)
	})

	t.Run("Denied", func(t *testing.T) {
		app := newUnitApplication(t)
		app.limiter = &stubLimiter{allowed: false}

		res := httptest.NewRecorder()
		app.rateLimit(next).ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusTooManyRequests, res.Code)
		assert.JSONEq(t, `{"error":"rate limit exceeded"}`, res.Body.String())
	})

	t.Run("Limiter Error Fails Open", func(t *testing.T) {
		app := newUnitApplication(t)
		app.limiter = &stubLimiter{allowed: true, err: errors.New("redis down")}

		res := httptest.NewRecorder()
		app.rateLimit(next).ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, res.Code)
	})

	t.Run("Memory Limiter Burst", func(t *testing.T) {
		app := newUnitApplication(t)
		app.limiter = common.NewMemoryLimiter(1, 2, time.Minute)

		codes := make([]int, 3)
		for i := range codes {
			res := httptest.NewRecorder()
			app.rateLimit(next).ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/", nil))
			codes[i] = res.Code
		}

		assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	})
}

func TestAuthenticate_InvalidTokenOnlyBlocksProtectedRoutes(t *testing.T) {
	app := newUnitApplication(t)

	other, err := authservice.NewIssuer("another-secret")
	require.NoError(t, err)
	foreign, err := other.Issue("0b8e5f4a-0a57-4c1e-9a43-3f1d2b6f7c10")
	require.NoError(t, err)

	public := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	protected := app.requireAuthUser(public)

	for _, header := range []string{"Bearer " + foreign, "Bearer not-a-jwt", "Basic abc"} {
		res := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/blogs", nil)
		req.Header.Set("Authorization", header)
		app.authenticate(public).ServeHTTP(res, req)
		assert.Equal(t, http.StatusOK, res.Code, header)

		res = httptest.NewRecorder()
		req = httptest.NewRequest(http.MethodGet, "/user/current", nil)
		req.Header.Set("Authorization", header)
		app.authenticate(protected).ServeHTTP(res, req)
		assert.Equal(t, http.StatusUnauthorized, res.Code, header)
	}
}

func TestStatusRecorder_Unwrap(t *testing.T) {
	res := httptest.NewRecorder()
	rec := &statusRecorder{ResponseWriter: res, status: http.StatusOK}

	assert.Same(t, res, rec.Unwrap())
	require.NoError(t, http.NewResponseController(rec).Flush())
	assert.True(t, res.Flushed)
}

func TestRouteLabel(t *testing.T) {
	testCases := map[string]string{
		"/health":          "/health",
		"/users":           "/users",
		"/users/abc":       "/users/:id",
		"/users/abc/x":     "other",
		"/blogs/some-post": "/blogs/:slug",
		"/auth/login":      "/auth/login",
		"/user/current":    "/user/current",
		"/nope":            "other",
	}

	for path, want := range testCases {
		assert.Equal(t, want, routeLabel(path), path)
	}
}

func TestMetrics_RecordsStatus(t *testing.T) {
	app := newUnitApplication(t)

	handler := app.metrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/users/missing", nil))

	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestRoutes_WithoutStore(t *testing.T) {
	app := newUnitApplication(t)
	ts := newTestServer(t, app.routes())

	status, _, raw := ts.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "available", decode[envelope](t, raw)["status"])

	status, _, _ = ts.do(t, http.MethodGet, "/does-not-exist", nil, "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _, _ = ts.do(t, http.MethodDelete, "/blogs", nil, "")
	assert.Equal(t, http.StatusMethodNotAllowed, status)

	status, _, _ = ts.do(t, http.MethodGet, "/user/current", nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _, _ = ts.do(t, http.MethodPost, "/blogs", map[string]any{"title": "x"}, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _, _ = ts.do(t, http.MethodGet, "/users?limit=abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _, _ = ts.do(t, http.MethodGet, "/blogs?page=x", nil, "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _, raw = ts.do(t, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(raw), "quill_http_requests_total")

	status, _, _ = ts.do(t, http.MethodPost, "/auth/login", map[string]any{"email": "a@b.co", "password": "x"}, "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sushihentaime/quill/internal/authservice"
	"github.com/sushihentaime/quill/internal/blogservice"
	"github.com/sushihentaime/quill/internal/common"
	"github.com/sushihentaime/quill/internal/userservice"
)

const (
	testSecret       = "test-secret"
	testDemoEmail    = "demo@example.com"
	testDemoPassword = "Demo_1234!"
)

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	ts := httptest.NewServer(h)

	t.Cleanup(ts.Close)

	return &testServer{ts}
}

func testConfig(t *testing.T) *Config {
	cfg, err := loadConfig(t.TempDir() + "/missing.env")
	require.NoError(t, err)

	cfg.Auth.JWTSecret = testSecret
	cfg.Auth.DemoEmail = testDemoEmail
	cfg.Auth.DemoPassword = testDemoPassword
	cfg.RateLimit.Enabled = false

	return cfg
}

// newUnitApplication has no database; only middleware and routes that never
// reach a store can be exercised with it.
func newUnitApplication(t *testing.T) *application {
	cfg := testConfig(t)

	issuer, err := authservice.NewIssuer(cfg.Auth.JWTSecret)
	require.NoError(t, err)

	authService, err := authservice.NewAuthService(nil, issuer, "", "")
	require.NoError(t, err)

	return &application{
		config:      cfg,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		authService: authService,
	}
}

func newTestApplication(t *testing.T) (*application, *sql.DB) {
	db := common.TestDB(t)
	cfg := testConfig(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	issuer, err := authservice.NewIssuer(cfg.Auth.JWTSecret)
	require.NoError(t, err)

	userService := userservice.NewUserService(db, nil, logger)

	authService, err := authservice.NewAuthService(userService, issuer, cfg.Auth.DemoEmail, cfg.Auth.DemoPassword)
	require.NoError(t, err)

	app := &application{
		config:      cfg,
		logger:      logger,
		userService: userService,
		blogService: blogservice.NewBlogService(db, logger),
		authService: authService,
	}

	return app, db
}

func (ts *testServer) do(t *testing.T, method, path string, payload any, token string) (int, http.Header, []byte) {
	var body io.Reader
	if payload != nil {
		js, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(js)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	require.NoError(t, err)

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	return res.StatusCode, res.Header, raw
}

func decode[T any](t *testing.T, raw []byte) T {
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

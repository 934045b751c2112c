package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/spooltrack/internal/analysis"
	"github.com/Simplici0/spooltrack/internal/auth"
	"github.com/Simplici0/spooltrack/internal/config"
	"github.com/Simplici0/spooltrack/internal/db"
	"github.com/Simplici0/spooltrack/internal/migrations"
	"github.com/Simplici0/spooltrack/internal/seed"
)

const (
	testEmail    = "admin@example.com"
	testPassword = "correct horse"
)

var testNow = time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

type fakeAnalyzer struct {
	est  analysis.Estimate
	err  error
	last analysis.Request
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, req analysis.Request) (analysis.Estimate, error) {
	f.last = req
	return f.est, f.err
}

func newTestServer(t *testing.T) *server {
	t.Helper()

	dir := t.TempDir()
	database, err := db.Open(filepath.Join(dir, "server.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, migrations.Up(database))

	_, err = seed.Run(database, seed.Config{AdminEmail: testEmail, AdminPassword: testPassword})
	require.NoError(t, err)

	cfg := config.Config{
		Env:             "development",
		SessionSecret:   "test-secret",
		SessionTTLHours: 1,
		LoginRatePerMin: 5,
		StorageBackend:  "local",
		UploadDir:       filepath.Join(dir, "uploads"),
		UploadBaseURL:   "/files",
	}
	srv, err := newServer(cfg, database)
	require.NoError(t, err)
	srv.analyzer = &fakeAnalyzer{}
	srv.now = func() time.Time { return testNow }
	return srv
}

// authed returns a request carrying the test owner, as authMiddleware would.
func authed(method, target string, body any, params map[string]string) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")

	ctx := auth.WithOwner(req.Context(), testEmail)
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func login(t *testing.T, h http.Handler) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"email": testEmail, "password": testPassword})
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	req.RemoteAddr = "192.0.2.10:4000"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return decodeBody[auth.Session](t, rr).Token
}

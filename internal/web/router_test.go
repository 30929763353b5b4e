package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jusunglee/singlish/internal/converter"
	"github.com/jusunglee/singlish/internal/db/sqlite"
	"github.com/jusunglee/singlish/internal/logger"
	"github.com/jusunglee/singlish/internal/transliteration"
	"github.com/jusunglee/singlish/internal/web/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	repo, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	engine, err := transliteration.Default()
	require.NoError(t, err)

	srv := httptest.NewServer(NewRouter(repo, converter.New(engine), logger.Discard(), opts).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string, header map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRouterConvert(t *testing.T) {
	srv := newTestServer(t, Options{})

	resp := do(t, http.MethodPost, srv.URL+"/api/v1/convert", `{"text":"dhaen meeka karanna"}`, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	resp = do(t, http.MethodDelete, srv.URL+"/api/v1/convert", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestRouterAdminRoutesNeedKey(t *testing.T) {
	srv := newTestServer(t, Options{APIKey: "secret"})

	resp := do(t, http.MethodPost, srv.URL+"/api/v1/passthrough", `{"word":"jiraa"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/api/v1/feedback", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = do(t, http.MethodPost, srv.URL+"/api/v1/passthrough", `{"word":"jiraa"}`, map[string]string{"X-API-Key": "secret"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/api/v1/feedback", "", map[string]string{"X-API-Key": "secret"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouterFeedbackRateLimited(t *testing.T) {
	srv := newTestServer(t, Options{Limiter: middleware.NewRateLimiter(1, time.Minute)})

	body := `{"input":"mama","expected":"මම"}`
	resp := do(t, http.MethodPost, srv.URL+"/api/v1/feedback", body, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = do(t, http.MethodPost, srv.URL+"/api/v1/feedback", body, nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestRouterBodyLimit(t *testing.T) {
	srv := newTestServer(t, Options{MaxInputBytes: 16})

	resp := do(t, http.MethodPost, srv.URL+"/api/v1/convert", `{"text":"`+strings.Repeat("a", 4096)+`"}`, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/docshelf/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/docshelf/backend/internal/infrastructure/logging"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Server.Port = "0"
	cfg.Logging.Development = true
	cfg.RateLimit.Enabled = false
	cfg.Documents.DataDir = filepath.Join(root, "data")
	cfg.Documents.ConfigDir = filepath.Join(root, "config")
	return cfg
}

func startServer(t *testing.T, cfg *config.Config) (*Server, *httptest.Server) {
	t.Helper()
	srv, err := NewServer(cfg, logging.NewNop(), nil)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		assert.NoError(t, srv.Shutdown(ctx))
	})
	return srv, ts
}

func post(t *testing.T, url, body string) (int, string) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(data)
}

func TestNewServerCreatesDefaultDirectory(t *testing.T) {
	cfg := testConfig(t)
	srv, _ := startServer(t, cfg)

	info, err := os.Stat(filepath.Join(cfg.Documents.DataDir, "documents"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, "127.0.0.1:0", srv.Addr())
}

func TestNewServerFailsWhenDirectoryCannotBeCreated(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(cfg.Documents.DataDir, 0o755))
	// A regular file where the documents directory belongs
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Documents.DataDir, "documents"), nil, 0o644))

	_, err := NewServer(cfg, logging.NewNop(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "documents directory")
}

func TestNewServerRejectsBadAppID(t *testing.T) {
	cfg := testConfig(t)
	cfg.Documents.AppID = "../escape"

	_, err := NewServer(cfg, logging.NewNop(), nil)
	assert.Error(t, err)
}

func TestCommandsEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	_, ts := startServer(t, cfg)

	status, body := post(t, ts.URL+"/commands/save_file", `{"file_name":"notes.txt","file_data":"aGVsbG8="}`)
	require.Equal(t, http.StatusOK, status, body)
	want := filepath.Join(cfg.Documents.DataDir, "documents", "notes.txt")
	assert.Contains(t, body, want)

	status, body = post(t, ts.URL+"/commands/get_file_path", `{"file_name":"notes.txt"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, want)

	status, body = post(t, ts.URL+"/commands/get_file_path", `{"file_name":"missing.txt"}`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body, `"kind":"not_found"`)
}

func TestLocationSurvivesRestart(t *testing.T) {
	cfg := testConfig(t)
	custom := filepath.Join(t.TempDir(), "docs")

	first, err := NewServer(cfg, logging.NewNop(), nil)
	require.NoError(t, err)
	require.NoError(t, first.Manager().SetLocation(custom))
	require.NoError(t, first.Shutdown(context.Background()))

	second, err := NewServer(cfg, logging.NewNop(), nil)
	require.NoError(t, err)
	defer second.Shutdown(context.Background())

	dir, err := second.Manager().EffectiveDirectory()
	require.NoError(t, err)
	assert.Equal(t, custom, dir)
}

func TestEventsStream(t *testing.T) {
	cfg := testConfig(t)
	_, ts := startServer(t, cfg)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/events", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var msg map[string]interface{}
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, "connected", msg["type"])

	custom := filepath.Join(t.TempDir(), "custom")
	status, body := post(t, ts.URL+"/commands/set_document_path", `{"path":"`+filepath.ToSlash(custom)+`"}`)
	require.Equal(t, http.StatusOK, status, body)

	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "location_set", msg["type"])
	data := msg["data"].(map[string]interface{})
	assert.Equal(t, filepath.ToSlash(custom), data["configured_path"])
}

func TestMetricsAndHealth(t *testing.T) {
	_, ts := startServer(t, testConfig(t))

	status, _ := post(t, ts.URL+"/commands/get_document_path", "")
	require.Equal(t, http.StatusOK, status)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(data), "docshelf_service_calls_total")
	assert.Contains(t, string(data), `path="/commands/:command"`)

	resp, err = http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Trace-ID"))
}

func TestRateLimitEnabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.RequestsPerSecond = 1
	cfg.RateLimit.Burst = 1
	_, ts := startServer(t, cfg)

	status, _ := post(t, ts.URL+"/commands/get_document_path", "")
	assert.Equal(t, http.StatusOK, status)
	status, body := post(t, ts.URL+"/commands/get_document_path", "")
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Contains(t, body, `"kind":"rate_limited"`)
}

func TestRunAndShutdown(t *testing.T) {
	srv, err := NewServer(testConfig(t), logging.NewNop(), nil)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.Run() }()
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Shutdown")
	}
}

func TestGlobalRateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.Global = true
	cfg.RateLimit.RequestsPerSecond = 1
	cfg.RateLimit.Burst = 1
	_, ts := startServer(t, cfg)

	status, _ := post(t, ts.URL+"/commands/get_document_path", "")
	assert.Equal(t, http.StatusOK, status)
	status, _ = post(t, ts.URL+"/commands/get_document_path", "")
	assert.Equal(t, http.StatusTooManyRequests, status)
}

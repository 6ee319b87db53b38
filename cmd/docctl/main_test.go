package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/docshelf/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/docshelf/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/docshelf/backend/internal/infrastructure/server"
)

func startBackend(t *testing.T) (string, string) {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.RateLimit.Enabled = false
	cfg.Documents.DataDir = filepath.Join(root, "data")
	cfg.Documents.ConfigDir = filepath.Join(root, "config")

	srv, err := server.NewServer(cfg, logging.NewNop(), nil)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Shutdown(context.Background())
	})
	return ts.URL, filepath.Join(cfg.Documents.DataDir, "documents")
}

func docctl(t *testing.T, url, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), append([]string{"-server", url}, args...), strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestSaveAndLocate(t *testing.T) {
	url, defaultDir := startBackend(t)
	want := filepath.Join(defaultDir, "notes.txt")

	code, out, errOut := docctl(t, url, "hello", "save", "notes.txt")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, want+"\n", out)

	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	code, out, _ = docctl(t, url, "", "locate", "notes.txt")
	assert.Equal(t, 0, code)
	assert.Equal(t, want+"\n", out)

	code, out, _ = docctl(t, url, "", "-format", "json", "diagnose", "notes.txt")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, `"file_name"`)
}

func TestSaveFromFile(t *testing.T) {
	url, defaultDir := startBackend(t)
	src := filepath.Join(t.TempDir(), "src.bin")
	require.NoError(t, os.WriteFile(src, []byte{9, 8, 7}, 0o644))

	code, _, errOut := docctl(t, url, "", "save", "copy.bin", src)
	require.Equal(t, 0, code, errOut)

	data, err := os.ReadFile(filepath.Join(defaultDir, "copy.bin"))
	require.NoError(t, err)
	assert.Equal(t, []byte{9, 8, 7}, data)
}

func TestSetGetClear(t *testing.T) {
	url, defaultDir := startBackend(t)
	custom := filepath.Join(t.TempDir(), "docs")

	code, _, errOut := docctl(t, url, "", "set", custom)
	require.Equal(t, 0, code, errOut)

	code, out, _ := docctl(t, url, "", "get")
	assert.Equal(t, 0, code)
	assert.Equal(t, custom+"\n", out)

	code, out, _ = docctl(t, url, "", "clear")
	assert.Equal(t, 0, code)
	assert.Equal(t, defaultDir+"\n", out)
}

func TestFailures(t *testing.T) {
	url, _ := startBackend(t)

	code, _, errOut := docctl(t, url, "", "locate", "missing.txt")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "not_found")

	code, _, errOut = docctl(t, url, "x", "save", "../../etc/passwd")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "path_validation")
}

func TestUsage(t *testing.T) {
	code, _, errOut := docctl(t, "http://127.0.0.1:1", "")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "Usage: docctl")

	code, _, errOut = docctl(t, "http://127.0.0.1:1", "", "frobnicate")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, `unknown command "frobnicate"`)

	code, _, _ = docctl(t, "http://127.0.0.1:1", "", "set")
	assert.Equal(t, 2, code)

	code, _, _ = docctl(t, "http://127.0.0.1:1", "", "-h")
	assert.Equal(t, 0, code)
}

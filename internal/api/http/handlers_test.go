package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/docshelf/backend/internal/documents"
	"github.com/GriffinCanCode/docshelf/backend/internal/infrastructure/monitoring"
	docsprovider "github.com/GriffinCanCode/docshelf/backend/internal/providers/documents"
	"github.com/GriffinCanCode/docshelf/backend/internal/service"
	"github.com/GriffinCanCode/docshelf/backend/internal/shared/paths"
	"github.com/GriffinCanCode/docshelf/backend/internal/shared/types"
)

type testEnv struct {
	router  *gin.Engine
	layout  paths.Layout
	metrics *monitoring.Metrics
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	root := t.TempDir()
	layout := paths.Layout{
		AppID:     "docshelf",
		DataDir:   filepath.Join(root, "data"),
		ConfigDir: filepath.Join(root, "config"),
	}
	manager := documents.NewManager(layout, documents.Options{})
	registry := service.NewRegistry()
	require.NoError(t, registry.Register(docsprovider.NewProvider(manager, nil)))
	metrics := monitoring.NewMetrics()

	h := NewHandlers(registry, manager, nil, metrics, nil, nil)
	router := gin.New()
	router.GET("/", h.Root)
	router.GET("/health", h.Health)
	router.GET("/services", h.ListServices)
	router.POST("/services/execute", h.ExecuteService)
	router.POST("/commands/:command", h.Command)

	return &testEnv{router: router, layout: layout, metrics: metrics}
}

func (e *testEnv) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, types.Result) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var result types.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result), w.Body.String())
	return w, result
}

func TestCommandRoundTrip(t *testing.T) {
	env := setup(t)
	want := filepath.Join(env.layout.DataDir, "documents", "notes.txt")

	w, result := env.do(t, http.MethodPost, "/commands/save_file", `{"file_name":"notes.txt","file_data":"aGVsbG8="}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, result.Success)
	assert.Equal(t, want, result.Data["value"])

	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	w, result = env.do(t, http.MethodPost, "/commands/get_file_path", `{"file_name":"notes.txt"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, want, result.Data["value"])
}

func TestCommandEmptyBody(t *testing.T) {
	env := setup(t)

	w, result := env.do(t, http.MethodPost, "/commands/get_document_path", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, filepath.Join(env.layout.DataDir, "documents"), result.Data["value"])
}

func TestCommandByteArray(t *testing.T) {
	env := setup(t)
	custom := filepath.Join(t.TempDir(), "custom", "docs")

	body, err := json.Marshal(map[string]string{"path": custom})
	require.NoError(t, err)
	w, _ := env.do(t, http.MethodPost, "/commands/set_document_path", string(body))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, result := env.do(t, http.MethodPost, "/commands/save_file", `{"file_name":"a.bin","file_data":[1,2,3]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, filepath.Join(custom, "a.bin"), result.Data["value"])

	data, err := os.ReadFile(filepath.Join(custom, "a.bin"))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)
}

func TestCommandStatusMapping(t *testing.T) {
	env := setup(t)

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
		wantKind   string
	}{
		{
			name:       "traversal",
			path:       "/commands/save_file",
			body:       `{"file_name":"../../etc/passwd","file_data":"eA=="}`,
			wantStatus: http.StatusBadRequest,
			wantKind:   "path_validation",
		},
		{
			name:       "missing file",
			path:       "/commands/get_file_path",
			body:       `{"file_name":"missing.txt"}`,
			wantStatus: http.StatusNotFound,
			wantKind:   "not_found",
		},
		{
			name:       "relative location",
			path:       "/commands/set_document_path",
			body:       `{"path":"relative/docs"}`,
			wantStatus: http.StatusInternalServerError,
			wantKind:   "directory_create",
		},
		{
			name:       "malformed body",
			path:       "/commands/save_file",
			body:       `[1,2`,
			wantStatus: http.StatusBadRequest,
			wantKind:   docsprovider.KindInvalidRequest,
		},
		{
			name:       "bad command name",
			path:       "/commands/save.file",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
			wantKind:   docsprovider.KindInvalidRequest,
		},
		{
			name:       "unknown command",
			path:       "/commands/delete_everything",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
			wantKind:   docsprovider.KindInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, result := env.do(t, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.False(t, result.Success)
			assert.Equal(t, tt.wantKind, result.Kind)
			require.NotNil(t, result.Error)
		})
	}

	assert.Equal(t, float64(1), testutil.ToFloat64(
		env.metrics.ServiceCalls.WithLabelValues("documents", "documents.get_file_path", "not_found")))
}

func TestExecuteService(t *testing.T) {
	env := setup(t)

	w, result := env.do(t, http.MethodPost, "/services/execute", `{"tool_id":"documents.get_document_path"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, result.Success)

	w, result = env.do(t, http.MethodPost, "/services/execute", `{"tool_id":"storage.get"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "unknown_service", result.Kind)

	w, result = env.do(t, http.MethodPost, "/services/execute", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, docsprovider.KindInvalidRequest, result.Kind)

	w, _ = env.do(t, http.MethodPost, "/services/execute", `{"tool_id":"documents.get_document_path","app_id":"../x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListServices(t *testing.T) {
	env := setup(t)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/services?category=storage", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Services []types.Service `json:"services"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Services, 1)
	assert.Equal(t, "documents", body.Services[0].ID)

	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/services?category=filesystem", nil))
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Empty(t, body.Services)

	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/services?category=Bad!", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealth(t *testing.T) {
	env := setup(t)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])

	docs := body["documents"].(map[string]interface{})
	assert.Equal(t, false, docs["configured"])
	assert.Equal(t, filepath.Join(env.layout.DataDir, "documents"), docs["effective_dir"])
	assert.Equal(t, filepath.Join(env.layout.ConfigDir, "document_path.txt"), docs["record_path"])
	assert.Contains(t, body, "metrics")
	assert.NotContains(t, body, "ws_clients")
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusOK, StatusFor(&types.Result{Success: true}))
	assert.Equal(t, http.StatusTooManyRequests, StatusFor(&types.Result{Kind: "rate_limited"}))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(&types.Result{Kind: "io_write"}))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(&types.Result{Kind: "persistence"}))
}

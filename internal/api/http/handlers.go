package http

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/docshelf/backend/internal/api/ws"
	"github.com/GriffinCanCode/docshelf/backend/internal/documents"
	"github.com/GriffinCanCode/docshelf/backend/internal/infrastructure/errtrack"
	"github.com/GriffinCanCode/docshelf/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/docshelf/backend/internal/infrastructure/tracing"
	docsprovider "github.com/GriffinCanCode/docshelf/backend/internal/providers/documents"
	"github.com/GriffinCanCode/docshelf/backend/internal/service"
	"github.com/GriffinCanCode/docshelf/backend/internal/shared/id"
	"github.com/GriffinCanCode/docshelf/backend/internal/shared/types"
	"github.com/GriffinCanCode/docshelf/backend/internal/shared/utils"
)

// Version is reported by the root and health endpoints
const Version = "0.1.0"

// Handlers contains all HTTP handlers
type Handlers struct {
	registry *service.Registry
	manager  *documents.Manager
	hub      *ws.Hub
	metrics  *monitoring.Metrics
	reporter *errtrack.Reporter
	logger   *zap.Logger
}

// NewHandlers creates a new handler set. hub, metrics, reporter and logger
// may be nil.
func NewHandlers(
	registry *service.Registry,
	manager *documents.Manager,
	hub *ws.Hub,
	metrics *monitoring.Metrics,
	reporter *errtrack.Reporter,
	logger *zap.Logger,
) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		registry: registry,
		manager:  manager,
		hub:      hub,
		metrics:  metrics,
		reporter: reporter,
		logger:   logger.Named("http"),
	}
}

// Root handles the liveness check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "docshelf",
		"version": Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	docs := gin.H{
		"policy":      h.manager.Policy().String(),
		"record_path": h.manager.RecordPath(),
	}
	configured, ok := h.manager.Location()
	docs["configured"] = ok
	if ok {
		docs["configured_path"] = configured
	}

	status := "healthy"
	if dir, err := h.manager.EffectiveDirectory(); err != nil {
		status = "degraded"
		docs["error"] = err.Error()
	} else {
		docs["effective_dir"] = dir
	}

	body := gin.H{
		"status":           status,
		"version":          Version,
		"documents":        docs,
		"service_registry": h.registry.Stats(),
	}
	if h.metrics != nil {
		body["metrics"] = h.metrics.Snapshot()
	}
	if h.hub != nil {
		body["ws_clients"] = h.hub.Clients()
	}

	c.JSON(http.StatusOK, body)
}

// ListServices lists all available services
func (h *Handlers) ListServices(c *gin.Context) {
	categoryStr := c.Query("category")

	if err := utils.ValidateCategory(categoryStr, false); err != nil {
		reject(c, err.Error())
		return
	}

	var category *types.Category
	if categoryStr != "" {
		cat := types.Category(categoryStr)
		category = &cat
	}

	c.JSON(http.StatusOK, gin.H{
		"services": h.registry.List(category),
		"stats":    h.registry.Stats(),
	})
}

// ExecuteService executes a service tool
func (h *Handlers) ExecuteService(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, utils.MaxRequestBody)

	var req types.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		reject(c, err.Error())
		return
	}

	if err := utils.ValidateToolID(req.ToolID, "tool_id", true); err != nil {
		reject(c, err.Error())
		return
	}

	if req.AppID != nil {
		if err := utils.ValidateID(*req.AppID, "app_id", false); err != nil {
			reject(c, err.Error())
			return
		}
	}

	h.execute(c, req.ToolID, req.Params, req.AppID)
}

// Command runs documents.<command> with the JSON body as parameters. An
// empty body means no parameters.
func (h *Handlers) Command(c *gin.Context) {
	command := c.Param("command")
	if err := utils.ValidateID(command, "command", true); err != nil {
		reject(c, err.Error())
		return
	}

	params, err := readParams(c)
	if err != nil {
		reject(c, err.Error())
		return
	}

	h.execute(c, docsprovider.ServiceID+"."+command, params, nil)
}

func (h *Handlers) execute(c *gin.Context, toolID string, params map[string]interface{}, appID *string) {
	ctx := c.Request.Context()
	appCtx := &types.Context{
		AppID:     appID,
		RequestID: id.NewRequestID().String(),
	}

	result, err := h.registry.Execute(ctx, toolID, params, appCtx)
	if result == nil {
		msg := "service returned no result"
		if err != nil {
			msg = err.Error()
		}
		result = &types.Result{Success: false, Error: &msg, Kind: "internal"}
	}

	status := StatusFor(result)
	h.record(toolID, result)

	switch {
	case status >= http.StatusInternalServerError:
		failure := errors.New(*result.Error)
		h.logger.Error("Command failed",
			zap.String("tool_id", toolID),
			zap.String("request_id", appCtx.RequestID),
			zap.String("trace_id", tracing.GetTraceID(ctx).String()),
			zap.String("kind", result.Kind),
			zap.Error(failure),
		)
		h.reporter.CaptureError(failure, map[string]string{
			"tool_id":    toolID,
			"kind":       result.Kind,
			"request_id": appCtx.RequestID,
		})
	case !result.Success:
		h.logger.Debug("Command rejected",
			zap.String("tool_id", toolID),
			zap.String("kind", result.Kind),
			zap.String("error", *result.Error),
		)
	}

	c.JSON(status, result)
}

func (h *Handlers) record(toolID string, result *types.Result) {
	if h.metrics == nil {
		return
	}
	serviceID, _, _ := strings.Cut(toolID, ".")
	status := "success"
	if !result.Success {
		status = result.Kind
	}
	h.metrics.RecordServiceCall(serviceID, toolID, status)
}

// StatusFor maps a result to its HTTP status code
func StatusFor(result *types.Result) int {
	if result.Success {
		return http.StatusOK
	}

	switch result.Kind {
	case "path_validation", docsprovider.KindInvalidRequest:
		return http.StatusBadRequest
	case "not_found", "unknown_service":
		return http.StatusNotFound
	case "rate_limited":
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// reject answers a request that never reached a provider
func reject(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, types.Result{
		Success: false,
		Error:   &message,
		Kind:    docsprovider.KindInvalidRequest,
	})
}

func readParams(c *gin.Context) (map[string]interface{}, error) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, utils.MaxRequestBody))
	if err != nil {
		return nil, err
	}

	params := map[string]interface{}{}
	if len(bytes.TrimSpace(body)) == 0 {
		return params, nil
	}
	if err := sonic.Unmarshal(body, &params); err != nil {
		return nil, errors.New("request body must be a JSON object")
	}
	if params == nil {
		params = map[string]interface{}{}
	}
	return params, nil
}

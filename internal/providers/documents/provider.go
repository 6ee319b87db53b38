package documents

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/docshelf/backend/internal/documents"
	"github.com/GriffinCanCode/docshelf/backend/internal/shared/types"
)

// ServiceID is the registry ID of the documents service
const ServiceID = "documents"

// Tool IDs
const (
	ToolSetDocumentPath   = ServiceID + ".set_document_path"
	ToolGetDocumentPath   = ServiceID + ".get_document_path"
	ToolClearDocumentPath = ServiceID + ".clear_document_path"
	ToolSaveFile          = ServiceID + ".save_file"
	ToolGetFilePath       = ServiceID + ".get_file_path"
	ToolTestFileAccess    = ServiceID + ".test_file_access"
)

// KindInvalidRequest marks results rejected before reaching the manager
const KindInvalidRequest = "invalid_request"

// Provider exposes the document manager as a service
type Provider struct {
	manager *documents.Manager
	logger  *zap.Logger
}

// NewProvider creates a documents provider backed by manager
func NewProvider(manager *documents.Manager, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		manager: manager,
		logger:  logger.Named("provider.documents"),
	}
}

// Definition returns service metadata
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:          ServiceID,
		Name:        "Documents Service",
		Description: "Choose where documents live and save files there",
		Category:    types.CategoryStorage,
		Capabilities: []string{
			"configure_location",
			"write",
			"locate",
			"diagnose",
		},
		Tools: []types.Tool{
			{
				ID:          ToolSetDocumentPath,
				Name:        "Set Document Location",
				Description: "Use an absolute directory for documents, creating it if needed",
				Parameters: []types.Parameter{
					{Name: "path", Type: "string", Description: "Absolute directory path", Required: true},
				},
				Returns: "void",
			},
			{
				ID:          ToolGetDocumentPath,
				Name:        "Get Document Location",
				Description: "Return the directory currently used for documents",
				Parameters:  []types.Parameter{},
				Returns:     "string",
			},
			{
				ID:          ToolClearDocumentPath,
				Name:        "Clear Document Location",
				Description: "Revert to the default documents directory",
				Parameters:  []types.Parameter{},
				Returns:     "void",
			},
			{
				ID:          ToolSaveFile,
				Name:        "Save File",
				Description: "Write bytes to a file in the documents directory, replacing it",
				Parameters: []types.Parameter{
					{Name: "file_name", Type: "string", Description: "File name relative to the documents directory", Required: true},
					{Name: "file_data", Type: "bytes", Description: "Base64 string or array of byte values", Required: true},
				},
				Returns: "string",
			},
			{
				ID:          ToolGetFilePath,
				Name:        "Get File Path",
				Description: "Return the path of an existing file in the documents directory",
				Parameters: []types.Parameter{
					{Name: "file_name", Type: "string", Description: "File name relative to the documents directory", Required: true},
				},
				Returns: "string",
			},
			{
				ID:          ToolTestFileAccess,
				Name:        "Test File Access",
				Description: "Describe how a file name resolves and whether it can be read",
				Parameters: []types.Parameter{
					{Name: "file_name", Type: "string", Description: "File name to inspect", Required: true},
					{Name: "format", Type: "string", Description: "text (default), json, yaml or toml", Required: false},
				},
				Returns: "string",
			},
		},
	}
}

// Execute runs a documents tool
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	switch toolID {
	case ToolSetDocumentPath:
		return p.setDocumentPath(params)
	case ToolGetDocumentPath:
		return p.getDocumentPath()
	case ToolClearDocumentPath:
		return p.clearDocumentPath()
	case ToolSaveFile:
		return p.saveFile(params)
	case ToolGetFilePath:
		return p.getFilePath(params)
	case ToolTestFileAccess:
		return p.testFileAccess(params)
	default:
		return invalid(fmt.Sprintf("unknown tool: %s", toolID))
	}
}

func (p *Provider) setDocumentPath(params map[string]interface{}) (*types.Result, error) {
	path, ok := params["path"].(string)
	if !ok {
		return invalid("path parameter required")
	}

	if err := p.manager.SetLocation(path); err != nil {
		return failure(err)
	}
	return success(nil)
}

func (p *Provider) getDocumentPath() (*types.Result, error) {
	dir, err := p.manager.EffectiveDirectory()
	if err != nil {
		return failure(err)
	}
	return success(dir)
}

func (p *Provider) clearDocumentPath() (*types.Result, error) {
	if err := p.manager.ClearLocation(); err != nil {
		return failure(err)
	}
	return success(nil)
}

func (p *Provider) saveFile(params map[string]interface{}) (*types.Result, error) {
	fileName, ok := params["file_name"].(string)
	if !ok {
		return invalid("file_name parameter required")
	}

	data, err := DecodeFileData(params["file_data"])
	if err != nil {
		return invalid(err.Error())
	}

	path, err := p.manager.Save(fileName, data)
	if err != nil {
		return failure(err)
	}
	return success(path)
}

func (p *Provider) getFilePath(params map[string]interface{}) (*types.Result, error) {
	fileName, ok := params["file_name"].(string)
	if !ok {
		return invalid("file_name parameter required")
	}

	path, err := p.manager.Locate(fileName)
	if err != nil {
		return failure(err)
	}
	return success(path)
}

func (p *Provider) testFileAccess(params map[string]interface{}) (*types.Result, error) {
	fileName, ok := params["file_name"].(string)
	if !ok {
		return invalid("file_name parameter required")
	}
	format, _ := params["format"].(string)

	report := p.manager.Diagnose(fileName)
	text, err := report.Format(format)
	if err != nil {
		return invalid(err.Error())
	}

	p.logger.Debug("File access diagnosed",
		zap.String("file_name", fileName),
		zap.Bool("exists", report.Exists),
		zap.Bool("readable", report.Readable()),
	)

	return &types.Result{
		Success: true,
		Data: map[string]interface{}{
			"value":    text,
			"exists":   report.Exists,
			"readable": report.Readable(),
		},
	}, nil
}

// DecodeFileData accepts file contents as a base64 string, an array of byte
// values, or raw bytes
func DecodeFileData(v interface{}) ([]byte, error) {
	switch data := v.(type) {
	case nil:
		return nil, fmt.Errorf("file_data parameter required")
	case []byte:
		return data, nil
	case string:
		decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(data))
		if err != nil {
			return nil, fmt.Errorf("file_data is not valid base64: %w", err)
		}
		return decoded, nil
	case []interface{}:
		out := make([]byte, len(data))
		for i, item := range data {
			b, err := byteValue(item)
			if err != nil {
				return nil, fmt.Errorf("file_data[%d]: %w", i, err)
			}
			out[i] = b
		}
		return out, nil
	default:
		return nil, fmt.Errorf("file_data must be a base64 string or an array of bytes")
	}
}

func byteValue(v interface{}) (byte, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("not a number: %s", n)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("not a number: %v", v)
	}

	if f != math.Trunc(f) || f < 0 || f > 255 {
		return 0, fmt.Errorf("%v is not a byte value", v)
	}
	return byte(f), nil
}

func success(value interface{}) (*types.Result, error) {
	return &types.Result{
		Success: true,
		Data:    map[string]interface{}{"value": value},
	}, nil
}

func failure(err error) (*types.Result, error) {
	msg := err.Error()
	return &types.Result{
		Success: false,
		Error:   &msg,
		Kind:    documents.KindOf(err),
	}, nil
}

func invalid(message string) (*types.Result, error) {
	return &types.Result{
		Success: false,
		Error:   &message,
		Kind:    KindInvalidRequest,
	}, nil
}

package client

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/GriffinCanCode/docshelf/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/docshelf/backend/internal/shared/types"
)

// Defaults
const (
	DefaultBaseURL = "http://127.0.0.1:8000"
	DefaultTimeout = 30 * time.Second
	DefaultRetries = 2
)

// CommandError is a failure reported by the server, or a response that
// could not be understood
type CommandError struct {
	Command string
	Status  int
	Kind    string
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s failed (%d %s): %s", e.Command, e.Status, e.Kind, e.Message)
}

// KindOf returns the failure kind of err, or "" if err is not a CommandError
func KindOf(err error) string {
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

// IsNotFound reports whether err says the file does not exist
func IsNotFound(err error) bool {
	return KindOf(err) == "not_found"
}

// AccessReport is the result of TestFileAccess
type AccessReport struct {
	Text     string
	Exists   bool
	Readable bool
}

// Client calls the document commands of a running server
type Client struct {
	resty   *resty.Client
	breaker *resilience.Breaker
}

// Option configures a Client
type Option func(*Client)

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.resty.SetTimeout(d) }
}

// WithRetries sets how often rate limited or failed transport calls are
// retried
func WithRetries(n int) Option {
	return func(c *Client) { c.resty.SetRetryCount(n) }
}

// WithRetryWait sets the backoff bounds between retries
func WithRetryWait(min, max time.Duration) Option {
	return func(c *Client) {
		c.resty.SetRetryWaitTime(min).SetRetryMaxWaitTime(max)
	}
}

// WithBreaker replaces the default circuit breaker
func WithBreaker(b *resilience.Breaker) Option {
	return func(c *Client) { c.breaker = b }
}

// New creates a client for the server at baseURL
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	// Pooled transport from retryablehttp; resty does the retrying
	transport := retryablehttp.NewClient().HTTPClient.Transport

	r := resty.New().
		SetBaseURL(baseURL).
		SetTransport(transport).
		SetTimeout(DefaultTimeout).
		SetRetryCount(DefaultRetries).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("User-Agent", "docshelf-client/1.0").
		SetHeader("Content-Type", "application/json").
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			return resp != nil && resp.StatusCode() == http.StatusTooManyRequests
		})
	r.JSONMarshal = sonic.Marshal
	r.JSONUnmarshal = sonic.Unmarshal

	c := &Client{
		resty: r,
		breaker: resilience.New("docshelf-api", resilience.Settings{
			Cooldown: 10 * time.Second,
			Trip: func(counts resilience.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetDocumentPath makes path the documents directory, creating it
func (c *Client) SetDocumentPath(ctx context.Context, path string) error {
	_, err := c.command(ctx, "set_document_path", map[string]interface{}{"path": path})
	return err
}

// GetDocumentPath returns the directory documents are saved to
func (c *Client) GetDocumentPath(ctx context.Context) (string, error) {
	result, err := c.command(ctx, "get_document_path", nil)
	if err != nil {
		return "", err
	}
	return stringValue("get_document_path", result)
}

// ClearDocumentPath reverts to the default documents directory
func (c *Client) ClearDocumentPath(ctx context.Context) error {
	_, err := c.command(ctx, "clear_document_path", nil)
	return err
}

// SaveFile writes data to fileName in the documents directory and returns
// the full path
func (c *Client) SaveFile(ctx context.Context, fileName string, data []byte) (string, error) {
	result, err := c.command(ctx, "save_file", map[string]interface{}{
		"file_name": fileName,
		"file_data": base64.StdEncoding.EncodeToString(data),
	})
	if err != nil {
		return "", err
	}
	return stringValue("save_file", result)
}

// GetFilePath returns the full path of an existing document
func (c *Client) GetFilePath(ctx context.Context, fileName string) (string, error) {
	result, err := c.command(ctx, "get_file_path", map[string]interface{}{"file_name": fileName})
	if err != nil {
		return "", err
	}
	return stringValue("get_file_path", result)
}

// TestFileAccess describes how fileName resolves. format is text, json,
// yaml or toml; empty means text.
func (c *Client) TestFileAccess(ctx context.Context, fileName, format string) (*AccessReport, error) {
	params := map[string]interface{}{"file_name": fileName}
	if format != "" {
		params["format"] = format
	}

	result, err := c.command(ctx, "test_file_access", params)
	if err != nil {
		return nil, err
	}

	text, err := stringValue("test_file_access", result)
	if err != nil {
		return nil, err
	}
	exists, _ := result.Data["exists"].(bool)
	readable, _ := result.Data["readable"].(bool)
	return &AccessReport{Text: text, Exists: exists, Readable: readable}, nil
}

// BreakerState reports the state of the client's circuit breaker
func (c *Client) BreakerState() resilience.State {
	return c.breaker.State()
}

func (c *Client) command(ctx context.Context, name string, params map[string]interface{}) (*types.Result, error) {
	if params == nil {
		params = map[string]interface{}{}
	}

	var result types.Result
	err := c.breaker.Do(func() error {
		resp, err := c.resty.R().
			SetContext(ctx).
			SetBody(params).
			Post("/commands/" + name)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}

		result = types.Result{}
		if err := sonic.Unmarshal(resp.Body(), &result); err != nil {
			return &CommandError{
				Command: name,
				Status:  resp.StatusCode(),
				Kind:    "bad_response",
				Message: fmt.Sprintf("cannot decode response: %v", err),
			}
		}

		if resp.IsError() || !result.Success {
			msg := http.StatusText(resp.StatusCode())
			if result.Error != nil {
				msg = *result.Error
			}
			return &CommandError{
				Command: name,
				Status:  resp.StatusCode(),
				Kind:    result.Kind,
				Message: msg,
			}
		}
		return nil
	}, isCallerError)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// isCallerError reports failures caused by the request rather than the
// server, which must not open the breaker
func isCallerError(err error) bool {
	var ce *CommandError
	return errors.As(err, &ce) && ce.Status < http.StatusInternalServerError
}

func stringValue(name string, result *types.Result) (string, error) {
	value, ok := result.Data["value"].(string)
	if !ok {
		return "", &CommandError{
			Command: name,
			Status:  http.StatusOK,
			Kind:    "bad_response",
			Message: "response has no string value",
		}
	}
	return value, nil
}

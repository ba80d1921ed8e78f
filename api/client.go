// ABOUTME: HTTP client for the LTV sync backend REST API
// ABOUTME: Typed request/response wrappers that normalize failures into *api.Error
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/harperreed/ltvdash/models"
)

// RequestIDHeader carries a per-request identifier to the backend.
const RequestIDHeader = "X-Request-ID"

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// Client talks to the sync backend.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *log.Logger
}

// NewClient creates a client rooted at baseURL (e.g. http://localhost:8000).
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetCustomFields lists the CRM custom fields available as LTV sources.
func (c *Client) GetCustomFields(ctx context.Context) ([]models.CustomField, error) {
	var out struct {
		CustomFields []models.CustomField `json:"customFields"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/custom-fields", nil, &out); err != nil {
		return nil, err
	}
	return out.CustomFields, nil
}

// GetConfig loads the active sync configuration and installation settings.
func (c *Client) GetConfig(ctx context.Context) (*models.ConfigEnvelope, error) {
	var out models.ConfigEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/config", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SaveConfig stores the LTV field mapping and returns the saved config.
func (c *Client) SaveConfig(ctx context.Context, payload models.ConfigPayload) (*models.SyncConfig, error) {
	var out struct {
		Config *models.SyncConfig `json:"config"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/config", payload, &out); err != nil {
		return nil, err
	}
	if out.Config == nil {
		return nil, fmt.Errorf("save config: response missing config")
	}
	return out.Config, nil
}

// TriggerSync asks the backend to start a sync run in the background.
func (c *Client) TriggerSync(ctx context.Context) (*models.TriggerResult, error) {
	var out models.TriggerResult
	if err := c.do(ctx, http.MethodPost, "/api/sync/trigger", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetStatus returns the current running state and the most recent run.
func (c *Client) GetStatus(ctx context.Context) (*models.SyncStatus, error) {
	var out models.SyncStatus
	if err := c.do(ctx, http.MethodGet, "/api/sync/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetHistory returns one 1-indexed page of runs, most recent first.
func (c *Client) GetHistory(ctx context.Context, page int) (*models.HistoryPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))

	var out models.HistoryPage
	if err := c.do(ctx, http.MethodGet, "/api/sync/history?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetRun returns one run with its contact samples.
func (c *Client) GetRun(ctx context.Context, id int64) (*models.SyncRunDetail, error) {
	var out models.SyncRunDetail
	path := "/api/sync/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendTestEmail asks the backend to send a notification test email.
func (c *Client) SendTestEmail(ctx context.Context) (*models.EmailTestResult, error) {
	var out models.EmailTestResult
	if err := c.do(ctx, http.MethodPost, "/api/email/test", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "path", path, "request_id", requestID, "err", err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newError(resp.StatusCode, data, requestID)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// Package runtime is the HTTP client for the external workflow runtime
// that actually executes workflows. The editor core only dispatches test
// runs and activations to it; execution itself happens out of process.
package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/abdsal1508/workflow-app/internal/logging"
	"github.com/abdsal1508/workflow-app/pkg/schema"
)

const defaultTimeout = 60 * time.Second

// Client talks to the runtime's REST API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a runtime client for the given base URL.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  logger,
	}
}

// TestRun dispatches a test execution of a saved workflow and returns
// the per-node results. The call is synchronous and not retried; the
// caller decides what a failed dispatch means.
func (c *Client) TestRun(ctx context.Context, workflowID string, req schema.RunRequest) (*schema.RunResult, error) {
	url := fmt.Sprintf("%s/api/workflows/%s/test/", c.baseURL, workflowID)

	var result schema.RunResult
	if err := c.post(ctx, url, req, &result); err != nil {
		return nil, err
	}

	logging.LogWith(ctx, c.logger).InfoContext(ctx, "test run completed",
		slog.Int("node_executions", len(result.NodeExecutions)))
	return &result, nil
}

// Deploy asks the runtime to activate a workflow.
func (c *Client) Deploy(ctx context.Context, workflowID string) error {
	url := fmt.Sprintf("%s/api/workflows/%s/activate/", c.baseURL, workflowID)
	return c.post(ctx, url, struct{}{}, nil)
}

func (c *Client) post(ctx context.Context, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return schema.NewError(schema.ErrCodeRuntime, "cannot encode request body").WithCause(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return schema.NewError(schema.ErrCodeRuntime, "cannot build request").WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return schema.NewErrorf(schema.ErrCodeRuntime,
			"runtime unreachable: %s", err.Error()).WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return runtimeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return schema.NewError(schema.ErrCodeRuntime, "cannot decode runtime response").WithCause(err)
	}
	return nil
}

// runtimeError extracts the runtime's {"detail": ...} error body when
// present, falling back to the raw body text.
func runtimeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	detail := strings.TrimSpace(string(raw))
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Detail != "" {
		detail = body.Detail
	}
	if detail == "" {
		detail = http.StatusText(resp.StatusCode)
	}

	return schema.NewErrorf(schema.ErrCodeRuntime, "runtime returned %d: %s",
		resp.StatusCode, detail).
		WithDetails(map[string]any{"status": resp.StatusCode})
}

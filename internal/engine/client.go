package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Error is a non-2xx or transport failure from the processing engine. Detail
// carries at most the engine's response body; nothing internal is attached.
type Error struct {
	Status int
	Detail any
}

func (e *Error) Error() string {
	return fmt.Sprintf("processing engine returned status %d", e.Status)
}

// EngineDetail exposes the bounded error detail for upstream responses.
func (e *Error) EngineDetail() any { return e.Detail }

// Client talks to the processing engine over HTTP with an explicit timeout.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a Client for the engine at baseURL.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("ENGINE_URL is required")
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Process forwards a file to the engine's ingestion endpoint and returns the
// engine's JSON response. A timeout counts as a processing failure.
func (c *Client) Process(ctx context.Context, filename string, r io.Reader) (json.RawMessage, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("build multipart: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("copy file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.do(req)
}

// Stats fetches the engine's aggregate stats.
func (c *Client) Stats(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "/api/stats")
}

// Forecast fetches the engine's sales forecast.
func (c *Client) Forecast(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "/api/forecast")
}

// Segmentation fetches the engine's customer segments.
func (c *Client) Segmentation(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "/api/segmentation")
}

// Seed asks the engine to generate demo data.
func (c *Client) Seed(ctx context.Context) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/seed", nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) get(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("engine request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read engine response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Status: resp.StatusCode, Detail: decodeDetail(raw)}
	}
	return json.RawMessage(raw), nil
}

func decodeDetail(raw []byte) any {
	var detail any
	if err := json.Unmarshal(raw, &detail); err != nil {
		if len(raw) == 0 {
			return nil
		}
		return string(raw)
	}
	return detail
}

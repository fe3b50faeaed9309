// Package client provides a Go client for the tracking server: a thin HTTP
// wrapper plus a polling controller that mirrors the browser UI's behavior.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spectrack/spectrack-go/internal/models"
)

// Client wraps the server's tracking endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the server at baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// StartTracking posts a new tracking request for the spec number.
func (c *Client) StartTracking(ctx context.Context, specNumber string) error {
	payload, err := json.Marshal(map[string]string{"spec_number": specNumber})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/start-tracking", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
			return fmt.Errorf("server rejected tracking request: %s", body.Error)
		}
		return fmt.Errorf("server rejected tracking request: status %d", resp.StatusCode)
	}
	return nil
}

// FetchProgress returns the current progress percentage, clamped to
// [0, 100]. A payload without a progress field counts as zero.
func (c *Client) FetchProgress(ctx context.Context) (int, error) {
	data, err := c.get(ctx, "/progress")
	if err != nil {
		return 0, err
	}
	var body struct {
		Progress *float64 `json:"progress"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return 0, err
	}
	if body.Progress == nil {
		return 0, nil
	}
	pct := int(*body.Progress)
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return pct, nil
}

// FetchLogs returns the full log text.
func (c *Client) FetchLogs(ctx context.Context) (string, error) {
	data, err := c.get(ctx, "/logs")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FetchResults returns the full result set.
func (c *Client) FetchResults(ctx context.Context) ([]models.ResultRow, error) {
	data, err := c.get(ctx, "/results")
	if err != nil {
		return nil, err
	}
	var rows []models.ResultRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, path)
	}
	return io.ReadAll(resp.Body)
}

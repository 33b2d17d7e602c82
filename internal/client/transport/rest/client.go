// Package rest implements the transport adapter against the REST session
// authority with a WebSocket push channel. This is the variant with a true
// optimistic-concurrency check: a stale baseVersion is rejected with
// LAYOUT_VERSION_CONFLICT.
package rest

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

	"github.com/medigrid/layoutsync/internal/client/identity"
	"github.com/medigrid/layoutsync/internal/client/transport"
	"github.com/medigrid/layoutsync/pkg/api"
)

// Client is the HTTP client for the session authority.
type Client struct {
	httpClient *http.Client
	tokens     *identity.TokenSource
	logger     *slog.Logger
	baseURL    string
}

// NewClient creates an authority client. Auth headers come from tokens,
// which degrades to dev identity headers when minting is unavailable.
func NewClient(baseURL string, tokens *identity.TokenSource, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Keep auth headers across redirects.
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// doRequest performs an HTTP request against the authority, decoding the
// error envelope of non-2xx responses into the transport error taxonomy.
func (c *Client) doRequest(ctx context.Context, method, path string, body, result any) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.tokens.Apply(ctx, req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w: %w", transport.ErrConnectivity, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.mapError(resp.StatusCode, respBody)
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// mapError converts an authority error envelope into the sentinel taxonomy.
func (c *Client) mapError(status int, body []byte) error {
	var envelope api.ErrorResponse
	code := ""
	message := fmt.Sprintf("request failed with status %d", status)
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Code != "" {
		code = envelope.Error.Code
		if envelope.Error.Message != "" {
			message = envelope.Error.Message
		}
	}

	switch {
	case status == http.StatusConflict || code == api.CodeLayoutVersionConflict:
		return fmt.Errorf("%s: %w", message, transport.ErrVersionConflict)
	case status == http.StatusNotFound || code == api.CodeSessionNotFound:
		return fmt.Errorf("%s: %w", message, transport.ErrNotFound)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%s: %w", message, transport.ErrAuth)
	default:
		return fmt.Errorf("server error (%d): %s", status, message)
	}
}

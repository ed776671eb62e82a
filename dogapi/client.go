// Package dogapi fetches a random dog image URL from an external JSON endpoint.
package dogapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// ErrUpstream covers every way the external API can fail: transport errors,
// timeouts, non-2xx responses and bodies without a usable "message" field.
var ErrUpstream = errors.New("dog api unavailable")

const maxBodyBytes = 1 << 20

// Client calls the external dog image API.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a client for url with the given request timeout.
func NewClient(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// RandomImage returns the image URL from the response's "message" field.
func (c *Client) RandomImage(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: failed to build request: %v", ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: unexpected status %d", ErrUpstream, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("%w: failed to read body: %v", ErrUpstream, err)
	}
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("%w: malformed JSON body", ErrUpstream)
	}

	message := gjson.GetBytes(body, "message")
	if message.Type != gjson.String || strings.TrimSpace(message.String()) == "" {
		return "", fmt.Errorf("%w: response has no image url", ErrUpstream)
	}
	return strings.TrimSpace(message.String()), nil
}

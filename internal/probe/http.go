package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/launchdash/internal/domain/types"
)

// requestIDHeader carries the per-request correlation id.
const requestIDHeader = "X-Request-ID"

// Client wraps http.Client with a base URL and a request counter.
type Client struct {
	client   *http.Client
	baseURL  string
	requests atomic.Int64
}

// Response is a fully read HTTP response.
type Response struct {
	Status      int
	ContentType string
	RequestID   string
	Body        []byte
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Requests returns the number of requests sent so far.
func (c *Client) Requests() int { return int(c.requests.Load()) }

// Get performs a GET request tagged with a fresh request id and reads the body.
func (c *Client) Get(ctx context.Context, path string, q url.Values) (*Response, error) {
	target := c.baseURL + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	id := uuid.NewString()
	req.Header.Set(requestIDHeader, id)

	c.requests.Add(1)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("GET %s: read body: %w", path, err)
	}

	// Prefer the id echoed by the server.
	if echoed := resp.Header.Get(requestIDHeader); echoed != "" {
		id = echoed
	}
	return &Response{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		RequestID:   id,
		Body:        body,
	}, nil
}

// GetJSON performs a GET request and decodes a 200 JSON body into v.
func (c *Client) GetJSON(ctx context.Context, path string, q url.Values, v any) (*Response, error) {
	resp, err := c.Get(ctx, path, q)
	if err != nil {
		return nil, err
	}
	if resp.Status != http.StatusOK {
		return resp, fmt.Errorf("GET %s: unexpected status %d: %s", path, resp.Status, strings.TrimSpace(string(resp.Body)))
	}
	if !strings.HasPrefix(resp.ContentType, contentTypeJSON) {
		return resp, fmt.Errorf("GET %s: unexpected content type %q", path, resp.ContentType)
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return resp, fmt.Errorf("GET %s: decode: %w", path, err)
	}
	return resp, nil
}

// siteQuery builds the site query parameters.
func siteQuery(site string) url.Values {
	return url.Values{"site": {site}}
}

// scatterQuery builds the site and range query parameters.
func scatterQuery(site string, rng types.Range) url.Values {
	q := siteQuery(site)
	q.Set("min", strconv.FormatFloat(rng.Min, 'f', -1, 64))
	q.Set("max", strconv.FormatFloat(rng.Max, 'f', -1, 64))
	return q
}

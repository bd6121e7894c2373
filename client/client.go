package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// httpCore wraps the HTTP plumbing shared by every CLOB endpoint: URL
// assembly, header injection and status handling.
type httpCore struct {
	httpClient *http.Client
	baseURL    string
}

var ErrAPIFailure = errors.New("clob api request failed")

func newHTTPCore(baseURL string) *httpCore {
	return &httpCore{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

func (c *httpCore) request(ctx context.Context, method, endpoint string, params url.Values, headers map[string]string, body string) (*http.Request, error) {
	reqURL := c.baseURL + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, err
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

func (c *httpCore) doRequest(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d: %s", ErrAPIFailure, resp.StatusCode, string(body))
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func (c *httpCore) get(ctx context.Context, endpoint string, params url.Values, headers map[string]string, result any) error {
	req, err := c.request(ctx, http.MethodGet, endpoint, params, headers, "")
	if err != nil {
		return err
	}
	return c.doRequest(req, result)
}

func (c *httpCore) do(ctx context.Context, method, endpoint string, params url.Values, headers map[string]string, body string, result any) error {
	req, err := c.request(ctx, method, endpoint, params, headers, body)
	if err != nil {
		return err
	}
	return c.doRequest(req, result)
}

// doText is for the few endpoints that answer with a bare string instead of
// JSON.
func (c *httpCore) doText(ctx context.Context, method, endpoint string, headers map[string]string) (string, error) {
	req, err := c.request(ctx, method, endpoint, nil, headers, "")
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: status %d: %s", ErrAPIFailure, resp.StatusCode, string(body))
	}
	return strings.TrimSpace(string(body)), nil
}

func queryParams(pairs ...string) url.Values {
	q := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		q.Set(pairs[i], pairs[i+1])
	}
	return q
}

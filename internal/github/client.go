// Package github is a thin client for the parts of the GitHub REST and
// OAuth APIs used to authorize a device and commit notes.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client is a thin HTTP client for the GitHub REST API and OAuth endpoints.
// It handles Bearer token authentication, JSON and form encoding, and
// automatic retry with exponential backoff on HTTP 429.
type Client struct {
	apiURL     string
	webURL     string
	httpClient *http.Client
	maxRetries int
}

// NewClient creates a new GitHub client. apiURL is the REST root
// (https://api.github.com) and webURL the OAuth host (https://github.com).
func NewClient(apiURL, webURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiURL: strings.TrimRight(apiURL, "/"),
		webURL: strings.TrimRight(webURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxRetries: 3,
	}
}

// request describes a single call made through do.
type request struct {
	method string
	url    string
	path   string // used in error messages
	token  string
	body   interface{}
	form   url.Values

	basicUser, basicPass string
}

// api builds a request against the REST root.
func (c *Client) api(method, path, token string) request {
	return request{method: method, url: c.apiURL + path, path: path, token: token}
}

// web builds a request against the OAuth host.
func (c *Client) web(method, path string) request {
	return request{method: method, url: c.webURL + path, path: path}
}

// encode returns a fresh body reader and its content type.
func (r request) encode() (io.Reader, string, error) {
	switch {
	case r.form != nil:
		return strings.NewReader(r.form.Encode()), "application/x-www-form-urlencoded", nil
	case r.body != nil:
		data, err := json.Marshal(r.body)
		if err != nil {
			return nil, "", fmt.Errorf("marshaling request body: %w", err)
		}
		return bytes.NewReader(data), "application/json", nil
	}
	return nil, "", nil
}

// do is the core HTTP method that builds the request, handles auth,
// rate limiting with exponential backoff, and JSON deserialization.
func (c *Client) do(ctx context.Context, r request, result interface{}) error {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		// Rebuild the body reader on every attempt since it is consumed.
		bodyReader, contentType, err := r.encode()
		if err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, r.method, r.url, bodyReader)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("Accept", "application/json")
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		if r.token != "" {
			req.Header.Set("Authorization", "Bearer "+r.token)
			req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
		}
		if r.basicUser != "" {
			req.SetBasicAuth(r.basicUser, r.basicPass)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &NetworkError{Method: r.method, Path: r.path, Err: err}
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return &NetworkError{Method: r.method, Path: r.path, Err: readErr}
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			waitDuration := retryAfterDuration(resp, attempt)
			lastErr = &APIError{
				StatusCode: resp.StatusCode,
				Method:     r.method,
				Path:       r.path,
				Message:    "rate limited",
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(waitDuration):
				continue
			}
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			apiErr := &APIError{
				StatusCode: resp.StatusCode,
				Method:     r.method,
				Path:       r.path,
			}
			var ghErr errorResponse
			if json.Unmarshal(respBody, &ghErr) == nil && ghErr.Message != "" {
				apiErr.Message = ghErr.Message
			} else {
				apiErr.Message = strings.TrimSpace(string(respBody))
			}
			return apiErr
		}

		// No content to parse (e.g. 204).
		if result == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}

		if len(bytes.TrimSpace(respBody)) == 0 {
			return &DecodeError{Method: r.method, Path: r.path, Err: errors.New("empty body")}
		}

		if err := json.Unmarshal(respBody, result); err != nil {
			return &DecodeError{Method: r.method, Path: r.path, Err: err}
		}

		return nil
	}

	return fmt.Errorf(
		"max retries (%d) exceeded: %w", c.maxRetries, lastErr,
	)
}

// retryAfterDuration reads the Retry-After header and computes a wait
// duration. Falls back to exponential backoff if the header is missing.
func retryAfterDuration(resp *http.Response, attempt int) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}

	// Exponential backoff: 1s, 2s, 4s, ...
	backoff := time.Duration(1<<uint(attempt)) * time.Second
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	return backoff
}

// escapePath escapes each segment of a repository path.
func escapePath(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return ""
	}
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

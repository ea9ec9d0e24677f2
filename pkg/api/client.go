// Package api is the HTTP client of the remote data and vote authority.
// It attaches the bearer credential, reports authorization failures to a hook and
// retries collection fetches. Votes are sent exactly once.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/repeater/v2"

	"github.com/umputun/marketpulse/pkg/domain"
)

const maxBodySize = 4 * 1024 * 1024

// Client talks to the authority over HTTP
type Client struct {
	baseURL        string
	token          string
	httpClient     *http.Client
	retries        int
	retryDelay     time.Duration
	onUnauthorized func()
}

// Opts defines client parameters
type Opts struct {
	BaseURL        string        // authority root, e.g. http://localhost:8080
	Token          string        // bearer credential, optional
	Timeout        time.Duration // per request, default 15s
	Retries        int           // attempts for collection fetches, default 3
	RetryDelay     time.Duration // initial backoff delay, default 100ms
	OnUnauthorized func()        // called on 401 responses
	HTTPClient     *http.Client  // optional, replaces the default client
}

// Error is a failed request. Status is zero when no response was received.
type Error struct {
	Status  int
	Payload map[string]any // decoded error body, nil if not a JSON object
	Err     error          // transport error when Status is zero
}

func (e *Error) Error() string {
	if e.Status == 0 && e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("request failed with status code %d", e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

// Detail returns a string field of the error payload, empty if missing
func (e *Error) Detail(field string) string {
	s, _ := e.Payload[field].(string)
	return s
}

// errNoRetry marks failures the repeater should not retry
var errNoRetry = errors.New("not retryable")

// New makes a client with defaults applied
func New(opts Opts) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Retries <= 0 {
		opts.Retries = 3
	}
	if opts.RetryDelay == 0 {
		opts.RetryDelay = 100 * time.Millisecond
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		baseURL:        strings.TrimSuffix(opts.BaseURL, "/"),
		token:          opts.Token,
		httpClient:     httpClient,
		retries:        opts.Retries,
		retryDelay:     opts.RetryDelay,
		onUnauthorized: opts.OnUnauthorized,
	}
}

// Fetch gets up to limit items of the given kind and returns the raw payload.
// Network errors and 5xx responses are retried with backoff.
func (c *Client) Fetch(ctx context.Context, kind domain.Kind, limit int) (json.RawMessage, error) {
	u := fmt.Sprintf("%s/%s?limit=%d", c.baseURL, url.PathEscape(string(kind)), limit)

	var body json.RawMessage
	retrier := repeater.NewBackoff(c.retries, c.retryDelay, repeater.WithMaxDelay(2*time.Second))
	err := retrier.Do(ctx, func() error {
		resp, err := c.do(ctx, http.MethodGet, u, nil)
		if err != nil {
			var apiErr *Error
			if errors.As(err, &apiErr) && apiErr.Status > 0 && apiErr.Status < 500 {
				return fmt.Errorf("%w: %w", errNoRetry, err)
			}
			lgr.Printf("[DEBUG] fetch %s failed, %v", kind, err)
			return err
		}
		body = resp
		return nil
	}, errNoRetry)
	if err != nil {
		return nil, unwrapNoRetry(err)
	}
	return body, nil
}

// Vote sends a single vote for an item and returns the raw response payload
func (c *Client) Vote(ctx context.Context, kind domain.Kind, id string, vote domain.Vote) (json.RawMessage, error) {
	u := fmt.Sprintf("%s/vote/%s/%s", c.baseURL, url.PathEscape(string(kind)), url.PathEscape(id))
	reqBody, err := json.Marshal(map[string]string{"vote": string(vote)})
	if err != nil {
		return nil, fmt.Errorf("marshal vote: %w", err)
	}
	return c.do(ctx, http.MethodPost, u, reqBody)
}

// do performs a request and returns the body of a 2xx response
func (c *Client) do(ctx context.Context, method, u string, body []byte) (json.RawMessage, error) {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return nil, &Error{Err: fmt.Errorf("make request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &Error{Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
		c.onUnauthorized()
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &Error{Status: resp.StatusCode}
		var payload map[string]any
		if json.Unmarshal(data, &payload) == nil {
			apiErr.Payload = payload
		}
		return nil, apiErr
	}
	return data, nil
}

// unwrapNoRetry returns the *Error hidden behind errNoRetry, or err itself
func unwrapNoRetry(err error) error {
	if !errors.Is(err, errNoRetry) {
		return err
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return err
}

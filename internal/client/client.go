package client

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

	"perfdeck/internal/config"
	"perfdeck/internal/logging"
	"perfdeck/internal/types"
)

const (
	defaultAttempts   = 3
	defaultRetryAfter = time.Second
	defaultTimeout    = 10 * time.Second
)

type Client struct {
	baseURL    string
	token      string
	attempts   int
	retryAfter time.Duration
	http       *http.Client
	logger     logging.Logger
	sleep      func(context.Context, time.Duration) error
}

type Options struct {
	BaseURL    string
	Token      string
	Attempts   int
	RetryAfter time.Duration
	Timeout    time.Duration
	Logger     logging.Logger
}

func New(opts Options) *Client {
	attempts := opts.Attempts
	if attempts <= 0 {
		attempts = defaultAttempts
	}
	retryAfter := opts.RetryAfter
	if retryAfter < 0 {
		retryAfter = 0
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		token:      strings.TrimSpace(opts.Token),
		attempts:   attempts,
		retryAfter: retryAfter,
		http:       &http.Client{Timeout: timeout},
		logger:     logger,
		sleep:      sleepContext,
	}
}

// FromConfig builds a client from the loaded config and an already resolved
// token.
func FromConfig(cfg config.Config, token string, logger logging.Logger) *Client {
	return New(Options{
		BaseURL:    cfg.APIHost(),
		Token:      token,
		Attempts:   cfg.Attempts(),
		RetryAfter: cfg.RetryAfter(),
		Timeout:    cfg.Timeout(),
		Logger:     logger,
	})
}

func NewWithBaseURL(baseURL, token string) *Client {
	return New(Options{BaseURL: baseURL, Token: token, Attempts: 1})
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Token() string {
	return c.token
}

// ListDimensions fetches one page of dimensions of kind for project.
func (c *Client) ListDimensions(ctx context.Context, project string, kind types.DimensionKind, params types.ListParams) ([]types.Record, error) {
	path, err := listPath(project, kind, params)
	if err != nil {
		return nil, err
	}
	var raw json.RawMessage
	if err := c.getJSON(ctx, path, &raw); err != nil {
		return nil, err
	}
	records, err := types.DecodeRecords(kind, raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind.Plural(), err)
	}
	return records, nil
}

// GetDimension fetches a single dimension as its raw payload.
func (c *Client) GetDimension(ctx context.Context, project string, kind types.DimensionKind, slug string) (types.Resource, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, errors.New("slug is required")
	}
	path, err := resourcePath(project, kind, slug)
	if err != nil {
		return nil, err
	}
	var resource types.Resource
	if err := c.getJSON(ctx, path, &resource); err != nil {
		return nil, err
	}
	return resource, nil
}

// DimensionURL is the absolute API URL of one dimension, the target of a
// delete.
func (c *Client) DimensionURL(project string, kind types.DimensionKind, slug string) string {
	path, err := resourcePath(project, kind, slug)
	if err != nil {
		return ""
	}
	return c.baseURL + path
}

// Delete sends a DELETE to an absolute URL with the given bearer token. It is
// never retried.
func (c *Client) Delete(ctx context.Context, rawURL, token string) error {
	if strings.TrimSpace(rawURL) == "" {
		return errors.New("url is required")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, rawURL, nil)
	if err != nil {
		return err
	}
	if token = strings.TrimSpace(token); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// getJSON retries transport failures and 5xx/429 responses up to the
// configured number of attempts.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		err := c.doJSON(ctx, http.MethodGet, path, nil, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable(err) || ctx.Err() != nil || attempt == c.attempts {
			break
		}
		c.logger.Warn("request failed, retrying",
			logging.F("path", path),
			logging.F("attempt", attempt),
			logging.F("retry_after", c.retryAfter),
			logging.F("err", err),
		)
		if err := c.sleep(ctx, c.retryAfter); err != nil {
			return err
		}
	}
	return lastErr
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func listPath(project string, kind types.DimensionKind, params types.ListParams) (string, error) {
	base, err := collectionPath(project, kind)
	if err != nil {
		return "", err
	}
	params = params.Normalized()
	query := url.Values{}
	query.Set("page", strconv.Itoa(params.Page))
	query.Set("per_page", strconv.Itoa(params.PerPage))
	if params.Search != "" {
		query.Set("search", params.Search)
	}
	return base + "?" + query.Encode(), nil
}

func resourcePath(project string, kind types.DimensionKind, slug string) (string, error) {
	base, err := collectionPath(project, kind)
	if err != nil {
		return "", err
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return "", errors.New("slug is required")
	}
	return base + "/" + url.PathEscape(slug), nil
}

func collectionPath(project string, kind types.DimensionKind) (string, error) {
	project = strings.TrimSpace(project)
	if project == "" {
		return "", errors.New("project is required")
	}
	if !kind.IsValid() {
		return "", fmt.Errorf("unknown dimension kind %q", kind)
	}
	return "/v0/projects/" + url.PathEscape(project) + "/" + kind.Plural(), nil
}

func decodeAPIError(resp *http.Response) error {
	type errorPayload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	var payload errorPayload
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	if payload.Message != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: payload.Message}
	}
	if payload.Error != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: payload.Error}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
}

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if apiErr := AsAPIError(err); apiErr != nil {
		return apiErr.StatusCode >= 500 || apiErr.StatusCode == http.StatusTooManyRequests
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return false
	}
	return true
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Package apiclient is a thin JSON client for the acrique REST API.
// It attaches the session cookie to every call, never retries, and turns
// every failure into an *Error carrying a Kind.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RequestIDHeader carries a per-request identifier for correlating logs with the backend.
const RequestIDHeader = "X-Request-ID"

// maxErrorBody bounds how much of an error response is read for the server message.
const maxErrorBody = 64 << 10

// Config holds the configuration for the API client.
type Config struct {
	// BaseURL is the scheme and host of the REST API, e.g. "https://api.acrique.jp".
	BaseURL   string `yaml:"base_url"`
	UserAgent string `yaml:"user_agent"`
}

// Client issues JSON requests against the REST API.
type Client struct {
	baseURL   *url.URL
	userAgent string
	http      *http.Client
	logger    zerolog.Logger
}

// New creates a Client. When httpClient is nil a client with its own cookie jar
// is created, so session cookies set by the API are replayed on later calls.
func New(cfg *Config, httpClient *http.Client, logger zerolog.Logger) (*Client, error) {
	if cfg == nil || cfg.BaseURL == "" {
		return nil, errors.New("api base url is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api base url %q: %w", cfg.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("api base url %q must include scheme and host", cfg.BaseURL)
	}
	if httpClient == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		httpClient = &http.Client{Jar: jar}
	}
	return &Client{
		baseURL:   base,
		userAgent: cfg.UserAgent,
		http:      httpClient,
		logger:    logger.With().Str("component", "APIClient").Logger(),
	}, nil
}

// SetCookies stores cookies for the API host in the client's jar, so a caller
// holding a browser's API session cookie can act for that browser.
func (c *Client) SetCookies(cookies []*http.Cookie) {
	if c.http.Jar == nil || len(cookies) == 0 {
		return
	}
	c.http.Jar.SetCookies(c.baseURL, cookies)
}

// Do sends one request. body, when non-nil, is encoded as JSON; out, when non-nil,
// receives the decoded JSON response.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindValidation, Method: method, Path: path, Message: "request body is not encodable", Err: err}
		}
		reader = bytes.NewReader(payload)
	}
	req, err := c.newRequest(ctx, method, path, query, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, path, out)
}

// FilePart is a file field of a multipart request.
type FilePart struct {
	Field       string
	FileName    string
	ContentType string
	Content     io.Reader
}

// PostMultipart sends a multipart/form-data POST with the given fields and file.
func (c *Client) PostMultipart(ctx context.Context, path string, fields map[string]string, file FilePart, out any) error {
	if file.Content == nil {
		return ValidationError("file content is required")
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			return &Error{Kind: KindValidation, Method: http.MethodPost, Path: path, Message: "failed to write form field", Err: err}
		}
	}
	field := file.Field
	if field == "" {
		field = "file"
	}
	part, err := mw.CreatePart(fileHeader(field, file.FileName, file.ContentType))
	if err != nil {
		return &Error{Kind: KindValidation, Method: http.MethodPost, Path: path, Message: "failed to create file part", Err: err}
	}
	if _, err := io.Copy(part, file.Content); err != nil {
		return &Error{Kind: KindValidation, Method: http.MethodPost, Path: path, Message: "failed to read file content", Err: err}
	}
	if err := mw.Close(); err != nil {
		return &Error{Kind: KindValidation, Method: http.MethodPost, Path: path, Message: "failed to close multipart body", Err: err}
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, nil, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.send(req, path, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := *c.baseURL
	u.Path = c.baseURL.Path + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, &Error{Kind: KindValidation, Method: method, Path: path, Message: "invalid request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return req, nil
}

func (c *Client) send(req *http.Request, path string, out any) error {
	start := time.Now()
	requestID := req.Header.Get(RequestIDHeader)
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("method", req.Method).Str("path", path).Str("request_id", requestID).Msg("API request failed before a response was received.")
		return &Error{Kind: KindNetwork, Method: req.Method, Path: path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug().
		Str("method", req.Method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Str("request_id", requestID).
		Msg("API request completed.")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &Error{
			Kind:    KindHTTP,
			Status:  resp.StatusCode,
			Message: serverMessage(raw, resp.StatusCode),
			Method:  req.Method,
			Path:    path,
		}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return &Error{Kind: KindDecode, Method: req.Method, Path: path, Err: err}
	}
	return nil
}

// serverMessage extracts the message from an error body. The API answers with
// {"detail": "..."}, {"detail": [{"msg": "..."}]} or {"message": "..."}.
func serverMessage(raw []byte, status int) string {
	var body struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if len(body.Detail) > 0 {
			var detail string
			if err := json.Unmarshal(body.Detail, &detail); err == nil && detail != "" {
				return detail
			}
			var items []struct {
				Msg string `json:"msg"`
			}
			if err := json.Unmarshal(body.Detail, &items); err == nil && len(items) > 0 {
				msgs := make([]string, 0, len(items))
				for _, item := range items {
					if item.Msg != "" {
						msgs = append(msgs, item.Msg)
					}
				}
				if len(msgs) > 0 {
					return strings.Join(msgs, "; ")
				}
			}
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return http.StatusText(status)
}

// Get issues a GET and decodes the response into T.
func Get[T any](ctx context.Context, c *Client, path string, query url.Values) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodGet, path, query, nil, &out)
	return out, err
}

// Post issues a POST with a JSON body and decodes the response into T.
func Post[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodPost, path, nil, body, &out)
	return out, err
}

// Put issues a PUT with a JSON body and decodes the response into T.
func Put[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodPut, path, nil, body, &out)
	return out, err
}

// Patch issues a PATCH with a JSON body and decodes the response into T.
func Patch[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodPatch, path, nil, body, &out)
	return out, err
}

// Delete issues a DELETE and decodes the response, if any, into T.
func Delete[T any](ctx context.Context, c *Client, path string) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodDelete, path, nil, nil, &out)
	return out, err
}

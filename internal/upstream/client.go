// Package upstream is the typed client for the catalog REST API. It owns the
// request/response envelope, bearer-token injection and the JSON/multipart
// encoding switch; it never decides what counts as success beyond surfacing
// the HTTP status to the caller.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"catalog_admin/internal/metrics"
)

// TokenSource yields the current bearer credential. An empty string means no
// session is established and the request goes out unauthenticated.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource for a fixed credential (CLI usage).
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// Envelope is the body shape every upstream endpoint responds with.
type Envelope struct {
	Response json.RawMessage `json:"response"`
	Message  string          `json:"message"`
}

// APIError is a non-2xx response that carried a well-formed body. The caller
// branches on Status; Message is the server-supplied text, possibly empty.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream: status %d", e.Status)
	}
	return fmt.Sprintf("upstream: status %d: %s", e.Status, e.Message)
}

// TransportError is a network-level failure: no response, timeout or a body
// that could not be decoded.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "upstream: transport: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// IsUnauthorized reports whether err is an upstream 401, which must trigger
// global logout and session clearing.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404-class response.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Failure is the flat normalized form handed to the notice channel.
type Failure struct {
	Status  int
	Message string
}

// Normalize flattens whatever shape an upstream error takes into
// {status, message}. A nil message falls back to fallback, or a generic
// string when fallback is empty too.
func Normalize(err error, fallback string) Failure {
	if fallback == "" {
		fallback = "Something went wrong!"
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = fallback
		}
		return Failure{Status: apiErr.Status, Message: msg}
	}

	var tErr *TransportError
	if errors.As(err, &tErr) {
		return Failure{Message: fallback}
	}

	if err != nil && err.Error() != "" {
		return Failure{Message: fallback}
	}
	return Failure{Message: fallback}
}

// FileUpload is a binary field attached to a create/update payload. Its
// presence switches the wire encoding to multipart.
type FileUpload struct {
	FieldName   string
	Filename    string
	ContentType string
	Data        []byte
}

type Client struct {
	log     *slog.Logger
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

func New(log *slog.Logger, baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	return &Client{
		log:     log,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
	}
}

// Products, Categories, Tags and Auth partition the API per resource.
func (c *Client) Products() *ProductsClient     { return &ProductsClient{c: c} }
func (c *Client) Categories() *CategoriesClient { return &CategoriesClient{c: c} }
func (c *Client) Tags() *TagsClient             { return &TagsClient{c: c} }
func (c *Client) Auth() *AuthClient             { return &AuthClient{c: c} }

func (c *Client) getJSON(ctx context.Context, path string, query url.Values) (int, Envelope, error) {
	return c.do(ctx, http.MethodGet, path, query, nil, "")
}

func (c *Client) sendJSON(ctx context.Context, method, path string, payload any) (int, Envelope, error) {
	const op = "upstream.Client.sendJSON"

	body, err := json.Marshal(payload)
	if err != nil {
		return 0, Envelope{}, fmt.Errorf("%s: %w", op, err)
	}
	return c.do(ctx, method, path, nil, bytes.NewReader(body), "application/json")
}

// sendForm encodes fields plus an optional binary part as multipart form
// data. The content type carries the writer's boundary; do() leaves it as-is
// so the transport never clobbers it.
func (c *Client) sendForm(ctx context.Context, method, path string, fields map[string]string, file *FileUpload) (int, Envelope, error) {
	const op = "upstream.Client.sendForm"

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return 0, Envelope{}, fmt.Errorf("%s: %w", op, err)
		}
	}
	if file != nil {
		name := file.FieldName
		if name == "" {
			name = "image"
		}
		part, err := w.CreateFormFile(name, file.Filename)
		if err != nil {
			return 0, Envelope{}, fmt.Errorf("%s: %w", op, err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return 0, Envelope{}, fmt.Errorf("%s: %w", op, err)
		}
	}
	if err := w.Close(); err != nil {
		return 0, Envelope{}, fmt.Errorf("%s: %w", op, err)
	}

	return c.do(ctx, method, path, nil, &buf, w.FormDataContentType())
}

func (c *Client) delete(ctx context.Context, path string) (int, Envelope, error) {
	return c.do(ctx, http.MethodDelete, path, nil, nil, "")
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (int, Envelope, error) {
	const op = "upstream.Client.do"

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return 0, Envelope{}, &TransportError{Err: fmt.Errorf("%s: %w", op, err)}
	}

	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(method, "transport_error").Inc()
		return 0, Envelope{}, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	metrics.UpstreamRequestsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()

	var env Envelope
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, Envelope{}, &TransportError{Err: err}
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			// non-2xx with an unreadable body still surfaces the status
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return resp.StatusCode, Envelope{}, &TransportError{Err: fmt.Errorf("%s: decode body: %w", op, err)}
			}
			return resp.StatusCode, Envelope{}, &APIError{Status: resp.StatusCode}
		}
	}

	return resp.StatusCode, env, nil
}

// expect turns a non-matching status into an APIError carrying the server
// message. ok lists the statuses the specific operation treats as success
// (this API uses 200/201 uniformly).
func expect(status int, env Envelope, err error, ok ...int) (Envelope, error) {
	if err != nil {
		return Envelope{}, err
	}
	for _, s := range ok {
		if status == s {
			return env, nil
		}
	}
	return Envelope{}, &APIError{Status: status, Message: env.Message}
}

func decodeResponse[T any](env Envelope) (T, error) {
	var out T
	if len(env.Response) == 0 {
		return out, &TransportError{Err: errors.New("empty response payload")}
	}
	if err := json.Unmarshal(env.Response, &out); err != nil {
		return out, &TransportError{Err: err}
	}
	return out, nil
}

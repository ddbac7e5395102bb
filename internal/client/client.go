// Package client is a typed HTTP client for the aimicro API. Every call is
// bounded by a fixed timeout and failures are reported as *Error values
// categorized by cause, so interactive callers can show a distinct message
// for timeouts, rejected requests, and server failures. Calls are never
// retried.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultBaseURL is the address `aimicro serve` listens on by default.
const DefaultBaseURL = "http://127.0.0.1:8080"

// DefaultTimeout bounds every call made by the client.
const DefaultTimeout = 30 * time.Second

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 10 << 20

// Config holds the client configuration.
type Config struct {
	// BaseURL is the server root, e.g. "http://127.0.0.1:8080".
	// Defaults to DefaultBaseURL.
	BaseURL string

	// Timeout bounds each call end to end. Defaults to DefaultTimeout.
	Timeout time.Duration

	// HTTPClient is the transport used for requests. Defaults to a client
	// with no timeout of its own; Timeout is applied per call via context.
	HTTPClient *http.Client
}

// Client calls the aimicro HTTP API.
type Client struct {
	// baseURL is the server root without a trailing slash.
	baseURL string

	// timeout bounds each call.
	timeout time.Duration

	// http is the underlying transport.
	http *http.Client
}

// New constructs a Client from cfg. A nil cfg uses every default.
func New(cfg *Config) *Client {
	if cfg == nil {
		cfg = &Config{}
	}
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		timeout: timeout,
		http:    hc,
	}
}

// Timeout returns the per-call timeout.
func (c *Client) Timeout() time.Duration { return c.timeout }

// Summarize returns a concise summary of text.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	return c.postJSON(ctx, "/api/summarize", map[string]string{"text": text}, "summary")
}

// Ask answers query from the most recently uploaded document.
func (c *Client) Ask(ctx context.Context, query string) (string, error) {
	return c.postJSON(ctx, "/api/ask-document", map[string]string{"query": query}, "answer")
}

// LearningPath generates a curriculum for topic at level.
func (c *Client) LearningPath(ctx context.Context, topic, level string) (string, error) {
	return c.postJSON(ctx, "/api/generate-learning-path",
		map[string]string{"topic": topic, "level": level}, "learning_path")
}

// Upload sends the document read from r under filename and returns the
// server's confirmation message.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	h.Set("Content-Type", "application/pdf")
	part, err := mw.CreatePart(h)
	if err != nil {
		return "", &Error{Kind: KindGeneric, Detail: err.Error(), Err: err}
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", &Error{Kind: KindGeneric, Detail: err.Error(), Err: err}
	}
	if err := mw.Close(); err != nil {
		return "", &Error{Kind: KindGeneric, Detail: err.Error(), Err: err}
	}

	return c.post(ctx, "/api/upload-document", mw.FormDataContentType(), &buf, "message")
}

// UploadFile uploads the file at path under its base name.
func (c *Client) UploadFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &Error{Kind: KindGeneric, Detail: err.Error(), Err: err}
	}
	defer f.Close()
	return c.Upload(ctx, filepath.Base(path), f)
}

// postJSON encodes body as JSON and posts it to path.
func (c *Client) postJSON(ctx context.Context, path string, body any, field string) (string, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return "", &Error{Kind: KindGeneric, Detail: err.Error(), Err: err}
	}
	return c.post(ctx, path, "application/json", bytes.NewReader(b), field)
}

// post sends body to path and returns the string value of field in the JSON
// response.
func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader, field string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return "", &Error{Kind: KindGeneric, Detail: err.Error(), Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", c.transportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", c.transportError(err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return "", statusError(resp.StatusCode, raw)
	}

	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil || len(out) == 0 {
		return "", &Error{Kind: KindGeneric, Status: resp.StatusCode, Detail: "Empty response from server"}
	}
	v, ok := out[field].(string)
	if !ok {
		return "", &Error{
			Kind:   KindGeneric,
			Status: resp.StatusCode,
			Detail: fmt.Sprintf("response is missing %q", field),
		}
	}
	return v, nil
}

// transportError classifies a failure that produced no HTTP response.
func (c *Client) transportError(err error) *Error {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return &Error{Kind: KindTimeout, Timeout: c.timeout, Detail: err.Error(), Err: err}
	}
	return &Error{Kind: KindGeneric, Detail: err.Error(), Err: err}
}

// statusError builds the error for a non-2xx response. The server reports
// failures as {"detail": "..."}; anything else is shown verbatim.
func statusError(status int, raw []byte) *Error {
	detail := strings.TrimSpace(string(raw))
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Detail != "" {
		detail = body.Detail
	}

	kind := KindGeneric
	switch {
	case status >= 500:
		kind = KindServerError
	case status >= 400:
		kind = KindClientError
	}
	return &Error{Kind: kind, Status: status, Detail: detail}
}

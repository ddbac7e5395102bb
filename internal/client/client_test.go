package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient serves handler and returns a client pointed at it.
func newTestClient(t *testing.T, handler http.HandlerFunc, timeout time.Duration) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(&Config{BaseURL: srv.URL + "/", Timeout: timeout})
}

func TestNew_Defaults(t *testing.T) {
	c := New(nil)
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, DefaultTimeout, c.Timeout())
	assert.NotNil(t, c.http)
}

func TestJSONCalls(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		response string
		call     func(c *Client) (string, error)
		wantBody map[string]string
		want     string
	}{
		{
			name:     "summarize",
			path:     "/api/summarize",
			response: `{"summary":"short"}`,
			call:     func(c *Client) (string, error) { return c.Summarize(context.Background(), "long text") },
			wantBody: map[string]string{"text": "long text"},
			want:     "short",
		},
		{
			name:     "ask",
			path:     "/api/ask-document",
			response: `{"answer":"Fredville"}`,
			call:     func(c *Client) (string, error) { return c.Ask(context.Background(), "capital?") },
			wantBody: map[string]string{"query": "capital?"},
			want:     "Fredville",
		},
		{
			name:     "learning path",
			path:     "/api/generate-learning-path",
			response: `{"learning_path":"## Week 1"}`,
			call: func(c *Client) (string, error) {
				return c.LearningPath(context.Background(), "Go", "Advanced")
			},
			wantBody: map[string]string{"topic": "Go", "level": "Advanced"},
			want:     "## Week 1",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var gotPath string
			var gotBody map[string]string
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
				w.Header().Set("Content-Type", "application/json")
				io.WriteString(w, tc.response)
			}, time.Second)

			got, err := tc.call(c)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.path, gotPath)
			assert.Equal(t, tc.wantBody, gotBody)
		})
	}
}

func TestUploadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 fake"), 0o600))

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/upload-document", r.URL.Path)
		f, hdr, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		body, _ := io.ReadAll(f)
		assert.Equal(t, "report.pdf", hdr.Filename)
		assert.Equal(t, "application/pdf", hdr.Header.Get("Content-Type"))
		assert.Equal(t, "%PDF-1.4 fake", string(body))
		io.WriteString(w, `{"message":"Document 'report.pdf' processed successfully."}`)
	}, time.Second)

	msg, err := c.UploadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Document 'report.pdf' processed successfully.", msg)
}

func TestUploadFile_MissingFile(t *testing.T) {
	c := New(nil)
	_, err := c.UploadFile(context.Background(), filepath.Join(t.TempDir(), "absent.pdf"))

	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindGeneric, ce.Kind)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestErrorCategories(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantKind    Kind
		wantMessage string
	}{
		{
			name:        "bad request with detail",
			status:      http.StatusBadRequest,
			body:        `{"detail":"Only PDF files are allowed."}`,
			wantKind:    KindClientError,
			wantMessage: "Bad request: Only PDF files are allowed.",
		},
		{
			name:        "not found plain text",
			status:      http.StatusNotFound,
			body:        "404 page not found\n",
			wantKind:    KindClientError,
			wantMessage: "Bad request: 404 page not found",
		},
		{
			name:        "server error",
			status:      http.StatusInternalServerError,
			body:        `{"detail":"Failed to process document: xref table not found"}`,
			wantKind:    KindServerError,
			wantMessage: "Server error: Failed to process document: xref table not found",
		},
		{
			name:        "bad gateway",
			status:      http.StatusBadGateway,
			body:        "upstream down",
			wantKind:    KindServerError,
			wantMessage: "Server error: upstream down",
		},
		{
			name:        "empty object",
			status:      http.StatusOK,
			body:        `{}`,
			wantKind:    KindGeneric,
			wantMessage: "API call failed: Empty response from server",
		},
		{
			name:        "missing field",
			status:      http.StatusOK,
			body:        `{"other":"x"}`,
			wantKind:    KindGeneric,
			wantMessage: `API call failed: response is missing "summary"`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				io.WriteString(w, tc.body)
			}, time.Second)

			_, err := c.Summarize(context.Background(), "text")
			var ce *Error
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tc.wantKind, ce.Kind)
			assert.Equal(t, tc.wantMessage, ce.Message())
			assert.Equal(t, tc.wantMessage, Message(err))
		})
	}
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, 50*time.Millisecond)
	defer close(release)

	_, err := c.Ask(context.Background(), "slow?")

	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindTimeout, ce.Kind)
	assert.Equal(t, "Request timed out after 50ms", ce.Message())
}

func TestConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(&Config{BaseURL: url, Timeout: time.Second})
	_, err := c.Summarize(context.Background(), "text")

	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindGeneric, ce.Kind)
	assert.True(t, strings.HasPrefix(ce.Message(), "API call failed: "))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "timeout", KindTimeout.String())
	assert.Equal(t, "client_error", KindClientError.String())
	assert.Equal(t, "server_error", KindServerError.String())
	assert.Equal(t, "generic", KindGeneric.String())
}

func TestMessage_PlainError(t *testing.T) {
	assert.Equal(t, "boom", Message(errors.New("boom")))
}

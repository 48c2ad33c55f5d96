package docsync

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/haierkeys/fast-note-kb-service/pkg/document"

	"github.com/bytedance/sonic"
)

// maxBodySize caps how much of a response body is read
const maxBodySize = 8 << 20

// HTTPSaver talks to the note REST API
// HTTPSaver 通过 REST API 保存笔记
type HTTPSaver struct {
	// BaseURL server root, e.g. http://127.0.0.1:9100
	BaseURL string
	// Token bearer token sent in the Authorization header
	Token  string
	Client *http.Client
}

// NewHTTPSaver creates a saver with a client timeout of 30s
func NewHTTPSaver(baseURL, token string) *HTTPSaver {
	return &HTTPSaver{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// RemoteNote what the server returns for a single note
type RemoteNote struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Content     *document.Node `json:"content"`
	ContentText string         `json:"contentText"`
	Version     int64          `json:"version"`
}

type envelope struct {
	Code    int         `json:"code"`
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    *RemoteNote `json:"data"`
}

type saveRequest struct {
	Content     *document.Node `json:"content"`
	BaseVersion int64          `json:"baseVersion,omitempty"`
}

type createRequest struct {
	Title   string         `json:"title"`
	Content *document.Node `json:"content,omitempty"`
}

// Save PATCHes the full document with baseVersion and returns the new version
func (h *HTTPSaver) Save(ctx context.Context, noteID string, baseVersion int64, doc *document.Node) (int64, error) {
	n, err := h.do(ctx, http.MethodPatch, "/api/notes/"+url.PathEscape(noteID), saveRequest{Content: doc, BaseVersion: baseVersion})
	if err != nil {
		return 0, err
	}
	return n.Version, nil
}

// Fetch loads a note with its document and version
func (h *HTTPSaver) Fetch(ctx context.Context, noteID string) (*RemoteNote, error) {
	return h.do(ctx, http.MethodGet, "/api/notes/"+url.PathEscape(noteID), nil)
}

// Create makes a new note and returns it
func (h *HTTPSaver) Create(ctx context.Context, title string, doc *document.Node) (*RemoteNote, error) {
	return h.do(ctx, http.MethodPost, "/api/notes", createRequest{Title: title, Content: doc})
}

func (h *HTTPSaver) do(ctx context.Context, method, path string, body any) (*RemoteNote, error) {
	var reader io.Reader
	if body != nil {
		b, err := sonic.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("docsync: encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("docsync: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if h.Token != "" {
		req.Header.Set("Authorization", "Bearer "+h.Token)
	}

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &TransientError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &TransientError{Status: resp.StatusCode, Err: err}
	}

	var env envelope
	decodeErr := sonic.Unmarshal(raw, &env)

	if err := statusError(resp.StatusCode, env.Message); err != nil {
		return nil, err
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("docsync: decode response: %w", decodeErr)
	}
	if env.Data == nil {
		return nil, fmt.Errorf("docsync: response has no data")
	}
	return env.Data, nil
}

// statusError maps an HTTP status to the session error kinds
func statusError(status int, message string) error {
	if status >= 200 && status < 300 {
		return nil
	}
	detail := func(base error) error {
		if message == "" {
			return base
		}
		return fmt.Errorf("%w: %s", base, message)
	}
	switch {
	case status == http.StatusConflict:
		return detail(ErrConflict)
	case status == http.StatusNotFound:
		return detail(ErrNotFound)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return detail(ErrUnauthenticated)
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return detail(ErrValidation)
	case status == http.StatusTooManyRequests || status >= 500:
		return &TransientError{Status: status, Err: fmt.Errorf("%s", http.StatusText(status))}
	}
	return fmt.Errorf("docsync: unexpected http status %d: %s", status, message)
}

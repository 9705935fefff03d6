// Package apiclient talks to the projects REST API: list, create (multipart),
// download and delete.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"dconn.dev/projectgrid/internal/logging"
	"dconn.dev/projectgrid/internal/metrics"
	"dconn.dev/projectgrid/internal/models"
)

const (
	opList     = "list"
	opCreate   = "create"
	opDownload = "download"
	opDelete   = "delete"

	// sniffLen matches mimetype's default read limit
	sniffLen = 3072
)

// Client is a thin client for the projects API
type Client struct {
	base    string
	http    *http.Client
	maxBody int64
	logger  *logging.Logger
	metrics *metrics.Metrics
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default http.Client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithMaxBodyBytes caps how much of a JSON response is read
func WithMaxBodyBytes(n int64) Option {
	return func(c *Client) { c.maxBody = n }
}

// WithLogger sets the logger
func WithLogger(l *logging.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMetrics enables Prometheus instrumentation
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a client rooted at baseURL (e.g. http://localhost:5000/api)
func New(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(baseURL, "/")
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL must be absolute, got %q", baseURL)
	}

	c := &Client{
		base:    trimmed,
		http:    &http.Client{Timeout: 10 * time.Second},
		maxBody: 8 << 20,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// endpoint joins path segments onto the base URL, escaping each one
func (c *Client) endpoint(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return c.base + "/" + strings.Join(escaped, "/")
}

// List handles GET /projects
func (c *Client) List(ctx context.Context) ([]models.Project, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("projects"), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opList, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(req, opList)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var projects []models.Project
	if err := json.NewDecoder(io.LimitReader(resp.Body, c.maxBody)).Decode(&projects); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", opList, err)
	}
	if projects == nil {
		projects = []models.Project{}
	}
	return projects, nil
}

// createResponse is the body of POST /projects, both success and failure
type createResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Create handles POST /projects. The multipart body is streamed, so the file
// is never held in memory. Returns the server's confirmation message.
func (c *Client) Create(ctx context.Context, form models.UploadForm) (string, error) {
	if form.File == nil {
		return "", fmt.Errorf("%s: no file", opCreate)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(form.File, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("%s: read file: %w", opCreate, err)
	}
	head = head[:n]
	contentType := mimetype.Detect(head).String()
	body := io.MultiReader(bytes.NewReader(head), form.File)

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeUpload(mw, form, contentType, body))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("projects"), pr)
	if err != nil {
		pr.Close()
		return "", fmt.Errorf("%s: %w", opCreate, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(req, opCreate)
	if err != nil {
		pr.Close()
		return "", err
	}
	defer resp.Body.Close()

	var result createResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, c.maxBody)).Decode(&result); err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("%s: decode response: %w", opCreate, err)
	}
	return result.Message, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeUpload(mw *multipart.Writer, form models.UploadForm, contentType string, file io.Reader) error {
	fields := []struct{ name, value string }{
		{"title", form.Title},
		{"description", form.Description},
		{"type", form.Type},
	}
	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return err
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="projectFile"; filename="%s"`, quoteEscaper.Replace(form.FileName)))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file); err != nil {
		return err
	}
	return mw.Close()
}

// DownloadURL is the per-project download endpoint a browser should open
func (c *Client) DownloadURL(id string) string {
	return c.endpoint("projects", id, "download")
}

// Download handles GET /projects/{id}/download, copying the file into w.
// It returns the filename the server suggested, if any.
func (c *Client) Download(ctx context.Context, id string, w io.Writer) (string, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.DownloadURL(id), nil)
	if err != nil {
		return "", 0, fmt.Errorf("%s: %w", opDownload, err)
	}

	resp, err := c.do(req, opDownload)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return "", n, fmt.Errorf("%s: copy body: %w", opDownload, err)
	}
	return suggestedFilename(resp.Header.Get("Content-Disposition")), n, nil
}

func suggestedFilename(disposition string) string {
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return params["filename"]
}

// Delete handles DELETE /projects/{id}
func (c *Client) Delete(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.endpoint("projects", id), nil)
	if err != nil {
		return fmt.Errorf("%s: %w", opDelete, err)
	}

	resp, err := c.do(req, opDelete)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, c.maxBody))
	resp.Body.Close()
	return nil
}

// do sends req and turns transport failures and non-2xx answers into errors.
// On success the caller owns resp.Body.
func (c *Client) do(req *http.Request, op string) (*http.Response, error) {
	ctx := req.Context()
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.ObserveAPI(op, "network", time.Since(start))
		c.logger.Warn(ctx, "projects API unreachable",
			zap.String("op", op), zap.String("url", req.URL.String()), zap.Error(err))
		return nil, fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		c.metrics.ObserveAPI(op, "status", time.Since(start))
		apiErr := &APIError{Op: op, StatusCode: resp.StatusCode}
		var body createResponse
		if err := json.NewDecoder(io.LimitReader(resp.Body, c.maxBody)).Decode(&body); err == nil {
			apiErr.Message = body.Error
		}
		c.logger.Warn(ctx, "projects API returned error",
			zap.String("op", op), zap.Int("status", resp.StatusCode), zap.String("message", apiErr.Message))
		return nil, apiErr
	}

	c.metrics.ObserveAPI(op, "ok", time.Since(start))
	c.logger.Debug(ctx, "projects API call",
		zap.String("op", op), zap.Int("status", resp.StatusCode), zap.Duration("duration", time.Since(start)))
	return resp, nil
}

package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const defaultTimeout = 30 * time.Second

// AuthFailureListener is notified whenever the backend answers 401. The
// transport never performs session teardown or navigation itself; the session
// service subscribes and owns those decisions.
type AuthFailureListener func()

// Client wraps outbound requests to the portal backend: it attaches the
// current bearer credential, tags every request with a correlation ID and
// converts non-2xx responses into typed errors.
type Client struct {
	base       *url.URL
	httpClient *http.Client
	log        zerolog.Logger

	mu        sync.RWMutex
	bearer    string
	listeners []AuthFailureListener
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying http.Client (primarily for testing).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout on the underlying http.Client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger overrides the default global logger.
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.log = logger
	}
}

// New creates a Client targeting baseURL.
func New(baseURL string, options ...ClientOption) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("[transport.New] base URL is required")
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "[transport.New] invalid base URL")
	}

	client := &Client{
		base:       base,
		httpClient: &http.Client{Timeout: defaultTimeout},
		log:        log.Logger,
	}
	for _, opt := range options {
		opt(client)
	}
	return client, nil
}

// SetBearerToken sets the credential attached to every subsequent request.
func (c *Client) SetBearerToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bearer = token
}

// ClearBearerToken removes the attached credential. Subsequent requests are
// sent unauthenticated.
func (c *Client) ClearBearerToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bearer = ""
}

// BearerToken returns the currently attached credential, or "".
func (c *Client) BearerToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bearer
}

// OnAuthFailure registers a listener invoked on every 401 response, before
// the error is returned to the caller.
func (c *Client) OnAuthFailure(listener AuthFailureListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, listener)
}

// Get performs a GET request and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, "", out)
}

// PostJSON performs a POST request with a JSON body and decodes the response
// into out.
func (c *Client) PostJSON(ctx context.Context, path string, body any, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "[Client.PostJSON] encoding request body")
	}
	return c.do(ctx, http.MethodPost, path, nil, bytes.NewReader(encoded), "application/json", out)
}

// PostMultipart performs a POST request with a multipart form body. fields are
// written as plain form values; when file is non-nil it is streamed as
// fileField with the given fileName.
func (c *Client) PostMultipart(ctx context.Context, path string, fields map[string]string, fileField, fileName string, file io.Reader, out any) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return errors.Wrapf(err, "[Client.PostMultipart] writing field %q", name)
		}
	}
	if file != nil {
		part, err := writer.CreateFormFile(fileField, fileName)
		if err != nil {
			return errors.Wrap(err, "[Client.PostMultipart] creating file part")
		}
		if _, err := io.Copy(part, file); err != nil {
			return errors.Wrap(err, "[Client.PostMultipart] copying file")
		}
	}
	if err := writer.Close(); err != nil {
		return errors.Wrap(err, "[Client.PostMultipart] finalising form")
	}
	return c.do(ctx, http.MethodPost, path, nil, &buf, writer.FormDataContentType(), out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	requestURL := strings.TrimRight(c.base.String(), "/") + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return errors.Wrap(err, "[Client.do] building request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.BearerToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "[Client.do] %s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.log.Warn().Str("path", path).Msg("request rejected with 401, notifying auth failure listeners")
		c.notifyAuthFailure()
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return errorFromResponse(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "[Client.do] decoding response from %s %s", method, path)
	}
	return nil
}

func (c *Client) notifyAuthFailure() {
	c.mu.RLock()
	listeners := make([]AuthFailureListener, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.RUnlock()

	for _, listener := range listeners {
		listener()
	}
}

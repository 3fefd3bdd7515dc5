package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-auth-client/tokenstore"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const defaultTimeout = 30 * time.Second

// Navigator redirects the user agent to the login flow. The gateway invokes
// it when a refresh attempt fails and the session cannot be recovered.
type Navigator interface {
	RedirectToLogin(returnPath string)
}

// Client wraps every outgoing API call: it attaches the current access token,
// normalizes all failures into the gateway error taxonomy, and on a 401
// performs a bounded refresh-and-retry. Safe for concurrent use; concurrent
// 401 holders share a single in-flight refresh.
type Client struct {
	httpClient *http.Client
	baseURL    string
	store      *tokenstore.Store
	navigator  Navigator
	timeout    time.Duration
	metrics    *Metrics
	log        zerolog.Logger

	refreshGroup singleflight.Group
}

// Option defines a function type to modify the Client instance.
type Option func(*Client)

// WithNavigator sets the navigation service invoked on unrecoverable 401s.
func WithNavigator(navigator Navigator) Option {
	return func(c *Client) { c.navigator = navigator }
}

// WithTimeout sets the fixed per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.timeout = timeout }
}

// WithHTTPClient replaces the underlying HTTP client (primarily for testing).
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithLogger sets the structured logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithMetrics registers request/refresh/retry counters with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Client) { c.metrics = NewMetrics(reg) }
}

// New creates a gateway client for the API at baseURL, reading tokens from
// the given store.
func New(baseURL string, store *tokenstore.Store, options ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("[gateway.New] baseURL is required")
	}
	if store == nil {
		return nil, errors.New("[gateway.New] token store is required")
	}
	c := &Client{
		httpClient: &http.Client{},
		baseURL:    baseURL,
		store:      store,
		timeout:    defaultTimeout,
		log:        zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// GetJSON issues a GET request and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// PostJSON issues a POST request with a JSON body and decodes the JSON
// response into out. Both body and out may be nil.
func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Do issues a request. On failure the returned error is always an *APIError.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return newAPIError(UnknownError, 0, "request could not be encoded")
		}
	}
	if err := c.do(ctx, method, path, payload, out); err != nil {
		return err
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, out any) *APIError {
	status, respBody, sendErr := c.send(ctx, method, path, payload)
	if sendErr != nil {
		c.metrics.observeRequest(string(sendErr.Code))
		return sendErr
	}

	if status < 400 {
		c.metrics.observeRequest("ok")
		if out != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, out); err != nil {
				return newAPIError(UnknownError, status, "response could not be decoded")
			}
		}
		return nil
	}

	if status == http.StatusUnauthorized && !skipsAuthRefresh(ctx) && !isRetried(ctx) && c.store.IsRefreshValid() {
		ctx = markRetried(ctx)
		if refreshErr := c.refreshTokens(ctx); refreshErr != nil {
			c.log.Warn().Str("path", path).Err(refreshErr).Msg("token refresh failed, session cannot be recovered")
			c.store.ClearTokens()
			if c.navigator != nil {
				c.navigator.RedirectToLogin("")
			}
			apiErr := newAPIError(Unauthorized, status, serverMessage(respBody))
			c.metrics.observeRequest(string(apiErr.Code))
			return apiErr
		}
		c.log.Debug().Str("path", path).Msg("replaying request with refreshed access token")
		c.metrics.observeRetry()
		return c.do(ctx, method, path, payload, out)
	}

	apiErr := newAPIError(codeForStatus(status), status, serverMessage(respBody))
	c.metrics.observeRequest(string(apiErr.Code))
	c.log.Debug().Str("method", method).Str("path", path).Int("status", status).Str("code", string(apiErr.Code)).Msg("request failed")
	return apiErr
}

// send performs one HTTP round trip under the fixed timeout and classifies
// transport-level failures. HTTP error statuses are returned for the caller
// to classify.
func (c *Client) send(ctx context.Context, method, path string, payload []byte) (int, []byte, *APIError) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(reqCtx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, newAPIError(UnknownError, 0, "request could not be built")
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	if access := c.store.AccessToken(); access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) || isTimeout(err) {
			return 0, nil, newAPIError(TimeoutError, 0, "")
		}
		return 0, nil, newAPIError(NetworkError, 0, "")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, newAPIError(NetworkError, 0, "")
	}
	return resp.StatusCode, respBody, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var timeoutErr interface{ Timeout() bool }
	return errors.As(err, &timeoutErr) && timeoutErr.Timeout()
}

// serverMessage extracts a server-supplied error message from a response
// body, which overrides the catalog default for the mapped code.
func serverMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	if parsed.Message != "" {
		return parsed.Message
	}
	return parsed.Error
}

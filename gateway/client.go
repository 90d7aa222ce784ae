// Package gateway is the authenticated HTTP client for the admin API.
//
// Every request is decorated with the current access token. A 401 carrying the
// TOKEN_EXPIRED code triggers one refresh of the token pair that all concurrently
// failing requests share; a 403 is fatal and raises the session-expired signal.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	LoginPath    = "/auth/login"
	RefreshPath  = "/auth/refresh"
	LogoutPath   = "/auth/logout"
	ValidatePath = "/auth/validate"

	RequestIDHeader = "X-Request-ID"
)

// TokenStore is the part of the session store the gateway reads and writes.
type TokenStore interface {
	AccessToken() string
	RefreshToken() string
	SetTokens(accessToken, refreshToken string)
}

// Client owns the refresh coordination state; construct one per process and share it.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      TokenStore
	expired    *Broadcaster

	mu         sync.Mutex
	refreshing bool
	pending    []chan refreshOutcome
	failed     *refreshFailure
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds each HTTP exchange, the refresh call included.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// New returns a client for the API at baseURL that reads and refreshes tokens in store.
func New(baseURL string, store TokenStore, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		store:   store,
		expired: NewBroadcaster(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnSessionExpired registers fn to run whenever the session can no longer be used.
func (c *Client) OnSessionExpired(fn func()) (unsubscribe func()) {
	return c.expired.Subscribe(fn)
}

// Do performs req and decodes a JSON response into out (when out is non-nil).
func (c *Client) Do(ctx context.Context, req *Request, out any) error {
	cl, err := newCall(req)
	if err != nil {
		return err
	}

	data, err := c.execute(ctx, cl)
	if err != nil {
		return err
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) execute(ctx context.Context, cl *call) ([]byte, error) {
	var token string
	if !cl.req.Public {
		token = c.store.AccessToken()
	}

	data, err := c.send(ctx, cl, token)
	if err == nil {
		return data, nil
	}
	if cl.req.Public || cl.req.SkipRecovery {
		return nil, err
	}
	return c.recover(ctx, cl, token, err)
}

// recover applies the failure policy to a non-public request sent with token.
func (c *Client) recover(ctx context.Context, cl *call, token string, err error) ([]byte, error) {
	switch classify(err) {
	case failureForbidden:
		log.Debug().Str("path", cl.req.Path).Msg("Forbidden response, signalling session expiry")
		c.expired.Publish()
		return nil, err
	case failureTokenExpired:
	default:
		return nil, err
	}

	if cl.retried || c.store.RefreshToken() == "" {
		return nil, err
	}
	cl.retried = true

	newToken, refreshErr := c.awaitToken(ctx, token)
	if refreshErr == errNoRefreshToken {
		return nil, err
	}
	if refreshErr != nil {
		return nil, refreshErr
	}

	data, err := c.send(ctx, cl, newToken)
	if err != nil {
		return c.recover(ctx, cl, newToken, err)
	}
	return data, nil
}

func (c *Client) url(req *Request) string {
	u := c.baseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}
	return u
}

// send performs a single HTTP exchange, attaching token when non-empty.
func (c *Client) send(ctx context.Context, cl *call, token string) ([]byte, error) {
	var body io.Reader
	if cl.body != nil {
		body = bytes.NewReader(cl.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, cl.req.Method, c.url(cl.req), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(RequestIDHeader, uuid.NewString())
	if token != "" {
		(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(httpReq)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to perform request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp.StatusCode, data)
	}
	return data, nil
}

package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
)

var errNoRefreshToken = errors.New("no refresh token")

// TokenPair is the body of a successful /auth/refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// refreshOutcome settles one queued continuation.
type refreshOutcome struct {
	accessToken string
	err         error
}

// refreshFailure remembers which refresh token was rejected so that late arrivals of
// the same burst share the outcome instead of retrying a token known to be dead.
type refreshFailure struct {
	refreshToken string
	err          error
}

// awaitToken returns an access token to retry with. sentWith is the token the failed
// request carried. At most one refresh runs at a time; callers arriving meanwhile wait.
func (c *Client) awaitToken(ctx context.Context, sentWith string) (string, error) {
	c.mu.Lock()

	if c.refreshing {
		waiter := make(chan refreshOutcome, 1)
		c.pending = append(c.pending, waiter)
		queued := len(c.pending)
		c.mu.Unlock()

		log.Debug().Int("queued", queued).Msg("Waiting for in-flight token refresh")
		select {
		case outcome := <-waiter:
			return outcome.accessToken, outcome.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	// A refresh finished after this request was sent: the store already holds a newer token.
	if current := c.store.AccessToken(); current != "" && current != sentWith {
		c.mu.Unlock()
		return current, nil
	}

	refreshToken := c.store.RefreshToken()
	if refreshToken == "" {
		c.mu.Unlock()
		return "", errNoRefreshToken
	}
	if c.failed != nil && c.failed.refreshToken == refreshToken {
		err := c.failed.err
		c.mu.Unlock()
		return "", err
	}

	c.refreshing = true
	c.mu.Unlock()

	// The refresh serves every queued caller, so it must outlive this caller's cancellation.
	pair, err := c.refresh(context.WithoutCancel(ctx), refreshToken)
	if err == nil {
		c.store.SetTokens(pair.AccessToken, pair.RefreshToken)
	}

	c.mu.Lock()
	pending := c.pending
	c.pending = nil
	c.refreshing = false
	if err != nil {
		c.failed = &refreshFailure{refreshToken: refreshToken, err: err}
	} else {
		c.failed = nil
	}
	c.mu.Unlock()

	outcome := refreshOutcome{err: err}
	if err == nil {
		outcome.accessToken = pair.AccessToken
	}
	for _, waiter := range pending {
		waiter <- outcome
	}

	if err != nil {
		log.Warn().Err(err).Int("queued", len(pending)).Msg("Token refresh failed, session expired")
		c.expired.Publish()
		return "", err
	}

	log.Debug().Int("queued", len(pending)).Msg("Token refreshed")
	return pair.AccessToken, nil
}

// refresh exchanges refreshToken for a new pair. It bypasses recovery entirely.
func (c *Client) refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	cl, err := newCall(&Request{
		Method: http.MethodPost,
		Path:   RefreshPath,
		Body:   map[string]string{"refreshToken": refreshToken},
		Public: true,
	})
	if err != nil {
		return nil, err
	}

	data, err := c.send(ctx, cl, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}

	var pair TokenPair
	if err := json.Unmarshal(data, &pair); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	if pair.AccessToken == "" {
		return nil, fmt.Errorf("%w: %w", ErrRefreshFailed, ErrInvalidRefreshResponse)
	}
	if pair.RefreshToken == "" {
		// API did not rotate; keep using the current refresh token.
		pair.RefreshToken = refreshToken
	}
	return &pair, nil
}

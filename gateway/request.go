package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// Doer is what the domain services need from the gateway.
type Doer interface {
	Do(ctx context.Context, req *Request, out any) error
}

// Request describes one API call. Body is JSON encoded once so the call can be re-issued.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any

	// Public requests (login, refresh) never carry a bearer token and are never recovered.
	Public bool
	// SkipRecovery returns failures as-is: no refresh, no session-expired signal.
	SkipRecovery bool
}

func NewRequest(method, path string, body any) *Request {
	return &Request{Method: method, Path: path, Body: body}
}

// call is one in-flight execution of a Request.
type call struct {
	req     *Request
	body    []byte
	retried bool
}

func newCall(req *Request) (*call, error) {
	c := &call{req: req}
	if req.Body == nil {
		return c, nil
	}
	body, err := json.Marshal(req.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	c.body = body
	return c, nil
}

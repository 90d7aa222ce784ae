package doerfake

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/jrsteele09/rxadmin/gateway"
)

var _ gateway.Doer = (*FakeDoer)(nil)

type response struct {
	body any
	err  error
}

// FakeDoer answers requests from canned responses keyed by "METHOD /path".
// Unknown routes get a 404 APIError.
type FakeDoer struct {
	lock      sync.Mutex
	responses map[string]response
	requests  []gateway.Request
}

func NewFakeDoer() *FakeDoer {
	return &FakeDoer{responses: make(map[string]response)}
}

func (f *FakeDoer) On(method, path string, body any) *FakeDoer {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.responses[method+" "+path] = response{body: body}
	return f
}

func (f *FakeDoer) Fail(method, path string, err error) *FakeDoer {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.responses[method+" "+path] = response{err: err}
	return f
}

func (f *FakeDoer) Requests() []gateway.Request {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]gateway.Request(nil), f.requests...)
}

// BodyJSON returns the encoded body of the i-th request.
func (f *FakeDoer) BodyJSON(i int) string {
	reqs := f.Requests()
	if i >= len(reqs) || reqs[i].Body == nil {
		return ""
	}
	data, _ := json.Marshal(reqs[i].Body)
	return string(data)
}

func (f *FakeDoer) Do(ctx context.Context, req *gateway.Request, out any) error {
	f.lock.Lock()
	f.requests = append(f.requests, *req)
	resp, ok := f.responses[req.Method+" "+req.Path]
	f.lock.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if !ok {
		return &gateway.APIError{StatusCode: http.StatusNotFound, Message: "no route for " + req.Method + " " + req.Path}
	}
	if resp.err != nil {
		return resp.err
	}
	if out == nil || resp.body == nil {
		return nil
	}
	data, err := json.Marshal(resp.body)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

package nodes

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"

	"github.com/richinsley/remix2go/nodeapi"
	"github.com/stretchr/testify/require"
)

type call struct {
	Method string
	Path   string
	Query  url.Values
	Body   []byte
}

type route struct {
	status int
	body   interface{}
	hook   func(r *http.Request, body []byte)
}

// fakeRemix is a Remix service answering registered routes and recording every call.
// It matches the decoded path so that escaped layer ids read naturally in tests.
type fakeRemix struct {
	srv    *httptest.Server
	mu     sync.Mutex
	calls  []call
	routes map[string]route
}

func newFakeRemix(t *testing.T) *fakeRemix {
	t.Helper()
	f := &fakeRemix{routes: map[string]route{}}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeRemix) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.calls = append(f.calls, call{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query(), Body: body})
	rt, ok := f.routes[r.Method+" "+r.URL.Path]
	f.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"detail": "no route " + r.Method + " " + r.URL.Path})
		return
	}
	if rt.hook != nil {
		rt.hook(r, body)
	}
	w.WriteHeader(rt.status)
	if rt.body != nil {
		json.NewEncoder(w).Encode(rt.body)
	}
}

func (f *fakeRemix) handle(method, path string, status int, body interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = route{status: status, body: body}
}

func (f *fakeRemix) hook(method, path string, hook func(r *http.Request, body []byte)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rt := f.routes[method+" "+path]
	rt.hook = hook
	f.routes[method+" "+path] = rt
}

func (f *fakeRemix) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func (f *fakeRemix) context(t *testing.T) nodeapi.RemixContext {
	t.Helper()
	u, err := url.Parse(f.srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	return nodeapi.RemixContext{Address: u.Hostname(), Port: port}
}

func (f *fakeRemix) env(t *testing.T) *Env {
	return &Env{HTTPClient: f.srv.Client(), TempDirectory: t.TempDir()}
}

func decodeBody(t *testing.T, c call) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(c.Body, &out))
	return out
}

package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/heoquay/backend/internal/infrastructure/config"
	"github.com/heoquay/backend/internal/infrastructure/upstream"
	"github.com/stretchr/testify/require"
)

// webhookCall is one request received by fakeWebhook
type webhookCall struct {
	Method string
	Path   string
	Query  url.Values
	Auth   string
	Role   string
	Body   map[string]any
}

type cannedResponse struct {
	status      int
	contentType string
	body        string
}

// fakeWebhook stands in for the order webhook API. Unregistered routes
// answer 404 with a plain text body.
type fakeWebhook struct {
	t      *testing.T
	server *httptest.Server

	mu     sync.Mutex
	routes map[string]cannedResponse
	calls  []webhookCall
}

func newFakeWebhook(t *testing.T) *fakeWebhook {
	t.Helper()
	f := &fakeWebhook{t: t, routes: make(map[string]cannedResponse)}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeWebhook) serve(w http.ResponseWriter, r *http.Request) {
	call := webhookCall{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Auth:   r.Header.Get("Authorization"),
		Role:   r.Header.Get("role"),
	}
	if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
		_ = json.Unmarshal(raw, &call.Body)
	}

	f.mu.Lock()
	f.calls = append(f.calls, call)
	resp, ok := f.routes[r.Method+" "+r.URL.Path]
	f.mu.Unlock()

	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", resp.contentType)
	w.WriteHeader(resp.status)
	_, _ = io.WriteString(w, resp.body)
}

func (f *fakeWebhook) handle(method, path string, status int, contentType, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = cannedResponse{status: status, contentType: contentType, body: body}
}

func (f *fakeWebhook) handleJSON(method, path string, status int, body string) {
	f.handle(method, path, status, "application/json", body)
}

func (f *fakeWebhook) client() *upstream.Client {
	return upstream.NewClient(config.UpstreamConfig{BaseURL: f.server.URL, Timeout: 2 * time.Second})
}

func (f *fakeWebhook) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeWebhook) lastCall() webhookCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(f.t, f.calls, "no webhook call recorded")
	return f.calls[len(f.calls)-1]
}

// unreachableClient points at a closed server
func unreachableClient(t *testing.T) *upstream.Client {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	return upstream.NewClient(config.UpstreamConfig{BaseURL: srv.URL, Timeout: time.Second})
}

func performRequest(h http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

package notion

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/nhle/bugtriage/internal/credential"
)

const (
	testToken      = "ntn_test_token_0123456789abcdef"
	testDatabaseID = "db1"
)

type recordedCall struct {
	Method string
	Path   string
	Header http.Header
	Body   map[string]any
}

// route answers one recorded call with a status code and a JSON payload.
type route func(call recordedCall) (int, any)

// fakeNotion is an httptest server that records every call it receives.
type fakeNotion struct {
	mu     sync.Mutex
	calls  []recordedCall
	routes map[string]route
}

func (f *fakeNotion) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	call := recordedCall{
		Method: r.Method,
		Path:   r.URL.Path,
		Header: r.Header.Clone(),
	}
	if data, _ := io.ReadAll(r.Body); len(data) > 0 {
		_ = json.Unmarshal(data, &call.Body)
	}

	f.mu.Lock()
	f.calls = append(f.calls, call)
	handler, ok := f.routes[r.Method+" "+r.URL.Path]
	f.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody(404, "object_not_found", "no route "+r.URL.Path))
		return
	}

	status, payload := handler(call)
	writeJSON(w, status, payload)
}

func (f *fakeNotion) callsTo(method, path string) []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []recordedCall
	for _, c := range f.calls {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeNotion) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func errorBody(status int, code, message string) map[string]any {
	return map[string]any{
		"object":  "error",
		"status":  status,
		"code":    code,
		"message": message,
	}
}

// newTestService starts a fake Notion server and a Service pointed at it.
func newTestService(t *testing.T, routes map[string]route) (*Service, *fakeNotion) {
	t.Helper()

	fake := &fakeNotion{routes: routes}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := New(Config{
		BaseURL:    srv.URL,
		Token:      credential.NewSecret(testToken),
		DatabaseID: testDatabaseID,
		Logger:     hclog.NewNullLogger(),
	})
	require.NoError(t, err)
	svc.client.retryBase = time.Millisecond
	t.Cleanup(svc.Close)

	return svc, fake
}

func titleProp(text ...string) map[string]any {
	runs := make([]any, 0, len(text))
	for _, s := range text {
		runs = append(runs, map[string]any{"type": "text", "plain_text": s})
	}
	return map[string]any{"id": "title", "type": "title", "title": runs}
}

func richTextProp(text string) map[string]any {
	return map[string]any{
		"type":      "rich_text",
		"rich_text": []any{map[string]any{"type": "text", "plain_text": text}},
	}
}

func statusProp(name string) map[string]any {
	return map[string]any{"type": "status", "status": map[string]any{"name": name}}
}

func selectProp(name string) map[string]any {
	return map[string]any{"type": "select", "select": map[string]any{"name": name}}
}

// pageJSON builds a page envelope with a "Name" title and any extra
// properties.
func pageJSON(id, title string, extra map[string]any) map[string]any {
	props := map[string]any{"Name": titleProp(title)}
	for k, v := range extra {
		props[k] = v
	}
	return map[string]any{
		"object":     "page",
		"id":         id,
		"url":        "https://www.notion.so/" + id,
		"properties": props,
	}
}

func queryResult(pages []map[string]any, nextCursor string) map[string]any {
	results := make([]any, 0, len(pages))
	for _, p := range pages {
		results = append(results, p)
	}
	var next any
	if nextCursor != "" {
		next = nextCursor
	}
	return map[string]any{
		"object":      "list",
		"results":     results,
		"has_more":    nextCursor != "",
		"next_cursor": next,
	}
}

func schemaJSON(types map[string]string) map[string]any {
	props := make(map[string]any, len(types))
	for name, typ := range types {
		props[name] = map[string]any{"id": name, "name": name, "type": typ}
	}
	return map[string]any{"object": "database", "id": testDatabaseID, "properties": props}
}

// propsFrom converts a page fixture's properties to the raw form the
// extractors take.
func propsFrom(t *testing.T, props map[string]any) Properties {
	t.Helper()

	out := make(Properties, len(props))
	for name, v := range props {
		data, err := json.Marshal(v)
		require.NoError(t, err)
		out[name] = data
	}
	return out
}

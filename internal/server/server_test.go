package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/bugtriage/internal/credential"
	"github.com/nhle/bugtriage/internal/model"
	"github.com/nhle/bugtriage/internal/notion"
	"github.com/nhle/bugtriage/internal/source"
	"github.com/nhle/bugtriage/tests/testutil"
)

type harness struct {
	srv     *Server
	tracker *testutil.FakeTracker
	seen    []Credentials
	release int
}

func newHarness(t *testing.T, defaults Credentials) *harness {
	t.Helper()

	h := &harness{tracker: &testutil.FakeTracker{Issues: map[string][]model.Issue{
		"db1": {
			testutil.Issue("p1", "Crash on save", "Open"),
			testutil.Issue("p2", "Typo", "Done"),
		},
	}}}
	factory := func(creds Credentials) (source.Tracker, func(), error) {
		h.seen = append(h.seen, creds)
		return h.tracker, func() { h.release++ }, nil
	}
	h.srv = NewServer("127.0.0.1:0", defaults, factory, nil)
	return h
}

func (h *harness) do(t *testing.T, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.srv.Handler().ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

var configured = Credentials{Token: credential.NewSecret("ntn_configured_token_1234"), DatabaseID: "db1"}

func TestHandleTasks(t *testing.T) {
	h := newHarness(t, configured)

	rr := h.do(t, http.MethodGet, "/api/notion/tasks?status_filter=Open&limit=10", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp TaskListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Tasks, 1)
	assert.Equal(t, "p1", resp.Tasks[0].ID)

	assert.Equal(t, source.ListOptions{DatabaseID: "db1", Status: "Open", Limit: 10}, h.tracker.ListCalls[0])
	assert.Equal(t, 1, h.release)

	body := decode(t, rr)
	task := body["tasks"].([]any)[0].(map[string]any)
	assert.Equal(t, "Crash on save", task["title"])
	assert.Contains(t, task, "description")
	assert.Nil(t, task["description"])
}

func TestHandleTasksDefaultLimit(t *testing.T) {
	h := newHarness(t, configured)

	rr := h.do(t, http.MethodGet, "/api/notion/tasks", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, source.DefaultLimit, h.tracker.ListCalls[0].Limit)

	rr = h.do(t, http.MethodGet, "/api/notion/tasks?limit=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleTasksHeaderOverrides(t *testing.T) {
	h := newHarness(t, Credentials{})

	rr := h.do(t, http.MethodGet, "/api/notion/tasks", "", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, errNoToken, decode(t, rr)["error"])

	rr = h.do(t, http.MethodGet, "/api/notion/tasks", "", map[string]string{TokenHeader: "ntn_header_token_5678"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, errNoDatabase, decode(t, rr)["error"])

	rr = h.do(t, http.MethodGet, "/api/notion/tasks", "", map[string]string{
		TokenHeader:    "ntn_header_token_5678",
		DatabaseHeader: "db1",
	})
	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, h.seen, 1)
	assert.Equal(t, "ntn_header_token_5678", h.seen[0].Token.Reveal())
	assert.Equal(t, "db1", h.seen[0].DatabaseID)
}

func TestHandleTasksErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"config", notion.ErrDatabaseIDRequired, http.StatusBadRequest},
		{"auth", &source.AuthError{SourceType: source.SourceTypeNotion, Message: "bad"}, http.StatusUnauthorized},
		{"upstream", &notion.APIError{StatusCode: 502, Message: "bad gateway"}, http.StatusInternalServerError},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, configured)
			h.tracker.Err = tt.err

			rr := h.do(t, http.MethodGet, "/api/notion/tasks", "", nil)
			assert.Equal(t, tt.want, rr.Code)
			assert.NotEmpty(t, decode(t, rr)["error"])
		})
	}
}

func TestHandleTask(t *testing.T) {
	h := newHarness(t, configured)

	rr := h.do(t, http.MethodGet, "/api/notion/tasks/p2", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Typo", decode(t, rr)["title"])

	h.tracker.Err = &notion.APIError{StatusCode: http.StatusNotFound, Message: "Could not find page"}
	rr = h.do(t, http.MethodGet, "/api/notion/tasks/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandleUpdateStatus(t *testing.T) {
	h := newHarness(t, configured)

	rr := h.do(t, http.MethodPost, "/api/notion/update-status",
		`{"page_id":"p1","status":"Done","status_property_name":"State"}`, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	body := decode(t, rr)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Task status updated to Done", body["message"])
	assert.Equal(t, []testutil.StatusUpdate{{ID: "p1", Status: "Done", Property: "State"}}, h.tracker.Updates)

	rr = h.do(t, http.MethodPost, "/api/notion/update-status", `{"page_id":"p1"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = h.do(t, http.MethodPost, "/api/notion/update-status", `not json`, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	h.tracker.Err = &notion.APIError{StatusCode: 400, Message: "Invalid status option."}
	rr = h.do(t, http.MethodPost, "/api/notion/update-status", `{"page_id":"p1","status":"Nope"}`, nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, decode(t, rr)["error"], "Invalid status option.")
}

func TestHandleComment(t *testing.T) {
	h := newHarness(t, configured)

	rr := h.do(t, http.MethodPost, "/api/notion/comments", `{"page_id":"p1","text":"Seen on staging"}`, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, decode(t, rr)["success"])
	assert.Equal(t, []testutil.Comment{{ID: "p1", Text: "Seen on staging"}}, h.tracker.Comments)

	rr = h.do(t, http.MethodPost, "/api/notion/comments", `{"page_id":"p1","text":""}`, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleTestConnection(t *testing.T) {
	h := newHarness(t, Credentials{})

	rr := h.do(t, http.MethodGet, "/api/notion/test-connection", "", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, false, decode(t, rr)["connected"])

	headers := map[string]string{TokenHeader: "ntn_header_token_5678"}
	rr = h.do(t, http.MethodGet, "/api/notion/test-connection", "", headers)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, decode(t, rr)["connected"])

	h.tracker.ConnectionError = "401: unauthorized"
	rr = h.do(t, http.MethodGet, "/api/notion/test-connection", "", headers)
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, false, body["connected"])
	assert.Equal(t, "401: unauthorized", body["error"])
}

func TestNotionFactoryUsesRequestCredentials(t *testing.T) {
	var gotAuth string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"object":"user","id":"u1","name":"bot"}`))
	}))
	defer upstream.Close()

	cfg := model.DefaultAppConfig()
	cfg.Notion.BaseURL = upstream.URL

	srv := NewServer("127.0.0.1:0", Credentials{}, NotionFactory(cfg, nil), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/notion/test-connection", nil)
	req.Header.Set(TokenHeader, "ntn_header_token_5678")
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, decode(t, rr)["connected"])
	assert.Equal(t, "Bearer ntn_header_token_5678", gotAuth)
}

func TestForbiddenUpstreamAnswersUnauthorized(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"object":"error","status":403,"code":"restricted_resource","message":"Insufficient permissions."}`))
	}))
	defer upstream.Close()

	cfg := model.DefaultAppConfig()
	cfg.Notion.BaseURL = upstream.URL

	srv := NewServer("127.0.0.1:0", configured, NotionFactory(cfg, nil), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/notion/tasks/p1", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.NotContains(t, rr.Body.String(), configured.Token.Reveal())
}

package notion

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/bugtriage/internal/credential"
)

func TestAddComment(t *testing.T) {
	svc, fake := newTestService(t, map[string]route{
		"POST /comments": func(recordedCall) (int, any) {
			return http.StatusOK, map[string]any{"object": "comment", "id": "c1"}
		},
	})

	require.NoError(t, svc.AddComment(context.Background(), "p1", "Reproduced on v2.3"))

	calls := fake.callsTo(http.MethodPost, "/comments")
	require.Len(t, calls, 1)
	assert.Equal(t, map[string]any{
		"parent": map[string]any{"page_id": "p1"},
		"rich_text": []any{
			map[string]any{"type": "text", "text": map[string]any{"content": "Reproduced on v2.3"}},
		},
	}, calls[0].Body)
}

func TestAddCommentFailureNotRetried(t *testing.T) {
	svc, fake := newTestService(t, map[string]route{
		"POST /comments": func(recordedCall) (int, any) {
			return http.StatusForbidden, errorBody(403, "restricted_resource",
				"Integration lacks comment capability.")
		},
	})

	err := svc.AddComment(context.Background(), "p1", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Integration lacks comment capability.")
	assert.Len(t, fake.callsTo(http.MethodPost, "/comments"), 1)
}

func TestTestConnection(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		svc, _ := newTestService(t, map[string]route{
			"GET /users/me": func(recordedCall) (int, any) {
				return http.StatusOK, map[string]any{"object": "user", "id": "u1", "name": "Triage Bot", "type": "bot"}
			},
		})

		ok, msg := svc.TestConnection(context.Background())
		assert.True(t, ok)
		assert.Empty(t, msg)

		me, err := svc.WhoAmI(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Triage Bot", me.Name)
	})

	t.Run("http failure", func(t *testing.T) {
		long := strings.Repeat("x", 500)
		svc, _ := newTestService(t, map[string]route{
			"GET /users/me": func(recordedCall) (int, any) {
				return http.StatusUnauthorized, errorBody(401, "unauthorized", long)
			},
		})

		ok, msg := svc.TestConnection(context.Background())
		assert.False(t, ok)
		assert.True(t, strings.HasPrefix(msg, "401: {"), msg)
		assert.Len(t, msg, len("401: ")+200)
		assert.NotContains(t, msg, testToken)
	})

	t.Run("transport failure", func(t *testing.T) {
		svc, err := New(Config{
			BaseURL: "http://127.0.0.1:1",
			Token:   credential.NewSecret(testToken),
			Logger:  hclog.NewNullLogger(),
		})
		require.NoError(t, err)
		defer svc.Close()

		ok, msg := svc.TestConnection(context.Background())
		assert.False(t, ok)
		assert.NotEmpty(t, msg)
	})
}

func TestTestConnectionPreviewKeepsRunes(t *testing.T) {
	svc, _ := newTestService(t, map[string]route{
		"GET /users/me": func(recordedCall) (int, any) {
			return http.StatusBadGateway, map[string]any{"message": strings.Repeat("é", 300)}
		},
	})

	ok, msg := svc.TestConnection(context.Background())
	assert.False(t, ok)
	assert.True(t, strings.HasPrefix(msg, "502: "), msg)
	assert.True(t, utf8.ValidString(msg))
	assert.LessOrEqual(t, len(msg), len("502: ")+probeBodyPreview)
}

func TestClip(t *testing.T) {
	assert.Equal(t, "abc", clip("abc", 5))
	assert.Equal(t, "ab", clip("abc", 2))
	// "é" is two bytes; cutting after one byte backs off to the boundary.
	assert.Equal(t, "a", clip("aé", 2))
	assert.Equal(t, "aé", clip("aéb", 3))
}

package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDigestPostsForm(t *testing.T) {
	t.Parallel()

	var path, chat, text atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		path.Store(r.URL.Path)
		chat.Store(r.PostForm.Get("chat_id"))
		text.Store(r.PostForm.Get("text"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	n := NewNotifier("123:abc", "42", server.URL+"/")
	require.NoError(t, n.PublishDigest(context.Background(), "hello digest"))

	assert.Equal(t, "/bot123:abc/sendMessage", path.Load())
	assert.Equal(t, "42", chat.Load())
	assert.Equal(t, "hello digest", text.Load())
}

func TestPublishDigestReportsAPIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false,"description":"chat not found"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	err := NewNotifier("t", "c", server.URL).PublishDigest(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestPublishDigestMisconfigured(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	assert.Error(t, NewNotifier("", "42", server.URL).PublishDigest(context.Background(), "x"))
	assert.Zero(t, hits.Load())
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", truncate("short", 10))
	long := strings.Repeat("é", maxMessageRunes+10)
	out := truncate(long, maxMessageRunes)
	assert.Equal(t, maxMessageRunes, utf8.RuneCountInString(out))
	assert.True(t, strings.HasSuffix(out, "…"))
}

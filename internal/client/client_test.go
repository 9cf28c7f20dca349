package client_test

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kumarlokesh/trie-server/internal/api"
	"github.com/kumarlokesh/trie-server/internal/client"
	"github.com/kumarlokesh/trie-server/internal/config"
	"github.com/kumarlokesh/trie-server/internal/trie"
	"github.com/kumarlokesh/trie-server/internal/types"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg, err := config.LoadConfig("", nil)
	require.NoError(t, err)

	server := api.NewServer(cfg, trie.New(), zerolog.Nop())
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestClient_Operations(t *testing.T) {
	ts := newTestServer(t)
	c := client.New(ts.URL+"/", time.Second)
	ctx := context.Background()

	resp, err := c.Add(ctx, "hello")
	require.NoError(t, err)
	assert.True(t, resp.Succeeded)
	assert.Equal(t, "ADDED", resp.Status)

	_, err = c.Add(ctx, "help")
	require.NoError(t, err)

	resp, err = c.Search(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, "FOUND", resp.Status)

	resp, err = c.Autocomplete(ctx, "hel")
	require.NoError(t, err)
	assert.Equal(t, []string{"hello", "help"}, resp.Words)

	resp, err = c.Delete(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, "DELETED", resp.Status)

	resp, err = c.Search(ctx, "hello")
	require.NoError(t, err)
	assert.False(t, resp.Succeeded)
	assert.Equal(t, "NOT_FOUND", resp.Status)

	resp, err = c.Display(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"help"}, resp.Words)

	resp, err = c.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, "RESET", resp.Status)

	resp, err = c.Display(ctx)
	require.NoError(t, err)
	assert.Equal(t, "EMPTY", resp.Status)
}

func TestClient_MissingWord(t *testing.T) {
	c := client.New("http://127.0.0.1:1", time.Second)

	_, err := c.Do(context.Background(), types.OperationAdd, "")
	assert.ErrorIs(t, err, client.ErrMissingWord)
}

func TestClient_Unreachable(t *testing.T) {
	// Grab a free port and release it so nothing is listening there
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	c := client.New("http://"+addr, time.Second)
	_, err = c.Display(context.Background())
	assert.ErrorIs(t, err, client.ErrUnreachable)
}

func TestClient_Timeout(t *testing.T) {
	block := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer ts.Close()
	defer close(block)

	c := client.New(ts.URL, 50*time.Millisecond)
	_, err := c.Display(context.Background())
	assert.ErrorIs(t, err, client.ErrUnreachable)
}

func TestClient_UnexpectedResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer ts.Close()

	c := client.New(ts.URL, time.Second)
	_, err := c.Search(context.Background(), "word")
	assert.ErrorIs(t, err, client.ErrUnexpectedResponse)
}

package cli

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http/httptest"
	"path/filepath"
	"strings"
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

func newTestServer(t *testing.T) (*httptest.Server, *trie.Trie) {
	t.Helper()
	cfg, err := config.LoadConfig("", nil)
	require.NoError(t, err)

	tr := trie.New()
	ts := httptest.NewServer(api.NewServer(cfg, tr, zerolog.Nop()).Handler())
	t.Cleanup(ts.Close)
	return ts, tr
}

func execute(t *testing.T, serverURL string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand(&out, &errOut)
	cmd.SetArgs(append(args, "--server", serverURL))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRoot_Operations(t *testing.T) {
	ts, tr := newTestServer(t)

	for _, w := range []string{"This", "is", "one", "nice", "test"} {
		out, _, err := execute(t, ts.URL, "--add", w)
		require.NoError(t, err)
		assert.Contains(t, out, "Executing operation add...")
		assert.Contains(t, out, "Trie Operation add Succeeded")
	}
	assert.Equal(t, 5, tr.Len())

	out, _, err := execute(t, ts.URL, "--delete", "This")
	require.NoError(t, err)
	assert.Contains(t, out, "This was deleted from the trie")

	out, _, err = execute(t, ts.URL, "--search", "This")
	require.NoError(t, err)
	assert.NotContains(t, out, "Succeeded")
	assert.Contains(t, out, "This was not found in the trie")

	out, _, err = execute(t, ts.URL, "--autocomplete", "o")
	require.NoError(t, err)
	assert.Contains(t, out, "1 word starts with o\none\n")

	out, _, err = execute(t, ts.URL, "--display")
	require.NoError(t, err)
	assert.Contains(t, out, "is\nnice\none\ntest\n")

	out, _, err = execute(t, ts.URL, "--reset")
	require.NoError(t, err)
	assert.Contains(t, out, "Trie Operation reset Succeeded")
	assert.Equal(t, 0, tr.Len())
}

func TestRoot_Malformed(t *testing.T) {
	ts, tr := newTestServer(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "unknown flag",
			args:    []string{"--insert", "word"},
			wantErr: "Please enter an allowed command",
		},
		{
			name:    "multiple operations",
			args:    []string{"--add", "--delete", "word"},
			wantErr: "Please enter 1 allowed command at a time",
		},
		{
			name:    "missing word",
			args:    []string{"--search"},
			wantErr: "Please include a word with operation search",
		},
		{
			name:    "too many words",
			args:    []string{"--add", "two", "words"},
			wantErr: "Please enter a single word with operation add",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errOut, err := execute(t, ts.URL, tt.args...)
			assert.ErrorIs(t, err, ErrMalformed)
			assert.Contains(t, errOut, tt.wantErr)
		})
	}

	assert.Equal(t, 0, tr.Len())
}

func TestRoot_NoOperationShowsHelp(t *testing.T) {
	ts, _ := newTestServer(t)

	out, _, err := execute(t, ts.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "All Possible Commands For The Trie")
}

func TestRoot_DisplayIgnoresWord(t *testing.T) {
	ts, _ := newTestServer(t)

	out, _, err := execute(t, ts.URL, "--display", "ignored")
	require.NoError(t, err)
	assert.Contains(t, out, "The trie is empty")
}

func TestRoot_Unreachable(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	url := "http://" + l.Addr().String()
	require.NoError(t, l.Close())

	_, errOut, err := execute(t, url, "--display", "--timeout", "500ms")
	assert.ErrorIs(t, err, client.ErrUnreachable)
	assert.Contains(t, errOut, "Error : Was not able to connect to the server")
}

func TestRoot_SetupErrors(t *testing.T) {
	ts, tr := newTestServer(t)
	missing := filepath.Join(t.TempDir(), "missing.yaml")

	tests := []struct {
		name      string
		serverURL string
		args      []string
		wantErr   string
	}{
		{
			name:      "invalid server url",
			serverURL: "not-a-url",
			args:      []string{"--add", "word"},
			wantErr:   `Error : invalid server url "not-a-url"`,
		},
		{
			name:      "non-positive timeout",
			serverURL: ts.URL,
			args:      []string{"--add", "word", "--timeout", "0s"},
			wantErr:   "Error : client timeout must be positive",
		},
		{
			name:      "missing config file",
			serverURL: ts.URL,
			args:      []string{"--add", "word", "--config", missing},
			wantErr:   "Error : failed to read config file",
		},
		{
			name:      "shell with invalid server url",
			serverURL: "not-a-url",
			args:      []string{"shell"},
			wantErr:   `Error : invalid server url "not-a-url"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, errOut, err := execute(t, tt.serverURL, tt.args...)
			require.Error(t, err)
			assert.NotErrorIs(t, err, ErrMalformed)
			assert.Contains(t, errOut, tt.wantErr)
			assert.NotContains(t, out, "Executing operation")
		})
	}

	assert.Equal(t, 0, tr.Len())
}

func TestResolve(t *testing.T) {
	flag := func(v bool) *bool { return &v }

	ops := operationFlags{}
	for _, op := range types.Operations {
		ops[op] = flag(false)
	}
	*ops[types.OperationReset] = true

	op, word, err := ops.resolve(nil)
	require.NoError(t, err)
	assert.Equal(t, types.OperationReset, op)
	assert.Empty(t, word)

	*ops[types.OperationReset] = false
	_, _, err = ops.resolve([]string{"word"})
	assert.ErrorIs(t, err, errNoOperation)
}

// scriptReader feeds fixed lines to the shell loop
type scriptReader struct {
	lines []string
}

func (s *scriptReader) Readline() (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func TestShell(t *testing.T) {
	ts, tr := newTestServer(t)

	var out, errOut bytes.Buffer
	r := &runner{
		client: client.New(ts.URL, time.Second),
		server: ts.URL,
		logger: zerolog.Nop(),
		out:    &out,
		errOut: &errOut,
	}

	script := &scriptReader{lines: []string{
		"add apple",
		"--add apply",
		"",
		"add",
		"search reset",
		"add one two",
		"bogus",
		"autocomplete app",
		"help",
		"exit",
		"add never",
	}}

	require.NoError(t, runShell(context.Background(), script, r))

	assert.Equal(t, 2, tr.Len())
	assert.Contains(t, out.String(), "2 words start with app\napple\napply\n")
	assert.Contains(t, out.String(), "reset was not found in the trie")
	assert.Contains(t, errOut.String(), "Please include a word with operation add")
	assert.Contains(t, errOut.String(), "Please enter a single word with operation add")
	assert.Equal(t, 2, strings.Count(out.String(), "leaves the shell"), "help for 'bogus' and 'help'")

	search, err := tr.Search("never")
	require.NoError(t, err)
	assert.Equal(t, trie.StatusNotFound, search.Status)
}

func TestParseShellLine(t *testing.T) {
	op, word, err := parseShellLine([]string{"delete", "word"})
	require.NoError(t, err)
	assert.Equal(t, types.OperationDelete, op)
	assert.Equal(t, "word", word)

	_, _, err = parseShellLine([]string{"--nope"})
	assert.ErrorIs(t, err, ErrMalformed)

	_, _, err = parseShellLine([]string{"add", "--reset", "x"})
	assert.ErrorIs(t, err, ErrMalformed)
}

// Package client talks to a running trie server over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kumarlokesh/trie-server/internal/types"
)

var (
	// ErrUnreachable is returned when the server cannot be reached or does not
	// answer in time
	ErrUnreachable = errors.New("trie server unreachable")
	// ErrUnexpectedResponse is returned when the server answers with something
	// that is not a trie response
	ErrUnexpectedResponse = errors.New("unexpected response from trie server")
	// ErrMissingWord is returned when a word operation is called without a word
	ErrMissingWord = errors.New("operation requires a word")
)

// Client is an HTTP client for the trie server
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the server at baseURL
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Do executes op against the server. word is ignored for display and reset.
// Negative outcomes such as NOT_FOUND and INVALID_INPUT are returned as a
// Response, not an error.
func (c *Client) Do(ctx context.Context, op types.Operation, word string) (*types.Response, error) {
	var (
		req *http.Request
		err error
	)

	url := fmt.Sprintf("%s/%s", c.baseURL, op)
	if op.NeedsWord() {
		if word == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingWord, op)
		}
		body, merr := json.Marshal(types.WordRequest{SpecifiedWord: word})
		if merr != nil {
			return nil, fmt.Errorf("failed to encode request: %w", merr)
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err == nil {
			req.Header.Set("Content-Type", "application/json")
		}
	} else {
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set(types.RequestIDHeader, uuid.New().String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	var out types.Response
	if err := json.Unmarshal(data, &out); err != nil || out.Status == "" {
		return nil, fmt.Errorf("%w: status %d", ErrUnexpectedResponse, resp.StatusCode)
	}
	return &out, nil
}

// Add stores word on the server
func (c *Client) Add(ctx context.Context, word string) (*types.Response, error) {
	return c.Do(ctx, types.OperationAdd, word)
}

// Delete removes word on the server
func (c *Client) Delete(ctx context.Context, word string) (*types.Response, error) {
	return c.Do(ctx, types.OperationDelete, word)
}

// Search checks whether word is stored on the server
func (c *Client) Search(ctx context.Context, word string) (*types.Response, error) {
	return c.Do(ctx, types.OperationSearch, word)
}

// Autocomplete lists stored words starting with prefix
func (c *Client) Autocomplete(ctx context.Context, prefix string) (*types.Response, error) {
	return c.Do(ctx, types.OperationAutocomplete, prefix)
}

// Display lists every stored word
func (c *Client) Display(ctx context.Context) (*types.Response, error) {
	return c.Do(ctx, types.OperationDisplay, "")
}

// Reset clears the trie on the server
func (c *Client) Reset(ctx context.Context) (*types.Response, error) {
	return c.Do(ctx, types.OperationReset, "")
}

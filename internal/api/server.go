package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/kumarlokesh/trie-server/internal/config"
	"github.com/kumarlokesh/trie-server/internal/metrics"
	"github.com/kumarlokesh/trie-server/internal/trie"
	"github.com/kumarlokesh/trie-server/internal/types"
)

// maxBodyBytes bounds the JSON request body of the word operations
const maxBodyBytes = 64 * 1024

// Server represents the HTTP API server in front of the shared trie
type Server struct {
	trie    *trie.Trie
	metrics *metrics.Metrics
	logger  zerolog.Logger
	server  *http.Server
	addr    string
	cancel  context.CancelFunc
	ctx     context.Context
}

// NewServer creates a new API server for the given trie
func NewServer(cfg *config.Config, t *trie.Trie, logger zerolog.Logger) *Server {
	s := &Server{
		trie:    t,
		metrics: metrics.New(),
		logger:  logger,
		addr:    cfg.Server.Addr(),
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	r := mux.NewRouter()

	middleware := []mux.MiddlewareFunc{requestID, s.requestLogger}
	if cfg.RateLimit.Enabled {
		middleware = append(middleware, s.rateLimit(cfg.RateLimit))
	}
	r.Use(middleware...)

	// Listing and reset take no word
	r.HandleFunc("/display", s.display).Methods(http.MethodGet)
	r.HandleFunc("/reset", s.reset).Methods(http.MethodGet)

	// Word operations
	r.HandleFunc("/add", s.wordHandler(types.OperationAdd, s.trie.Add)).Methods(http.MethodPost)
	r.HandleFunc("/delete", s.wordHandler(types.OperationDelete, s.trie.Delete)).Methods(http.MethodPost)
	r.HandleFunc("/search", s.wordHandler(types.OperationSearch, s.trie.Search)).Methods(http.MethodPost)
	r.HandleFunc("/autocomplete", s.wordHandler(types.OperationAutocomplete, s.trie.Autocomplete)).Methods(http.MethodPost)

	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	// mux only applies r.Use middleware to matched routes
	r.MethodNotAllowedHandler = chain(middleware, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.respondError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
			fmt.Sprintf("%s is not allowed on %s", r.Method, r.URL.Path))
	}))
	r.NotFoundHandler = chain(middleware, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		zerolog.Ctx(r.Context()).Debug().Msg("no route matched")
		s.respondError(w, r, http.StatusNotFound, "NOT_FOUND_ROUTE",
			fmt.Sprintf("no route for %s %s", r.Method, r.URL.Path))
	}))

	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	s.metrics.SetSize(t.Len(), t.NodeCount())
	return s
}

// chain wraps h so that middleware[0] runs first
func chain(middleware []mux.MiddlewareFunc, h http.Handler) http.Handler {
	for i := len(middleware) - 1; i >= 0; i-- {
		h = middleware[i](h)
	}
	return h
}

// Handler returns the HTTP handler for the server
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Addr returns the address the server is configured to listen on
func (s *Server) Addr() string {
	return s.addr
}

// Metrics returns the server's metrics
func (s *Server) Metrics() *metrics.Metrics {
	return s.metrics
}

// Start starts the HTTP server and blocks until the server is shut down
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.server.Addr, err)
	}
	return s.Serve(listener)
}

// Serve accepts connections on listener and blocks until the server is shut down
func (s *Server) Serve(listener net.Listener) error {
	errChan := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", listener.Addr().String()).Msg("server listening")
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-s.ctx.Done():
		s.logger.Debug().Msg("server context cancelled")
		return nil
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down server")
	s.cancel()
	return s.server.Shutdown(ctx)
}

// Helper functions for HTTP responses
func (s *Server) respond(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	zerolog.Ctx(r.Context()).Debug().Int("status", status).Str("code", code).Msg(msg)
	s.respond(w, status, types.Response{
		Succeeded: false,
		Status:    code,
		Message:   msg,
	})
}

func (s *Server) respondResult(w http.ResponseWriter, res trie.Result) {
	s.respond(w, http.StatusOK, types.Response{
		Succeeded: res.Succeeded(),
		Status:    string(res.Status),
		Message:   res.Message,
		Words:     res.Words,
	})
}

// observe runs op against the trie and records its outcome
func (s *Server) observe(r *http.Request, op types.Operation, fn func() (trie.Result, error)) (trie.Result, error) {
	start := time.Now()
	res, err := fn()
	elapsed := time.Since(start)

	status := string(res.Status)
	if err != nil {
		status = types.StatusInvalidInput
	}
	s.metrics.ObserveOperation(string(op), status, elapsed)
	s.metrics.SetSize(s.trie.Len(), s.trie.NodeCount())

	zerolog.Ctx(r.Context()).Debug().
		Str("operation", string(op)).
		Str("status", status).
		Dur("elapsed", elapsed).
		Msg("trie operation")
	return res, err
}

// HTTP Handlers

// wordHandler handles POST /{operation} with a {"specifiedWord": ...} body
func (s *Server) wordHandler(op types.Operation, fn func(string) (trie.Result, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.WordRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err := dec.Decode(&req); err != nil {
			s.respondError(w, r, http.StatusBadRequest, types.StatusInvalidInput,
				fmt.Sprintf("malformed request body: %v", err))
			return
		}

		res, err := s.observe(r, op, func() (trie.Result, error) {
			return fn(req.SpecifiedWord)
		})
		if err != nil {
			if errors.Is(err, trie.ErrInvalidInput) {
				s.respondError(w, r, http.StatusBadRequest, types.StatusInvalidInput,
					fmt.Sprintf("Please include a word with operation %s: %v", op, err))
				return
			}
			s.respondError(w, r, http.StatusInternalServerError, "INTERNAL", err.Error())
			return
		}

		s.respondResult(w, res)
	}
}

// display handles GET /display
func (s *Server) display(w http.ResponseWriter, r *http.Request) {
	res, _ := s.observe(r, types.OperationDisplay, func() (trie.Result, error) {
		return s.trie.Display(), nil
	})
	s.respondResult(w, res)
}

// reset handles GET /reset
func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	res, _ := s.observe(r, types.OperationReset, func() (trie.Result, error) {
		return s.trie.Reset(), nil
	})
	zerolog.Ctx(r.Context()).Info().Msg("trie reset")
	s.respondResult(w, res)
}

// health handles GET /health
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"words":  s.trie.Len(),
	})
}

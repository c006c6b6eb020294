// Package server exposes roster analysis over HTTP: upload two directory
// snapshots to get the change report, or a roster spreadsheet as well to get
// the updated spreadsheet back.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/kamusis/roster-cli/internal/apply"
	"github.com/kamusis/roster-cli/internal/diff"
	"github.com/kamusis/roster-cli/internal/logger"
	"github.com/kamusis/roster-cli/internal/metrics"
)

const (
	DefaultMaxUploadBytes = 16 << 20
	shutdownTimeout       = 5 * time.Second
)

type Options struct {
	Addr           string
	MaxUploadBytes int64
	Version        string
	Engine         *diff.Engine
	Apply          apply.Options
	Metrics        *metrics.Metrics
}

type Server struct {
	opts    Options
	handler http.Handler
	logger  *slog.Logger
}

func New(opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if opts.Engine == nil {
		opts.Engine = diff.New()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	s := &Server{
		opts:   opts,
		logger: logger.WithComponent("server"),
	}
	s.handler = s.routes()
	return s
}

// Handler returns the full handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// routes builds the route table.
//
//	POST /analyze          two .txt snapshots -> JSON change report
//	POST /update-excel     roster + two snapshots -> updated roster file
//	POST /create-template  year columns -> blank roster template
//	GET  /health
//	GET  /metrics
//
// Middleware chain (outermost first): RequestID -> Recover -> Metrics -> mux
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("POST /update-excel", s.handleUpdate)
	mux.HandleFunc("POST /create-template", s.handleTemplate)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", s.opts.Metrics.Handler())

	var chain http.Handler = mux
	chain = instrument(s.opts.Metrics)(chain)
	chain = recoverPanics(chain)
	chain = requestID(chain)
	return chain
}

// Run listens on opts.Addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.FromContext(r.Context()).Error("failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, r, status, map[string]string{"error": message})
}

// Package server exposes the study pipeline over HTTP.
//
// Routes:
//
//	POST /v1/sweeps       run a study given as JSON pipeline options
//	GET  /v1/sweeps/{id}  fetch a stored run
//	GET  /healthz         liveness
//	GET  /metrics         Prometheus metrics, when configured
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/tipscan/pkg/buildinfo"
	errs "github.com/matzehuels/tipscan/pkg/errors"
	"github.com/matzehuels/tipscan/pkg/observability"
	"github.com/matzehuels/tipscan/pkg/pipeline"
	"github.com/matzehuels/tipscan/pkg/store"
)

// Defaults for [Options].
const (
	DefaultTimeout      = 5 * time.Minute
	DefaultMaxBodyBytes = 1 << 20
	DefaultMaxWorkers   = 8
)

// Options configures a Server.
type Options struct {
	Logger       *log.Logger
	Metrics      http.Handler
	Timeout      time.Duration
	MaxBodyBytes int64
	MaxWorkers   int
}

// Server serves the HTTP API.
type Server struct {
	runner *pipeline.Runner
	opts   Options
	router chi.Router
}

// New creates a server around runner.
func New(runner *pipeline.Runner, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = runner.Logger
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = DefaultMaxWorkers
	}
	s := &Server{runner: runner, opts: opts}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.opts.Logger.Info("listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	if s.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.Metrics)
	}
	r.Route("/v1/sweeps", func(r chi.Router) {
		r.Post("/", s.handleSweep)
		r.Get("/{id}", s.handleGetRun)
	})
	return r
}

// observe reports every request to the HTTP hooks, labeled with the
// matched route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		observability.HTTP().OnRequest(r.Context(), r.Method, route)
		observability.HTTP().OnResponse(r.Context(), r.Method, route, status, time.Since(start))
		s.opts.Logger.Debug("request", "method", r.Method, "route", route, "status", status, "took", time.Since(start).Round(time.Millisecond))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

// sweepResponse wraps the run document. Error is set for partial runs.
type sweepResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error,omitempty"`
}

func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil {
		writeError(w, errs.Wrap(errs.ErrCodeInvalidConfig, err, "decode request"))
		return
	}
	if opts.Workers <= 0 || opts.Workers > s.opts.MaxWorkers {
		opts.Workers = s.opts.MaxWorkers
	}
	opts.Formats = []string{pipeline.FormatJSON}
	opts.Logger = s.opts.Logger.With("request_id", middleware.GetReqID(r.Context()))

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.Timeout)
	defer cancel()
	res, err := s.runner.Execute(ctx, opts)
	if res == nil {
		writeError(w, err)
		return
	}
	resp := sweepResponse{Result: res.Artifacts[pipeline.FormatJSON]}
	if err != nil {
		resp.Error = errs.UserMessage(err)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !store.ValidID(id) {
		writeError(w, errs.New(errs.ErrCodeInvalidInput, "invalid run id %q", id))
		return
	}
	if s.runner.Store == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Code: "NOT_FOUND", Message: "runs are not stored"})
		return
	}
	rec, err := s.runner.Store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody{Code: "NOT_FOUND", Message: "run not found"})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/quicksilver/pkg/buildinfo"
	"github.com/matzehuels/quicksilver/pkg/errors"
	"github.com/matzehuels/quicksilver/pkg/estimator"
	"github.com/matzehuels/quicksilver/pkg/evaluator"
	"github.com/matzehuels/quicksilver/pkg/graph"
	"github.com/matzehuels/quicksilver/pkg/planner"
	"github.com/matzehuels/quicksilver/pkg/query"
)

// maxBodySize bounds request bodies; queries are short.
const maxBodySize = 64 << 10

// Server serves queries against one prepared evaluator.
type Server struct {
	ev     *evaluator.Evaluator
	logger *log.Logger
	router chi.Router

	mu sync.Mutex // serializes engine calls
}

// New creates a server for ev. ev must have a prepared estimator attached.
// A nil logger uses log.Default().
func New(ev *evaluator.Evaluator, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{ev: ev, logger: logger}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/stats", s.handleStats)
		r.Post("/estimate", s.handleEstimate)
		r.Post("/evaluate", s.handleEvaluate)
		r.Post("/plan", s.handlePlan)
	})
	return r
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully, waiting up to five seconds for running requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// =============================================================================
// Handlers
// =============================================================================

type queryRequest struct {
	Query    string `json:"query"`
	Strategy string `json:"strategy,omitempty"`
}

type labelStat struct {
	Label uint32 `json:"label"`
	graph.CardStat
}

type statsResponse struct {
	Vertices uint32      `json:"vertices"`
	Edges    int         `json:"edges"`
	Labels   uint32      `json:"labels"`
	Stats    []labelStat `json:"label_stats,omitempty"`
}

type estimateResponse struct {
	Query    string         `json:"query"`
	Estimate graph.CardStat `json:"estimate"`
	Duration time.Duration  `json:"duration_ns"`
}

type evaluateResponse struct {
	Query    string         `json:"query"`
	Result   graph.CardStat `json:"result"`
	Plan     string         `json:"plan,omitempty"`
	Strategy string         `json:"strategy,omitempty"`
	Duration time.Duration  `json:"duration_ns"`
}

type planResponse struct {
	Query    string         `json:"query"`
	Plan     string         `json:"plan"`
	Strategy string         `json:"strategy"`
	Cost     uint64         `json:"cost"`
	Estimate graph.CardStat `json:"estimate"`
	DOT      string         `json:"dot"`
}

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Current()})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	g := s.ev.Graph()
	resp := statsResponse{
		Vertices: g.NumVertices(),
		Edges:    g.NumEdges(),
		Labels:   g.NumLabels(),
	}
	if est, ok := s.ev.Estimator().(*estimator.Simple); ok && est.Prepared() {
		for l, st := range est.Stats() {
			resp.Stats = append(resp.Stats, labelStat{Label: uint32(l), CardStat: st})
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	q, _, ok := s.decodeQuery(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	start := time.Now()
	stat, err := s.ev.Estimate(q)
	elapsed := time.Since(start)
	s.mu.Unlock()

	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, estimateResponse{Query: q.String(), Estimate: stat, Duration: elapsed})
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	q, _, ok := s.decodeQuery(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	start := time.Now()
	stat, err := s.ev.Evaluate(q)
	elapsed := time.Since(start)
	plan := s.ev.LastPlan()
	s.mu.Unlock()

	if err != nil {
		writeError(w, err)
		return
	}
	resp := evaluateResponse{Query: q.String(), Result: stat, Duration: elapsed}
	if plan != nil {
		resp.Plan = plan.Root.String()
		resp.Strategy = string(plan.Strategy)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	q, req, ok := s.decodeQuery(w, r)
	if !ok {
		return
	}
	strategy, err := planner.ParseStrategy(req.Strategy)
	if err != nil {
		writeError(w, err)
		return
	}
	p := s.ev.Planner()
	if p == nil {
		writeError(w, errors.New(errors.ErrCodeUnsupported, "no estimator attached"))
		return
	}
	if err := query.Validate(q, s.ev.Graph().NumLabels()); err != nil {
		writeError(w, err)
		return
	}

	s.mu.Lock()
	plan, err := p.OptimizeWith(q, strategy)
	var dot string
	if err == nil {
		dot = planner.ToDOT(plan, planner.DOTOptions{Estimator: s.ev.Estimator()})
	}
	s.mu.Unlock()

	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, planResponse{
		Query:    q.String(),
		Plan:     plan.Root.String(),
		Strategy: string(plan.Strategy),
		Cost:     plan.Cost,
		Estimate: plan.Estimate,
		DOT:      dot,
	})
}

// decodeQuery reads and parses the request body. On failure it writes the
// error response and returns ok=false.
func (s *Server) decodeQuery(w http.ResponseWriter, r *http.Request) (*query.Node, queryRequest, bool) {
	var req queryRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return nil, req, false
	}
	q, err := query.Parse(req.Query)
	if err != nil {
		writeError(w, err)
		return nil, req, false
	}
	return q, req, true
}

// =============================================================================
// Responses
// =============================================================================

type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, statusFor(err), map[string]errorBody{
		"error": {Code: code, Message: errors.UserMessage(err)},
	})
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.IsInputError(err):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrCodeNotFound), errors.Is(err, errors.ErrCodeFileNotFound):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrCodeUnsupported):
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

// logRequests logs every request at debug level and server errors at error
// level.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		fields := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		}
		if ww.Status() >= http.StatusInternalServerError {
			s.logger.Error("request failed", fields...)
			return
		}
		s.logger.Debug("request", fields...)
	})
}

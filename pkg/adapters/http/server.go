// Package http exposes hosted sessions over a small JSON API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aretw0/stepwise"
	"github.com/aretw0/stepwise/internal/logging"
	mermaid "github.com/aretw0/stepwise/internal/presentation/graph"
	"github.com/aretw0/stepwise/pkg/session"
)

// Server serves the sessions of one Manager.
type Server[M any] struct {
	Sessions *session.Manager[M]
	Streams  *StreamManager

	view    func(M) any
	graph   string
	metrics http.Handler
	logger  *slog.Logger
}

// SessionResponse is the JSON body describing one session.
type SessionResponse struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Node        int       `json:"node"`
	Label       string    `json:"label,omitempty"`
	Kind        string    `json:"kind"`
	HasNext     bool      `json:"has_next"`
	HasPrevious bool      `json:"has_previous"`
	Model       any       `json:"model,omitempty"`
}

type options struct {
	logger  *slog.Logger
	graph   string
	metrics http.Handler
	streams *StreamManager
}

// Option configures the handler.
type Option func(*options)

// WithLogger sets the logger used for request errors.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithGraph serves a Mermaid diagram of the flow on GET /graph.
func WithGraph(diagram string) Option {
	return func(o *options) { o.graph = diagram }
}

// WithMetrics mounts h on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(o *options) { o.metrics = h }
}

// WithStreams shares a StreamManager whose hooks were given to the
// session controllers, enabling GET /sessions/{id}/events.
func WithStreams(sm *StreamManager) Option {
	return func(o *options) { o.streams = sm }
}

// NewHandler creates the HTTP handler. view converts a model into its JSON
// representation; it runs while the session's controller is locked.
func NewHandler[M any](sessions *session.Manager[M], view func(M) any, opts ...Option) http.Handler {
	o := options{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.streams == nil {
		o.streams = NewStreamManager()
	}
	s := &Server[M]{
		Sessions: sessions,
		Streams:  o.streams,
		view:     view,
		graph:    o.graph,
		metrics:  o.metrics,
		logger:   o.logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/graph", s.GetGraph)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.CreateSession)
		r.Get("/", s.ListSessions)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Post("/next", s.Next)
			r.Post("/back", s.Back)
			r.Get("/graph", s.GetSessionGraph)
			r.Get("/events", s.SubscribeEvents)
		})
	})
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server[M]) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server[M]) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "stepwise-http",
		"version": strings.TrimSpace(stepwise.Version),
	})
}

// GetGraph handles the GET /graph request.
func (s *Server[M]) GetGraph(w http.ResponseWriter, r *http.Request) {
	if s.graph == "" {
		http.Error(w, "No graph configured", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, s.graph)
}

// CreateSession handles the POST /sessions request.
func (s *Server[M]) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Sessions.Create(r.Context())
	if err != nil {
		s.writeError(w, "CreateSession", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, s.describe(sess))
}

// ListSessions handles the GET /sessions request.
func (s *Server[M]) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.writeError(w, "ListSessions", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// GetSession handles the GET /sessions/{id} request.
func (s *Server[M]) GetSession(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, "GetSession", func(*session.Session[M]) {})
}

// Next handles the POST /sessions/{id}/next request.
func (s *Server[M]) Next(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, "Next", func(sess *session.Session[M]) { sess.Controller.Next() })
}

// Back handles the POST /sessions/{id}/back request.
func (s *Server[M]) Back(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, "Back", func(sess *session.Session[M]) { sess.Controller.Back() })
}

// DeleteSession handles the DELETE /sessions/{id} request.
func (s *Server[M]) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Sessions.Delete(r.Context(), id); err != nil {
		s.writeError(w, "DeleteSession", err)
		return
	}
	s.Streams.Close(id)
	w.WriteHeader(http.StatusNoContent)
}

// GetSessionGraph handles the GET /sessions/{id}/graph request. The diagram
// includes spliced repetitions and highlights the current node.
func (s *Server[M]) GetSessionGraph(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, "GetSessionGraph", err)
		return
	}
	pos, nodes := sess.Controller.Layout()
	diagram := mermaid.GenerateMermaid(nodes, &mermaid.GraphOverlay{
		VisitedNodes: mermaid.Trail(nodes, pos.Node),
		CurrentNode:  pos.Node,
	})
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, diagram)
}

// withSession runs op and renders the resulting session while holding the
// session lock, so concurrent requests observe whole steps.
func (s *Server[M]) withSession(w http.ResponseWriter, r *http.Request, op string, fn func(*session.Session[M])) {
	var resp SessionResponse
	err := s.Sessions.WithLock(r.Context(), chi.URLParam(r, "id"), func(_ context.Context, sess *session.Session[M]) error {
		fn(sess)
		resp = s.describe(sess)
		return nil
	})
	if err != nil {
		s.writeError(w, op, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// describe reads the position and the model in one step, so timers firing
// in between cannot pair one node with another node's model.
func (s *Server[M]) describe(sess *session.Session[M]) SessionResponse {
	resp := SessionResponse{ID: sess.ID, CreatedAt: sess.CreatedAt}
	sess.Controller.Inspect(func(pos stepwise.Position, m M) {
		resp.Node = int(pos.Node)
		resp.Label = pos.Label
		resp.Kind = pos.Kind.String()
		resp.HasNext = pos.HasNext
		resp.HasPrevious = pos.HasPrevious
		if s.view != nil {
			resp.Model = s.view(m)
		}
	})
	return resp
}

func (s *Server[M]) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

// writeError maps sentinel errors onto status codes.
func (s *Server[M]) writeError(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		s.logger.Error(op+" failed", "error", err)
	} else {
		s.logger.Debug(op+" rejected", "error", err, "status", status)
	}
	http.Error(w, err.Error(), status)
}

package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/steltz/stepper"
	"github.com/steltz/stepper/internal/logging"
	"github.com/steltz/stepper/pkg/domain"
	"github.com/steltz/stepper/pkg/runner"
)

// Sessions is the hosting layer the API drives. session.Manager satisfies it.
type Sessions interface {
	Create(ctx context.Context) (string, domain.FormState, error)
	View(ctx context.Context, sessionID string) (domain.View, error)
	Render(state domain.FormState) (domain.View, error)
	Dispatch(ctx context.Context, sessionID string, action domain.Action) (domain.FormState, error)
	Delete(ctx context.Context, sessionID string) error
}

// Server serves survey sessions over JSON.
type Server struct {
	Sessions Sessions
	Catalog  []domain.QuestionView
	Streams  *StreamManager
	Logger   *slog.Logger
	Gate     *Gate
	Metrics  http.Handler
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.Logger = logger
		}
	}
}

// WithCatalog exposes the questions on GET /catalog.
func WithCatalog(questions []domain.QuestionView) Option {
	return func(s *Server) {
		s.Catalog = questions
	}
}

// WithGate replaces the device gate. A nil gate serves every device.
func WithGate(g *Gate) Option {
	return func(s *Server) {
		s.Gate = g
	}
}

// WithMetrics mounts h on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.Metrics = h
	}
}

// NewHandler creates the HTTP handler for sessions.
func NewHandler(sessions Sessions, opts ...Option) http.Handler {
	s := &Server{
		Sessions: sessions,
		Streams:  NewStreamManager(),
		Logger:   logging.NewNop(),
		Gate:     &Gate{MaxWidth: DefaultMaxWidth},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams.logger = s.Logger

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(RawSpec())
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}

	r.Group(func(r chi.Router) {
		if s.Gate != nil {
			r.Use(s.Gate.Middleware)
		}
		r.Get("/catalog", s.GetCatalog)
		r.Post("/sessions", s.CreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Post("/actions", s.DispatchAction)
			r.Get("/events", s.SubscribeEvents)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Sec-CH-Viewport-Width, Viewport-Width, Sec-CH-UA-Mobile")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Stepper API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

type errorResponse struct {
	Error   string `json:"error"`
	Title   string `json:"title,omitempty"`
	Message string `json:"message,omitempty"`
}

// sessionResponse is a view tagged with its session.
type sessionResponse struct {
	SessionID string `json:"session_id"`
	domain.View
}

type actionRequest struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := LoadSpec(r.Context()); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "stepper-http",
		"version":     stepper.Version,
		"api_version": apiVersion,
	})
}

// GetCatalog handles the GET /catalog request.
func (s *Server) GetCatalog(w http.ResponseWriter, r *http.Request) {
	questions := s.Catalog
	if questions == nil {
		questions = []domain.QuestionView{}
	}
	writeJSON(w, http.StatusOK, questions)
}

// CreateSession handles the POST /sessions request.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	id, state, err := s.Sessions.Create(r.Context())
	if err != nil {
		s.fail(w, "CreateSession", err)
		return
	}
	view, err := s.Sessions.Render(state)
	if err != nil {
		s.fail(w, "CreateSession", err)
		return
	}
	s.Logger.Debug("session created", "session_id", id)
	writeJSON(w, http.StatusCreated, sessionResponse{SessionID: id, View: view})
}

// GetSession handles the GET /sessions/{id} request.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	view, err := s.Sessions.View(r.Context(), id)
	if err != nil {
		s.fail(w, "GetSession", err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{SessionID: id, View: view})
}

// DeleteSession handles the DELETE /sessions/{id} request.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.Sessions.View(r.Context(), id); err != nil {
		s.fail(w, "DeleteSession", err)
		return
	}
	if err := s.Sessions.Delete(r.Context(), id); err != nil {
		s.fail(w, "DeleteSession", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DispatchAction handles the POST /sessions/{id}/actions request.
func (s *Server) DispatchAction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// JSON escaping can grow a value up to six times.
	r.Body = http.MaxBytesReader(w, r.Body, int64(runner.MaxInputSize())*6+1024)
	var body actionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.Logger.Warn("DispatchAction: invalid request body", "err", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	action, err := domain.ParseAction(body.Type, body.Value)
	if err != nil {
		s.fail(w, "DispatchAction", err)
		return
	}
	if set, ok := action.(domain.SetAnswer); ok {
		clean, err := runner.SanitizeInput(set.Value)
		if err != nil {
			s.Logger.Warn("DispatchAction: input rejected", "err", err, "size", len(set.Value))
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid input: %v", err)})
			return
		}
		action = domain.SetAnswer{Value: clean}
	}

	// Render the dispatched state; a second read may already include a later action.
	state, err := s.Sessions.Dispatch(r.Context(), id, action)
	if err != nil {
		s.fail(w, "DispatchAction", err)
		return
	}
	view, err := s.Sessions.Render(state)
	if err != nil {
		s.fail(w, "DispatchAction", err)
		return
	}

	resp := sessionResponse{SessionID: id, View: view}
	if payload, err := json.Marshal(resp); err == nil {
		s.Streams.Broadcast(id, string(payload))
	}
	writeJSON(w, http.StatusOK, resp)
}

// fail maps domain errors to status codes.
func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrUnknownAction):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, context.Canceled):
		s.Logger.Debug(op+": request canceled", "err", err)
	default:
		s.Logger.Error(op+" failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "err", err)
	}
}

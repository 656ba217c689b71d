package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/steltz/stepper"
	"github.com/steltz/stepper/internal/logging"
	"github.com/steltz/stepper/pkg/domain"
	"github.com/steltz/stepper/pkg/runner"
)

// CatalogURI is the resource listing every question.
const CatalogURI = "stepper://catalog"

// Sessions is the hosting layer the tools drive. session.Manager satisfies it.
type Sessions interface {
	Create(ctx context.Context) (string, domain.FormState, error)
	View(ctx context.Context, sessionID string) (domain.View, error)
	Dispatch(ctx context.Context, sessionID string, action domain.Action) (domain.FormState, error)
}

// SurveyResponse is the result of every tool: the session view after the call.
type SurveyResponse struct {
	SessionID string      `json:"session_id" jsonschema_description:"Session to pass to the next tool call"`
	View      domain.View `json:"view" jsonschema_description:"Current question, progress, flags and visible error"`
}

type sessionArgs struct {
	SessionID string `json:"session_id"`
}

type answerArgs struct {
	SessionID string `json:"session_id"`
	Value     string `json:"value"`
}

// Server exposes survey sessions as MCP tools.
type Server struct {
	sessions  Sessions
	catalog   []domain.QuestionView
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(sessions Sessions, catalog []domain.QuestionView, opts ...Option) *Server {
	s := &Server{
		sessions:  sessions,
		catalog:   catalog,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("stepper-mcp", stepper.Version),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
		return nil
	})

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutdown signal received, stopping MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func sessionParam() mcp.ToolOption {
	return mcp.WithString("session_id", mcp.Required(), mcp.Description("Session returned by start_survey"))
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("start_survey",
		mcp.WithDescription("Start a new survey session positioned on the first question."),
		mcp.WithOutputSchema[SurveyResponse](),
	), mcp.NewStructuredToolHandler(s.handleStart))

	s.mcpServer.AddTool(mcp.NewTool("get_survey",
		mcp.WithDescription("Show the current question, progress and any validation error of a session."),
		sessionParam(),
		mcp.WithOutputSchema[SurveyResponse](),
	), mcp.NewStructuredToolHandler(s.handleGet))

	s.mcpServer.AddTool(mcp.NewTool("answer",
		mcp.WithDescription("Set the answer of the current question. Yes/no questions accept exactly \"Yes\" or \"No\"."),
		sessionParam(),
		mcp.WithString("value", mcp.Required(), mcp.Description("Answer text")),
		mcp.WithOutputSchema[SurveyResponse](),
	), mcp.NewStructuredToolHandler(s.handleAnswer))

	s.mcpServer.AddTool(mcp.NewTool("next",
		mcp.WithDescription("Move to the next question."),
		sessionParam(),
		mcp.WithOutputSchema[SurveyResponse](),
	), mcp.NewStructuredToolHandler(s.step(domain.Next{})))

	s.mcpServer.AddTool(mcp.NewTool("back",
		mcp.WithDescription("Return to the previous question. Answers are kept."),
		sessionParam(),
		mcp.WithOutputSchema[SurveyResponse](),
	), mcp.NewStructuredToolHandler(s.step(domain.Back{})))

	s.mcpServer.AddTool(mcp.NewTool("submit",
		mcp.WithDescription("Submit the survey. Only succeeds on the last question with a valid answer."),
		sessionParam(),
		mcp.WithOutputSchema[SurveyResponse](),
	), mcp.NewStructuredToolHandler(s.step(domain.Submit{})))
}

func (s *Server) handleStart(ctx context.Context, _ mcp.CallToolRequest, _ struct{}) (SurveyResponse, error) {
	id, _, err := s.sessions.Create(ctx)
	if err != nil {
		return SurveyResponse{}, fmt.Errorf("start failed: %w", err)
	}
	s.logger.Debug("MCP: session started", "session_id", id)
	return s.respond(ctx, id)
}

func (s *Server) handleGet(ctx context.Context, _ mcp.CallToolRequest, args sessionArgs) (SurveyResponse, error) {
	return s.respond(ctx, args.SessionID)
}

func (s *Server) handleAnswer(ctx context.Context, _ mcp.CallToolRequest, args answerArgs) (SurveyResponse, error) {
	clean, err := runner.SanitizeInput(args.Value)
	if err != nil {
		s.logger.Warn("MCP answer: input rejected", "err", err, "size", len(args.Value))
		return SurveyResponse{}, fmt.Errorf("input rejected: %w", err)
	}
	if _, err := s.sessions.Dispatch(ctx, args.SessionID, domain.SetAnswer{Value: clean}); err != nil {
		return SurveyResponse{}, describe(err)
	}
	return s.respond(ctx, args.SessionID)
}

// step returns a handler for a navigation action. Agents have nothing to
// animate, so the transition marker is acknowledged immediately.
func (s *Server) step(action domain.Action) func(context.Context, mcp.CallToolRequest, sessionArgs) (SurveyResponse, error) {
	return func(ctx context.Context, _ mcp.CallToolRequest, args sessionArgs) (SurveyResponse, error) {
		state, err := s.sessions.Dispatch(ctx, args.SessionID, action)
		if err != nil {
			return SurveyResponse{}, describe(err)
		}
		if state.Transition != domain.DirectionNone {
			if _, err := s.sessions.Dispatch(ctx, args.SessionID, domain.ClearTransition{}); err != nil {
				return SurveyResponse{}, describe(err)
			}
		}
		return s.respond(ctx, args.SessionID)
	}
}

func (s *Server) respond(ctx context.Context, id string) (SurveyResponse, error) {
	view, err := s.sessions.View(ctx, id)
	if err != nil {
		return SurveyResponse{}, describe(err)
	}
	return SurveyResponse{SessionID: id, View: view}, nil
}

func describe(err error) error {
	if errors.Is(err, domain.ErrSessionNotFound) {
		return fmt.Errorf("unknown session, call start_survey first: %w", err)
	}
	return err
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(CatalogURI, "Survey questions",
		mcp.WithMIMEType("application/json"),
	), s.readCatalog)
}

func (s *Server) readCatalog(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	jsonBytes, err := json.Marshal(s.catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to encode catalog: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      CatalogURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}

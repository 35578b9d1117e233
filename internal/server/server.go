package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/devops"
	"github.com/gorilla/mux"

	"github.com/deepagent/deepagent/internal/config"
	"github.com/deepagent/deepagent/internal/graph"
	"github.com/deepagent/deepagent/internal/service"
	"github.com/deepagent/deepagent/internal/storage/sqlite"
)

// QueryRunner executes research queries. Satisfied by service.Runner.
type QueryRunner interface {
	Run(ctx context.Context, query string, events chan graph.Event) (*service.RunResult, error)
}

// Server is the HTTP development server: it accepts research runs and serves
// stored sessions.
type Server struct {
	cfg    *config.Config
	runner QueryRunner
	store  *sqlite.Store
	httpd  *http.Server
}

func New(cfg *config.Config, runner QueryRunner, store *sqlite.Store) *Server {
	s := &Server{cfg: cfg, runner: runner, store: store}
	s.httpd = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/runs", s.handleRun).Methods(http.MethodPost)
	r.HandleFunc("/sessions", s.handleListSessions).Methods(http.MethodGet)
	r.HandleFunc("/sessions/{id}", s.handleGetSession).Methods(http.MethodGet)
	r.HandleFunc("/sessions/{id}/messages", s.handleListMessages).Methods(http.MethodGet)
	return r
}

// Start runs the server until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	if s.cfg.DebugServerEnabled {
		if err := devops.Init(ctx); err != nil {
			log.Printf("[Server] debug server init failed: %v", err)
		} else {
			log.Printf("[Server] eino debug server enabled")
		}
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[Server] listening on %s", s.cfg.HTTPAddr)
		if err := s.httpd.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpd.Shutdown(shutdownCtx)
	}
}

type inboundMessage struct {
	Content string `json:"content"`
	Type    string `json:"type"`
}

type runRequest struct {
	Messages []inboundMessage `json:"messages"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.cfg.Status()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":              "ok",
		"llm_provider":        s.cfg.LLMProvider,
		"openai_configured":   status.OpenAIConfigured,
		"tavily_configured":   status.TavilyConfigured,
		"tracing_enabled":     status.TracingEnabled,
		"longport_configured": status.LongportConfigured,
	})
}

// handleRun accepts {"messages":[{"content":"...","type":"human"}]} and runs
// the research workflow synchronously.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	query := ""
	for _, msg := range req.Messages {
		if msg.Type == "human" {
			query = msg.Content
		}
	}
	if strings.TrimSpace(query) == "" {
		writeError(w, http.StatusBadRequest, `payload must contain a non-empty message with type "human"`)
		return
	}

	result, err := s.runner.Run(r.Context(), query, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	cursor, _ := strconv.ParseInt(r.URL.Query().Get("cursor"), 10, 64)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	sessions, err := s.store.ListSessions(r.Context(), cursor, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if sessions == nil {
		sessions = []sqlite.SessionWithMeta{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	session, err := s.store.GetSession(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if session == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	session, err := s.store.GetSession(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if session == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	messages, err := s.store.ListMessages(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if messages == nil {
		messages = []sqlite.MessageWithMeta{}
	}
	writeJSON(w, http.StatusOK, messages)
}

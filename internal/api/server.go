package api

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/prajwal-ck/aidoc/internal/conversation"
	"github.com/prajwal-ck/aidoc/internal/pipeline"
)

//go:embed templates/*.html
var templatesFS embed.FS

const sessionCookie = "aidoc_session"

// ChatHandler answers one conversational input against a session's state.
type ChatHandler interface {
	Handle(ctx context.Context, st *conversation.State, input string) (conversation.Outcome, error)
}

// DocGenerator runs the documentation pipeline over a project root.
type DocGenerator interface {
	Run(ctx context.Context, root string) (*pipeline.Result, error)
}

type Options struct {
	Port           int
	Chat           ChatHandler
	Docs           DocGenerator
	Sessions       *conversation.Sessions
	UploadMaxBytes int64
	Logger         *slog.Logger
}

type Server struct {
	router    *chi.Mux
	port      int
	chat      ChatHandler
	docs      DocGenerator
	sessions  *conversation.Sessions
	uploadMax int64
	pages     *template.Template
	logger    *slog.Logger
	httpSrv   *http.Server

	mu      sync.Mutex
	lastDoc string
}

func NewServer(opts Options) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:    router,
		port:      opts.Port,
		chat:      opts.Chat,
		docs:      opts.Docs,
		sessions:  opts.Sessions,
		uploadMax: opts.UploadMaxBytes,
		pages:     template.Must(template.ParseFS(templatesFS, "templates/*.html")),
		logger:    opts.Logger,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/aidoc/status", s.status)

	router.Get("/", s.index)

	router.Get("/chat", s.chatPage)
	router.Post("/chat", s.chatSubmit)
	router.Route("/api/v1/chat", func(r chi.Router) {
		r.Get("/", s.chatHistory)
		r.Post("/", s.chatAPI)
		r.Delete("/", s.chatReset)
	})

	router.Get("/docs", s.docsPage)
	router.Post("/docs", s.docsSubmit)
	router.Post("/docs/upload", s.docsUpload)
	router.Get("/docs/download", s.docsDownload)
	router.Post("/api/v1/docs", s.docsAPI)

	return s
}

// Handler exposes the router, mainly for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown. There is no write timeout: a documentation
// run holds its request for several minutes.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.httpSrv = &http.Server{Addr: addr, Handler: s.router}
	s.logger.Info("API server starting", "addr", addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"agent":    "aidoc",
		"status":   "ready",
		"sessions": s.sessions.Len(),
	})
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "index.html", page{Title: "aidoc"})
}

// sessionID returns the caller's session, issuing a cookie on first visit.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) uuid.UUID {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id
		}
	}
	id := uuid.New()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id.String(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (s *Server) setLastDocument(path string) {
	s.mu.Lock()
	s.lastDoc = path
	s.mu.Unlock()
}

func (s *Server) lastDocument() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastDoc
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

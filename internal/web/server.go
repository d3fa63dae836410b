// Package web is the HTTP shim around the analysis pipeline: upload
// handling, report pages and the customer-detail view. It treats the report
// structure as opaque and owns no analysis logic.
package web

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"trendd/internal/analysis"
	"trendd/internal/config"
	"trendd/internal/logger"
	"trendd/internal/reportstore"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server holds the handler dependencies.
type Server struct {
	cfg       *config.Config
	log       *logger.Logger
	pipeline  *analysis.Pipeline
	store     reportstore.Store
	templates *template.Template
}

// NewServer creates the web server.
func NewServer(cfg *config.Config, log *logger.Logger, pipeline *analysis.Pipeline, store reportstore.Store) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &Server{
		cfg:       cfg,
		log:       log,
		pipeline:  pipeline,
		store:     store,
		templates: tmpl,
	}, nil
}

// Routes builds the router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleIndex)
	r.Post("/upload", s.handleUpload)
	r.Get("/reports/{token}", s.handleReport)
	r.Get("/reports/{token}/customers/{name}", s.handleCustomer)
	r.Get("/health", s.handleHealth)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.log.Error("template render failed", "template", name, "error", err)
	}
}

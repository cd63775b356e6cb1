package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/soaringjerry/clima/internal/middleware"
	"github.com/soaringjerry/clima/internal/models"
	"github.com/soaringjerry/clima/internal/services"
)

// Config carries the dependencies of the HTTP layer.
type Config struct {
	Store          Store
	Logger         *zap.Logger
	Auth           *services.AuthService
	Authenticator  *middleware.Authenticator
	AllowedOrigins []string
	CommentLimit   int
	Commit         string
	BuildTime      string
}

type Router struct {
	store        Store
	log          *zap.Logger
	submissions  *services.SubmissionService
	analytics    *services.AnalyticsService
	exports      *services.ExportService
	auth         *services.AuthService
	authn        *middleware.Authenticator
	origins      []string
	commentLimit int
	commit       string
	buildTime    string
}

func NewRouter(cfg Config) *Router {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Router{
		store:        cfg.Store,
		log:          log,
		submissions:  services.NewSubmissionService(cfg.Store, log.Named("submission")),
		analytics:    services.NewAnalyticsService(cfg.Store, log.Named("analytics")),
		exports:      services.NewExportService(cfg.Store, log.Named("export")),
		auth:         cfg.Auth,
		authn:        cfg.Authenticator,
		origins:      cfg.AllowedOrigins,
		commentLimit: cfg.CommentLimit,
		commit:       cfg.Commit,
		buildTime:    cfg.BuildTime,
	}
}

// Handler assembles the middleware chain and every route.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.AccessLog(rt.log.Named("http")))
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.CORS(rt.origins))
	r.Use(middleware.LocaleMiddleware)
	r.NotFound(rt.handleNotFound)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", rt.handleHealth)
		r.With(middleware.Cacheable(5*time.Minute)).Get("/questions", rt.handleQuestions)

		r.Group(func(r chi.Router) {
			r.Use(middleware.NoStore)
			r.Post("/survey", rt.handleSubmit)
			r.Post("/admin/login", rt.handleLogin)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.NoStore)
			if rt.auth.Enabled() && rt.authn != nil {
				r.Use(rt.authn.WithAuth)
				r.Use(middleware.RequireAuth(rt.handleUnauthorized))
			}
			r.Get("/stats", rt.handleStats)
			r.Get("/analytics", rt.handleAnalytics)
			r.Get("/environment-stats", rt.sectionHandler(models.SectionEnvironment))
			r.Get("/relationship-stats", rt.sectionHandler(models.SectionRelationships))
			r.Get("/motivation-stats", rt.sectionHandler(models.SectionMotivation))
			r.Get("/comments", rt.handleComments)
			r.Get("/export", rt.reportHandler(services.ReportScreen))
			r.Get("/export/pdf", rt.reportHandler(services.ReportPrint))
			r.Get("/export/csv", rt.handleCSV)
		})
	})
	return r
}

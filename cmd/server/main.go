package main

import (
	"context"
	"database/sql"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Simplici0/spooltrack/internal/analysis"
	"github.com/Simplici0/spooltrack/internal/auth"
	"github.com/Simplici0/spooltrack/internal/config"
	"github.com/Simplici0/spooltrack/internal/db"
	"github.com/Simplici0/spooltrack/internal/inventory"
	"github.com/Simplici0/spooltrack/internal/migrations"
	"github.com/Simplici0/spooltrack/internal/seed"
	"github.com/Simplici0/spooltrack/internal/storage"
)

type server struct {
	db            *sql.DB
	auth          *auth.Service
	inventory     *inventory.Service
	files         storage.FileStore
	analyzer      modelAnalyzer
	loginLimiter  *ipRateLimiter
	secureCookies bool
	trustProxy    bool // honour X-Forwarded-For for client IPs
	now           func() time.Time

	// Set when uploads are kept on local disk.
	localFiles    *storage.Local
	localFilesURL string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogging(cfg)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.Up(database); err != nil {
			log.Fatal().Err(err).Msg("failed to run database migrations")
		}
	}

	stats, err := seed.Run(database, seed.Config{AdminEmail: cfg.AdminEmail, AdminPassword: cfg.AdminPassword})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed database")
	}
	log.Info().Int("inserts", stats.Inserts).Msg("startup seed finished")

	srv, err := newServer(cfg, database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build server")
	}

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}

func setupLogging(cfg config.Config) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// dev: pretty console, prod: JSON
	if cfg.IsDev() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func newServer(cfg config.Config, database *sql.DB) (*server, error) {
	authService, err := auth.NewService(database, cfg.SessionSecret, time.Duration(cfg.SessionTTLHours)*time.Hour)
	if err != nil {
		return nil, err
	}

	srv := &server{
		db:            database,
		auth:          authService,
		inventory:     inventory.NewService(database),
		analyzer:      analysis.NewClient(cfg.AnalysisURL, cfg.AnalysisAPIKey, time.Duration(cfg.AnalysisTimeoutSeconds)*time.Second),
		loginLimiter:  newIPRateLimiter(cfg.LoginRatePerMin),
		secureCookies: !cfg.IsDev(),
		trustProxy:    cfg.TrustProxyHeaders,
		now:           time.Now,
	}

	switch cfg.StorageBackend {
	case "supabase":
		srv.files = storage.NewSupabase(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseBucket)
	default:
		local, err := storage.NewLocal(cfg.UploadDir, cfg.UploadBaseURL)
		if err != nil {
			return nil, err
		}
		srv.files = local
		srv.localFiles = local
		srv.localFilesURL = mountPath(cfg.UploadBaseURL)
	}

	return srv, nil
}

// mountPath returns the path component of a possibly absolute base URL.
func mountPath(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Path == "" {
		return "/files"
	}
	return "/" + strings.Trim(u.Path, "/")
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if s.trustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.With(s.loginLimiter.middleware).Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	if s.localFiles != nil {
		prefix := s.localFilesURL + "/"
		r.Handle(prefix+"*", http.StripPrefix(prefix, http.FileServer(http.Dir(s.localFiles.Dir()))))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Get("/spools", s.handleSpoolsList)
		r.Post("/spools", s.handleSpoolsCreate)
		r.Get("/spools/{id}", s.handleSpoolGet)
		r.Put("/spools/{id}", s.handleSpoolUpdate)
		r.Delete("/spools/{id}", s.handleSpoolDelete)
		r.Post("/spools/{id}/remaining", s.handleSpoolSetRemaining)
		r.Get("/spools/{id}/prints", s.handleSpoolPrints)

		r.Get("/prints", s.handlePrintsList)
		r.Post("/prints", s.handlePrintsCreate)
		r.Get("/prints/{id}", s.handlePrintGet)
		r.Patch("/prints/{id}", s.handlePrintUpdate)
		r.Delete("/prints/{id}", s.handlePrintDelete)

		r.Get("/printers", s.handlePrintersList)
		r.Post("/printers", s.handlePrintersCreate)
		r.Put("/printers/{id}", s.handlePrinterUpdate)
		r.Delete("/printers/{id}", s.handlePrinterDelete)

		r.Get("/settings", s.handleSettingsGet)
		r.Put("/settings", s.handleSettingsUpdate)
		r.Post("/calculator", s.handleCalculator)
		r.Get("/dashboard", s.handleDashboard)

		r.Post("/uploads", s.handleUpload)
		r.Post("/analysis", s.handleAnalysis)
	})

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		log.Error().Err(err).Msg("health check failed")
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

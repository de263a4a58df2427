package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crucial707/profiles-api/internal/auth"
	"github.com/crucial707/profiles-api/internal/config"
	"github.com/crucial707/profiles-api/internal/db"
	"github.com/crucial707/profiles-api/internal/handlers"
	"github.com/crucial707/profiles-api/internal/logger"
	"github.com/crucial707/profiles-api/internal/middleware"
	"github.com/crucial707/profiles-api/internal/repo"
	"github.com/crucial707/profiles-api/internal/scheduler"
)

const maxBodyBytes = 1 << 20

func main() {

	// Load configuration
	cfg := config.Load()
	logger.Init(cfg.LogFormat, cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		logger.Log.WithError(err).Fatal("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database FIRST
	database, err := db.Connect(ctx,
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBName,
		cfg.DBUser,
		cfg.DBPass,
		db.Options{MaxOpenConns: cfg.DBMaxOpenConns, MaxIdleConns: cfg.DBMaxIdleConns},
	)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to database")
	}
	defer database.Close()
	logger.Log.Info("connected to the database")

	if cfg.DBAutoMigrate {
		if err := db.Run(cfg.DatabaseURL()); err != nil {
			logger.Log.WithError(err).Fatal("failed to apply migrations")
		}
	}

	// Token denylist: Redis when configured, otherwise in memory with a prune job
	var denylist auth.Denylist
	var sched *scheduler.Scheduler
	if cfg.RedisAddr != "" {
		client, err := auth.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Log.WithError(err).Fatal("failed to connect to redis")
		}
		defer client.Close()
		denylist = auth.NewRedisDenylist(client)
	} else {
		mem := auth.NewMemoryDenylist()
		sched = scheduler.New()
		if err := sched.Add("denylist-prune", cfg.DenylistPruneSchedule, scheduler.PruneJob(mem, time.Now)); err != nil {
			logger.Log.WithError(err).Fatal("failed to schedule denylist pruning")
		}
		sched.Start()
		denylist = mem
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(database, cfg, denylist),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start server LAST
	errc := make(chan error, 1)
	go func() {
		logger.Log.WithField("port", cfg.Port).WithField("tls", cfg.TLSEnabled()).Info("starting server")
		if cfg.TLSEnabled() {
			errc <- srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
			return
		}
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("server failed")
		}
	case <-ctx.Done():
	}

	logger.Log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("graceful shutdown failed")
	}
	if sched != nil {
		if err := sched.Stop(shutdownCtx); err != nil {
			logger.Log.WithError(err).Warn("scheduler did not stop in time")
		}
	}
}

// newRouter wires every route onto database. denylist holds revoked token ids.
func newRouter(database *sql.DB, cfg config.Config, denylist auth.Denylist) http.Handler {
	profileRepo := repo.NewProfileRepo(database)
	feedRepo := repo.NewFeedRepo(database)
	auditRepo := repo.NewAuditRepo(database)

	issuer := auth.NewIssuer([]byte(cfg.JWTSecret), time.Duration(cfg.JWTExpireHours)*time.Hour)

	profileHandler := &handlers.ProfileHandler{Repo: profileRepo, AuditRepo: auditRepo}
	feedHandler := &handlers.FeedHandler{Repo: feedRepo, AuditRepo: auditRepo}
	authHandler := &handlers.AuthHandler{Profiles: profileRepo, Issuer: issuer, Denylist: denylist}
	auditHandler := &handlers.AuditHandler{Repo: auditRepo}
	demo := handlers.DemoHandler{}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(cfg.TLSEnabled()))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(chimw.StripSlashes)
	r.Use(middleware.MaxBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		w.Header().Set("Content-Type", "application/json")
		if err := database.PingContext(ctx); err != nil {
			logger.Log.WithError(err).Warn("readiness check failed")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.Write([]byte(`{"status":"ready"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	tokenAuth := middleware.TokenAuth(issuer, denylist, profileRepo)

	r.Route("/api", func(r chi.Router) {
		// Root, login and the demo endpoints ignore Authorization headers, so a
		// stale token never blocks logging in again.
		r.Get("/", handlers.APIRoot("/api", "profile", "feed", "test-viewset"))
		r.With(middleware.LoginRateLimiter(cfg.LoginRatePerMin).Middleware).Post("/login", authHandler.Login)

		r.Route("/test-view", func(r chi.Router) {
			r.Get("/", demo.ViewGet)
			r.Post("/", demo.ViewPost)
			r.Put("/", demo.ViewMethod)
			r.Patch("/", demo.ViewMethod)
			r.Delete("/", demo.ViewMethod)
		})
		r.Route("/test-viewset", func(r chi.Router) {
			r.Get("/", demo.SetList)
			r.Post("/", demo.SetCreate)
			r.Get("/{id}", demo.SetItem)
			r.Put("/{id}", demo.SetItem)
			r.Patch("/{id}", demo.SetItem)
			r.Delete("/{id}", demo.SetItem)
		})

		r.Group(func(r chi.Router) {
			r.Use(tokenAuth)

			r.With(middleware.RequireAuth).Post("/logout", authHandler.Logout)

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", profileHandler.ListProfiles)
				r.Post("/", profileHandler.CreateProfile)
				r.Get("/{id}", profileHandler.GetProfile)
				r.Put("/{id}", profileHandler.UpdateProfile)
				r.Patch("/{id}", profileHandler.UpdateProfile)
				r.Delete("/{id}", profileHandler.DeleteProfile)
			})

			r.Route("/feed", func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Get("/", feedHandler.ListFeed)
				r.Post("/", feedHandler.CreateFeedItem)
				r.Get("/{id}", feedHandler.GetFeedItem)
				r.Put("/{id}", feedHandler.UpdateFeedItem)
				r.Patch("/{id}", feedHandler.UpdateFeedItem)
				r.Delete("/{id}", feedHandler.DeleteFeedItem)
			})

			r.With(middleware.RequireStaff).Get("/audit", auditHandler.ListAudit)
		})
	})

	return r
}

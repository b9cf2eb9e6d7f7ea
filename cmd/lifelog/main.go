package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/AfshanNavazdeen/LifeLogAI/internal/activity"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/condition"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/contact"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/extraction"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/family"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/followup"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/intake"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/medication"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/referral"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/auth"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/config"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/database"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/events"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/metrics"
	secmiddleware "github.com/AfshanNavazdeen/LifeLogAI/internal/shared/middleware"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/types"
)

const maxRequestBody = 1 << 20 // 1 MiB

// App holds all application dependencies
type App struct {
	Config *config.Config
	DB     *database.DB
	Bus    *events.Bus
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	app := &App{Config: cfg}

	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	app.DB = db
	defer db.Close()

	if err := database.Migrate(ctx, db.Pool); err != nil {
		fmt.Fprintf(os.Stderr, "failed to run migrations: %v\n", err)
		os.Exit(1)
	}

	// Records cascade from users, so the dev owner needs a real row
	if cfg.Server.Env != "production" {
		_, err := db.Pool.Exec(ctx,
			`INSERT INTO users (id, email) VALUES ($1, 'dev@localhost') ON CONFLICT DO NOTHING`,
			cfg.Auth.DevUserID,
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to seed dev user: %v\n", err)
			os.Exit(1)
		}
	}

	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			metrics.RecordDBConnections(int(db.Pool.Stat().TotalConns()))
		}
	}()

	// The event bus is optional; without it the API runs with the
	// activity feed disabled.
	if cfg.EventStore.Enabled {
		bus, err := events.NewBus(ctx, cfg.EventStore)
		if err != nil {
			fmt.Printf("Warning: EventStoreDB not available: %v\n", err)
			fmt.Println("Running without event streaming...")
		} else {
			app.Bus = bus
			defer bus.Close()
			fmt.Println("Event bus initialized")
		}
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(secmiddleware.SecurityHeaders)
	r.Use(secmiddleware.MaxBodySize(maxRequestBody))
	r.Use(metrics.Middleware)
	r.Use(corsMiddleware)

	r.Get("/health", healthHandler)
	r.Get("/ready", readyHandler(app))
	r.Handle("/metrics", metrics.Handler())
	r.Get("/", infoHandler)

	familyRepo := family.NewRepository(db.Pool)
	contactRepo := contact.NewRepository(db.Pool)
	conditionRepo := condition.NewRepository(db.Pool)
	medicationRepo := medication.NewRepository(db.Pool)
	referralRepo := referral.NewRepository(db.Pool)
	followupRepo := followup.NewRepository(db.Pool)
	intakeRepo := intake.NewRepository(db.Pool)

	var extractor intake.Extractor
	if cfg.OpenAI.Enabled && cfg.OpenAI.APIKey != "" {
		extractor = extraction.NewClient(cfg.OpenAI)
		fmt.Printf("Extraction enabled (model: %s)\n", cfg.OpenAI.Model)
	} else {
		fmt.Println("Extraction disabled; parse requests will fail")
	}

	materializer := intake.NewMaterializer(&intake.RepositoryEntityStore{
		Family:      familyRepo,
		Contacts:    contactRepo,
		Conditions:  conditionRepo,
		Medications: medicationRepo,
		Referrals:   referralRepo,
		FollowUps:   followupRepo,
	})

	var feed *activity.Feed
	if app.Bus != nil {
		feed = activity.NewFeed(activity.DefaultCapacity)
		if err := feed.Start(ctx, app.Bus); err != nil {
			fmt.Printf("Warning: activity feed subscription failed: %v\n", err)
			feed = nil
		}
	}

	parseLimiter := secmiddleware.NewIPRateLimiter(1, 5)

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Server.Env == "production" {
			r.Use(auth.Middleware(cfg.Auth))
		} else {
			r.Use(auth.DevMiddleware(types.ID(cfg.Auth.DevUserID)))
		}

		r.Mount("/family-members", family.NewHandler(familyRepo, app.Bus).Routes())
		r.Mount("/medical/contacts", contact.NewHandler(contactRepo, app.Bus).Routes())
		r.Mount("/medical/conditions", condition.NewHandler(conditionRepo, app.Bus).Routes())
		r.Mount("/medical/medications", medication.NewHandler(medicationRepo, app.Bus).Routes())
		r.Mount("/medical/referrals", referral.NewHandler(referralRepo, app.Bus).Routes())
		r.Mount("/medical/follow-ups", followup.NewHandler(followupRepo, app.Bus).Routes())

		r.Group(func(r chi.Router) {
			r.Use(parseLimiter.Middleware)
			r.Mount("/medical/ai", intake.NewHandler(intakeRepo, extractor, materializer, app.Bus).Routes())
		})

		if feed != nil {
			r.Mount("/activity", activity.NewHandler(feed).Routes())
		}
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan bool)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		fmt.Println("\nShutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			fmt.Printf("Server shutdown error: %v\n", err)
		}
		close(done)
	}()

	fmt.Println("============================================")
	fmt.Println("LifeLogAI Medical Records API")
	fmt.Println("============================================")
	fmt.Printf("Environment: %s\n", cfg.Server.Env)
	fmt.Printf("Server:      http://localhost:%d\n", cfg.Server.Port)
	fmt.Printf("API:         http://localhost:%d/api/v1\n", cfg.Server.Port)
	fmt.Printf("Health:      http://localhost:%d/health\n", cfg.Server.Port)
	fmt.Println("============================================")

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}

	<-done
	fmt.Println("Server stopped")
}

func infoHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"name":    "LifeLogAI Medical Records API",
		"version": "0.1.0",
		"docs":    "/api/v1",
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

func readyHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"server": "ready",
		}

		if err := app.DB.Health(r.Context()); err != nil {
			checks["database"] = "not ready: " + err.Error()
		} else {
			checks["database"] = "ready"
		}

		if app.Bus != nil {
			if err := app.Bus.Health(); err != nil {
				checks["eventstore"] = "not ready: " + err.Error()
			} else {
				checks["eventstore"] = "ready"
			}
		} else {
			checks["eventstore"] = "not configured"
		}

		allReady := true
		for _, status := range checks {
			if status != "ready" && status != "not configured" {
				allReady = false
				break
			}
		}

		status := http.StatusOK
		if !allReady {
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"status": map[bool]string{true: "ready", false: "not ready"}[allReady],
			"checks": checks,
		})
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Request-ID")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

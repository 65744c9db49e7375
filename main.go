// Package main our entry point.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"guestbook/internal"
	"guestbook/internal/config"
	"guestbook/internal/database"
	"guestbook/internal/guard"
	"guestbook/internal/handler"
	"guestbook/internal/ratelimiter"
	"guestbook/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("failed to load .env file: %+v", err)
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.SetOutput(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	if cfg.DBURL == "" {
		log.Fatal("DB_URL environment variable is not set")
	}

	log.Println("Initializing Database connection...")
	dbPool, err := database.Connect(ctx, cfg.DBURL)
	if err != nil {
		log.Fatalf("%v", err)
	}

	messages := store.New(dbPool)
	spamGuard := guard.New(cfg.GuardEnabled, cfg.GuardOrigins, cfg.GuardMaxPerHour, messages)

	createMessage := handler.CreateMessage(messages, spamGuard, cfg.ContentMaxLength)
	if cfg.RateLimitEnabled {
		rl := ratelimiter.NewIPRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow,
			ratelimiter.CleanupOpts{
				TTL:      10 * time.Minute,
				Interval: time.Minute,
			})
		defer rl.Cancel()
		createMessage = rl.Middleware(createMessage)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(internal.Logging)
	r.Use(middleware.Recoverer)

	r.Route("/messages", func(r chi.Router) {
		r.Get("/get", handler.ServeMessages(messages))
		r.Post("/add", createMessage)
	})

	server := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		log.Printf("Server starting at 0.0.0.0:%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutdown signal received; shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println(err)
	}

	dbPool.Close()

	log.Println("Server stopped")
}

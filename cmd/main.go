// @title MindBridge Backend API
// @version 1.0
// @description MindBridge Backend API for peer mental-health support, mindfulness tracking and the AI companion
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	_ "MINDBRIDGE_BACK-END/docs" // This is required for swagger
	"MINDBRIDGE_BACK-END/internal/ai"
	"MINDBRIDGE_BACK-END/internal/config"
	"MINDBRIDGE_BACK-END/internal/database"
	"MINDBRIDGE_BACK-END/internal/events"
	"MINDBRIDGE_BACK-END/internal/handlers"
	"MINDBRIDGE_BACK-END/internal/middleware"
	"MINDBRIDGE_BACK-END/internal/ratelimit"
	"MINDBRIDGE_BACK-END/internal/routes"
	"MINDBRIDGE_BACK-END/internal/services"
	"MINDBRIDGE_BACK-END/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	log.Printf("env=%s port=%s db=%s@%s:%s/%s redis=%t nats=%t ai_model=%s",
		cfg.Env, cfg.Server.Port, cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Name,
		cfg.Redis.Addr != "", cfg.NATS.URL != "", cfg.AI.Model)

	pool, err := database.NewPool(context.Background(), cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(cfg.GetDSN()); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	checks := map[string]handlers.PingFunc{"db": pool.Ping}

	// Rate limiting is optional; without Redis every action is allowed
	var limiter *ratelimit.Limiter
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Printf("[redis] ping %s: %v (rate limits fail open)", cfg.Redis.Addr, err)
		}
		limiter = ratelimit.NewLimiter(rdb)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	} else {
		log.Printf("[redis] REDIS_ADDR not set, rate limiting disabled")
	}

	publisher := events.New(cfg.NATS)
	defer publisher.Close()

	// --- Services ---
	users := services.NewUserService(pool)
	profiles := services.NewProfileService(pool)
	entries := services.NewMindfulnessService(pool)
	streaks := services.NewStreakService(pool)
	requests := services.NewSupportRequestService(pool)
	chats := services.NewChatService(pool)
	notifications := services.NewNotificationsService(pool)

	// --- HTTP Handlers ---
	mux := http.NewServeMux()
	routes.SetupRoutes(mux, routes.Handlers{
		Auth:          handlers.NewAuthHandler(users, profiles, cfg),
		GoogleAuth:    handlers.NewGoogleAuthHandler(users, cfg),
		PasswordReset: handlers.NewPasswordResetHandler(users, utils.NewEmailService(&cfg.Email), cfg),
		Health:        handlers.NewHealthHandler(checks),
		Profile:       handlers.NewProfileHandler(profiles),
		Mindfulness:   handlers.NewMindfulnessHandler(entries, streaks),
		Peers:         handlers.NewPeersHandler(profiles, cfg.App.PeerListLimit),
		Requests:      handlers.NewRequestsHandler(requests, profiles, notifications, publisher),
		Chats:         handlers.NewChatsHandler(chats, profiles, notifications, publisher),
		AIChat:        handlers.NewAIChatHandler(ai.NewCompanion(cfg.AI)),
		Notifications: handlers.NewNotificationsHandler(notifications),
	}, cfg, limiter)

	// Setup CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           c.Handler(middleware.Recover(mux)),
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("HTTP server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped.")
}

package routes

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"MINDBRIDGE_BACK-END/internal/config"
	"MINDBRIDGE_BACK-END/internal/handlers"
	"MINDBRIDGE_BACK-END/internal/metrics"
	"MINDBRIDGE_BACK-END/internal/middleware"
	"MINDBRIDGE_BACK-END/internal/ratelimit"
)

// Handlers groups every HTTP handler the API serves
type Handlers struct {
	Auth          *handlers.AuthHandler
	GoogleAuth    *handlers.GoogleAuthHandler
	PasswordReset *handlers.PasswordResetHandler
	Health        *handlers.HealthHandler
	Profile       *handlers.ProfileHandler
	Mindfulness   *handlers.MindfulnessHandler
	Peers         *handlers.PeersHandler
	Requests      *handlers.RequestsHandler
	Chats         *handlers.ChatsHandler
	AIChat        *handlers.AIChatHandler
	Notifications *handlers.NotificationsHandler
}

// SetupRoutes configures all application routes on mux. A nil limiter
// disables rate limiting.
func SetupRoutes(mux *http.ServeMux, h Handlers, cfg *config.Config, limiter *ratelimit.Limiter) {
	rules := ratelimit.RulesFromConfig(cfg.RateLimit)

	handle := func(pattern string, fn http.HandlerFunc) {
		mux.HandleFunc(pattern, middleware.Instrument(pattern, fn))
	}
	protected := func(pattern string, fn http.HandlerFunc) {
		handle(pattern, middleware.AuthMiddleware(fn, &cfg.JWT))
	}

	// Health check routes
	mux.HandleFunc("/healthz", h.Health.HealthCheck)
	mux.HandleFunc("/livez", h.Health.LivenessCheck)
	mux.HandleFunc("/readyz", h.Health.ReadinessCheck)

	// Observability and docs
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	// Authentication routes
	handle("/api/auth/register", h.Auth.Register)
	handle("/api/auth/login", h.Auth.Login)
	handle("/api/auth/logout", h.Auth.Logout)
	protected("/api/auth/me", h.Auth.Me)
	handle("/api/auth/google/login", h.GoogleAuth.GoogleLogin)
	handle("/api/auth/google/callback", h.GoogleAuth.GoogleCallback)
	handle("/api/auth/forgot-password", h.PasswordReset.ForgotPassword)
	handle("/api/auth/verify-otp", h.PasswordReset.VerifyOTP)
	handle("/api/auth/reset-password", h.PasswordReset.ResetPassword)

	// Profile
	protected("/api/profile", h.Profile.Profile)
	protected("/api/profile/sync", h.Profile.Sync)

	// Mindfulness
	protected("/api/mindfulness", h.Mindfulness.Entries)
	protected("/api/mindfulness/streak", h.Mindfulness.Streak)

	// Peer support
	protected("/api/peer-support", h.Peers.ListPeers)
	protected("/api/peer-support/requests",
		middleware.RateLimit(h.Requests.Requests, limiter, rules.SupportRequest, http.MethodPost))
	protected("/api/peer-support/chats",
		middleware.RateLimit(h.Chats.Chats, limiter, rules.ChatMessage, http.MethodPost))

	// AI companion
	protected("/api/ai-chat", middleware.RateLimit(h.AIChat.Chat, limiter, rules.AIChat))

	// Notifications
	protected("/api/notifications", h.Notifications.ListNotifications)
	protected("/api/notifications/read-all", h.Notifications.MarkAllRead)
	protected("/api/notifications/", h.Notifications.MarkRead)

	// Root route
	mux.HandleFunc("/", rootHandler)
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Write([]byte("MindBridge backend is running."))
}

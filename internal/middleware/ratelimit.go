package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"MINDBRIDGE_BACK-END/internal/metrics"
	"MINDBRIDGE_BACK-END/internal/ratelimit"
	"MINDBRIDGE_BACK-END/internal/utils"
)

// RateLimit throttles the authenticated user on the given methods. Other
// methods pass straight through. It must run after AuthMiddleware.
func RateLimit(next http.HandlerFunc, limiter *ratelimit.Limiter, rule ratelimit.Rule, methods ...string) http.HandlerFunc {
	limited := make(map[string]bool, len(methods))
	for _, m := range methods {
		limited[m] = true
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if len(limited) > 0 && !limited[r.Method] {
			next.ServeHTTP(w, r)
			return
		}

		userID, ok := utils.GetUserIDFromContext(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		allowed, _ := limiter.Allow(r.Context(), userID.String(), rule)
		if !allowed {
			metrics.RateLimitedTotal.WithLabelValues(rule.Key).Inc()
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(rule.Window.Seconds())))
			utils.WriteErrorResponse(w, http.StatusTooManyRequests, "Too many requests",
				fmt.Sprintf("limit of %d per %s reached", rule.Limit, rule.Window))
			return
		}
		if remaining, err := limiter.Remaining(r.Context(), userID.String(), rule); err == nil && rule.Limit > 0 {
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rule.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		}
		next.ServeHTTP(w, r)
	}
}

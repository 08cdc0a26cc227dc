// Package metrics holds the Prometheus collectors for the MindBridge API.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts handled requests by route pattern, method and status
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mindbridge_http_requests_total",
		Help: "Total number of HTTP requests handled",
	}, []string{"route", "method", "status"})

	// HTTPRequestDuration records handler latency in seconds
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mindbridge_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"route"})

	// SupportRequestsTotal counts request lifecycle actions: create, accept,
	// reject, cancel, complete.
	SupportRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mindbridge_support_requests_total",
		Help: "Support request lifecycle actions",
	}, []string{"action"})

	// ChatMessagesTotal counts chat messages sent between peers
	ChatMessagesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mindbridge_chat_messages_total",
		Help: "Total number of peer chat messages sent",
	})

	// StreakUpdatesTotal counts streak posts by result: incremented, reset,
	// started or unchanged.
	StreakUpdatesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mindbridge_streak_updates_total",
		Help: "Mindfulness streak updates by result",
	}, []string{"result"})

	// AIRepliesTotal counts AI companion replies by source: model, offline, crisis
	AIRepliesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mindbridge_ai_replies_total",
		Help: "AI companion replies by source",
	}, []string{"source"})

	// RateLimitedTotal counts requests rejected by a rate limit rule
	RateLimitedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mindbridge_rate_limited_total",
		Help: "Requests rejected by rate limiting",
	}, []string{"rule"})
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		SupportRequestsTotal,
		ChatMessagesTotal,
		StreakUpdatesTotal,
		AIRepliesTotal,
		RateLimitedTotal,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

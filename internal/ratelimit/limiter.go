// Package ratelimit throttles per-user actions with a Redis INCR + EXPIRE
// fixed window.
package ratelimit

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"MINDBRIDGE_BACK-END/internal/config"
)

// Rule is a limiting policy: key prefix, max count and window length
type Rule struct {
	Key    string
	Limit  int
	Window time.Duration
}

// Rules holds the per-action policies the API applies
type Rules struct {
	SupportRequest Rule
	ChatMessage    Rule
	AIChat         Rule
}

// RulesFromConfig builds the rule set from configuration
func RulesFromConfig(cfg config.RateLimitConfig) Rules {
	return Rules{
		SupportRequest: Rule{Key: "rl:request:", Limit: cfg.RequestsPerWindow, Window: cfg.Window},
		ChatMessage:    Rule{Key: "rl:chat:", Limit: cfg.ChatsPerWindow, Window: cfg.Window},
		AIChat:         Rule{Key: "rl:ai:", Limit: cfg.AIPerWindow, Window: cfg.Window},
	}
}

// Limiter performs rate limiting checks against Redis. A nil *Limiter or one
// without a client allows everything.
type Limiter struct {
	client *redis.Client
}

// NewLimiter creates a Limiter backed by the given Redis client
func NewLimiter(client *redis.Client) *Limiter {
	return &Limiter{client: client}
}

// Allow increments the identifier's counter and reports whether it is still
// within rule. Redis errors fail open.
func (l *Limiter) Allow(ctx context.Context, identifier string, rule Rule) (bool, error) {
	if l == nil || l.client == nil || rule.Limit <= 0 {
		return true, nil
	}
	key := rule.Key + identifier

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		log.Printf("[ratelimit] redis INCR error key=%s: %v (failing open)", key, err)
		return true, err
	}

	if count == 1 {
		if err := l.client.Expire(ctx, key, rule.Window).Err(); err != nil {
			log.Printf("[ratelimit] redis EXPIRE error key=%s: %v (failing open)", key, err)
			// without a TTL the key would block the identifier forever
			l.client.Del(ctx, key)
			return true, err
		}
	}

	return int(count) <= rule.Limit, nil
}

// Remaining returns how many actions the identifier has left in the current
// window. Missing keys and Redis errors report the full limit.
func (l *Limiter) Remaining(ctx context.Context, identifier string, rule Rule) (int, error) {
	if l == nil || l.client == nil {
		return rule.Limit, nil
	}
	key := rule.Key + identifier

	count, err := l.client.Get(ctx, key).Int()
	if err == redis.Nil {
		return rule.Limit, nil
	}
	if err != nil {
		log.Printf("[ratelimit] redis GET error key=%s: %v (failing open)", key, err)
		return rule.Limit, err
	}

	return max(rule.Limit-count, 0), nil
}

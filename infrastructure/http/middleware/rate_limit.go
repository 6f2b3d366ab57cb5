package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/fleetlog/fleetlog/application/port/inbound"
	domainerror "github.com/fleetlog/fleetlog/domain/error"
	"github.com/fleetlog/fleetlog/infrastructure/http/response"
	"github.com/fleetlog/fleetlog/infrastructure/service/logger"
)

// RateLimitPolicy bounds the number of requests a client may send to a route
type RateLimitPolicy struct {
	Name          string
	Limit         int
	Window        time.Duration
	BlockDuration time.Duration
}

type RateLimitMiddleware struct {
	rateLimitService inbound.RateLimitService
	logger           logger.Logger
}

func NewRateLimitMiddleware(rateLimitService inbound.RateLimitService, logger logger.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		rateLimitService: rateLimitService,
		logger:           logger,
	}
}

// Limit counts every request per client IP. Going over the limit blocks the
// client for the policy's block duration. Limiter failures let the request through.
func (m *RateLimitMiddleware) Limit(policy RateLimitPolicy, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m.rateLimitService == nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		clientIP := ClientIP(r)
		key := fmt.Sprintf("http:%s:ip:%s", policy.Name, clientIP)

		blocked, err := m.rateLimitService.IsBlocked(ctx, key)
		if err != nil {
			m.logger.Error(ctx, "Failed to check block status", err, map[string]interface{}{
				"ip":  clientIP,
				"key": key,
			})
		}
		if blocked {
			logger.LogSecurityEvent(ctx, m.logger, "rate_limit_blocked", "MEDIUM", map[string]interface{}{
				"ip":        clientIP,
				"path":      r.URL.Path,
				"key":       key,
				"userAgent": r.UserAgent(),
			})
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(policy.BlockDuration.Seconds())))
			response.FromError(w, domainerror.ErrRateLimitExceeded(policy.Name), nil)
			return
		}

		allowed, err := m.rateLimitService.CheckLimit(ctx, key, policy.Limit, policy.Window)
		if err != nil {
			m.logger.Error(ctx, "Failed to check rate limit", err, map[string]interface{}{
				"ip":  clientIP,
				"key": key,
			})
			allowed = true
		}

		if !allowed {
			if err := m.rateLimitService.Block(ctx, key, policy.BlockDuration, "Rate limit exceeded"); err != nil {
				m.logger.Error(ctx, "Failed to block IP", err, map[string]interface{}{
					"ip":  clientIP,
					"key": key,
				})
			}

			logger.LogSecurityEvent(ctx, m.logger, "rate_limit_exceeded", "HIGH", map[string]interface{}{
				"ip":        clientIP,
				"path":      r.URL.Path,
				"key":       key,
				"userAgent": r.UserAgent(),
			})

			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(policy.BlockDuration.Seconds())))
			response.FromError(w, domainerror.ErrRateLimitExceeded(policy.Name), nil)
			return
		}

		if err := m.rateLimitService.Increment(ctx, key, policy.Window); err != nil {
			m.logger.Error(ctx, "Failed to increment rate limit", err, map[string]interface{}{
				"ip":  clientIP,
				"key": key,
			})
		}

		next.ServeHTTP(w, r)
	}
}

package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/symptom-triage-engine/internal/domain"
)

const defaultTrackedClients = 4096

// RateLimiter keeps one token bucket per client IP. The set of tracked
// clients is bounded; the least recently seen client is forgotten first.
type RateLimiter struct {
	limit rate.Limit
	burst int

	mu      sync.Mutex
	clients *lru.Cache[string, *rate.Limiter]
}

// NewRateLimiter creates a limiter allowing requestsPerSecond with the given
// burst for each client.
func NewRateLimiter(cfg domain.RateLimitConfig) (*RateLimiter, error) {
	if cfg.RequestsPerSecond <= 0 {
		return nil, fmt.Errorf("requests per second must be positive: %v", cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	clients, err := lru.New[string, *rate.Limiter](defaultTrackedClients)
	if err != nil {
		return nil, fmt.Errorf("failed to create client cache: %w", err)
	}

	return &RateLimiter{
		limit:   rate.Limit(cfg.RequestsPerSecond),
		burst:   burst,
		clients: clients,
	}, nil
}

// Allow reports whether client may make a request now.
func (r *RateLimiter) Allow(client string) bool {
	return r.limiter(client).Allow()
}

func (r *RateLimiter) limiter(client string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	if l, ok := r.clients.Get(client); ok {
		return l
	}
	l := rate.NewLimiter(r.limit, r.burst)
	r.clients.Add(client, l)
	return l
}

// Middleware rejects requests over the limit with 429.
func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !r.Allow(c.ClientIP()) {
			c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(r.limit)))
			AbortWithError(c, http.StatusTooManyRequests, domain.ErrRateLimit, "Rate limit exceeded", "")
			return
		}
		c.Next()
	}
}

func retryAfterSeconds(limit rate.Limit) int {
	if limit >= 1 {
		return 1
	}
	return int(1/float64(limit) + 0.5)
}

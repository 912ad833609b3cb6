package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// clientLimiter pairs a bucket with the last time its IP was seen, so idle
// entries can be swept instead of accumulating for the life of the process.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const limiterIdleTTL = 10 * time.Minute

// sweepIdle drops entries that have been quiet longer than idle. An evicted
// IP simply starts over with a fresh bucket.
func sweepIdle(clients map[string]*clientLimiter, now time.Time, idle time.Duration) {
	for ip, cl := range clients {
		if now.Sub(cl.lastSeen) > idle {
			delete(clients, ip)
		}
	}
}

// RateLimit returns a per-client-IP token bucket limiter. Used on the
// credential endpoints to slow down password guessing.
func RateLimit(limit rate.Limit, burst int) gin.HandlerFunc {
	var (
		mu        sync.Mutex
		clients   = make(map[string]*clientLimiter)
		lastSweep = time.Now()
	)

	limiterFor := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()

		now := time.Now()
		if now.Sub(lastSweep) > limiterIdleTTL {
			sweepIdle(clients, now, limiterIdleTTL)
			lastSweep = now
		}

		cl, ok := clients[ip]
		if !ok {
			cl = &clientLimiter{limiter: rate.NewLimiter(limit, burst)}
			clients[ip] = cl
		}
		cl.lastSeen = now
		return cl.limiter
	}

	return func(c *gin.Context) {
		if !limiterFor(c.ClientIP()).Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			c.Abort()
			return
		}
		c.Next()
	}
}

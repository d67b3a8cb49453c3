package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	cachecontrol "go.eigsys.de/gin-cachecontrol/v2"
	"golang.org/x/time/rate"
)

type ctxKey string

const requestIDKey ctxKey = "request-id"

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		ctx := context.WithValue(c.Request.Context(), requestIDKey, reqID)
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Request-Id", reqID)
		c.Next()
	}
}

// RequestID returns the id attached by the request id middleware.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func (s *Server) accessLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
			"id", RequestID(c.Request.Context()),
		)
	}
}

// cacheMiddleware lets leaderboards be cached briefly; everything else is
// per-player and never cached.
func cacheMiddleware(public bool) gin.HandlerFunc {
	if public {
		return cachecontrol.New(cachecontrol.Config{
			Public: true,
			MaxAge: cachecontrol.Duration(5 * time.Second),
		})
	}
	return cachecontrol.New(cachecontrol.Config{
		NoStore:        true,
		NoCache:        true,
		MustRevalidate: true,
	})
}

func (s *Server) limiter(key string) *rate.Limiter {
	s.limiterMu.Lock()
	defer s.limiterMu.Unlock()
	if e, ok := s.limiters[key]; ok {
		e.lastAccess = time.Now()
		return e.limiter
	}
	lim := rate.NewLimiter(rate.Every(time.Second/time.Duration(s.cfg.RateRPS)), s.cfg.RateBurst)
	s.limiters[key] = &limiterEntry{limiter: lim, lastAccess: time.Now()}
	return lim
}

func (s *Server) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests, slow down"})
			return
		}
		c.Next()
	}
}

// pruneLimiters drops limiters idle for longer than the TTL.
func (s *Server) pruneLimiters(now time.Time) int {
	s.limiterMu.Lock()
	defer s.limiterMu.Unlock()
	removed := 0
	for key, e := range s.limiters {
		if now.Sub(e.lastAccess) > s.cfg.LimiterTTL {
			delete(s.limiters, key)
			removed++
		}
	}
	return removed
}

func (s *Server) cleanupLimiters(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.LimiterTTL / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.pruneLimiters(now); n > 0 {
				s.log.Debug("pruned rate limiters", "count", n)
			}
		}
	}
}

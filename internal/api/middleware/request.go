package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// loginAttemptTracker throttles repeated authentication attempts per
// client IP. Entries expire shortly after the last attempt.
type loginAttemptTracker struct {
	attempts     map[string]*attemptInfo
	mu           sync.RWMutex
	cleanupEvery time.Duration
}

type attemptInfo struct {
	Count       int
	LastAttempt time.Time
}

const maxAuthAttempts = 10

func newLoginAttemptTracker() *loginAttemptTracker {
	tracker := &loginAttemptTracker{
		attempts:     make(map[string]*attemptInfo),
		cleanupEvery: 5 * time.Minute,
	}
	go tracker.startCleanup()
	return tracker
}

func (t *loginAttemptTracker) startCleanup() {
	ticker := time.NewTicker(t.cleanupEvery)
	defer ticker.Stop()

	for range ticker.C {
		t.cleanOldEntries()
	}
}

func (t *loginAttemptTracker) cleanOldEntries() {
	t.mu.Lock()
	defer t.mu.Unlock()

	expiry := time.Now().Add(-time.Minute)
	for ip, info := range t.attempts {
		if info.LastAttempt.Before(expiry) {
			delete(t.attempts, ip)
		}
	}
}

func (t *loginAttemptTracker) record(ip string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	info, exists := t.attempts[ip]
	if !exists {
		info = &attemptInfo{}
		t.attempts[ip] = info
	}
	info.Count++
	info.LastAttempt = time.Now()
	return info.Count > maxAuthAttempts
}

type RequestMiddleware struct {
	logger         *zap.Logger
	attemptTracker *loginAttemptTracker
}

func NewRequestMiddleware(logger *zap.Logger) *RequestMiddleware {
	return &RequestMiddleware{
		logger:         logger,
		attemptTracker: newLoginAttemptTracker(),
	}
}

// ProcessRequest tags every request with an id and logs its outcome.
func (rm *RequestMiddleware) ProcessRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.New().String()
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		c.Next()

		rm.logger.Info("Request completed",
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}

// ThrottleAuthAttempts rejects clients hammering the auth endpoints.
func (rm *RequestMiddleware) ThrottleAuthAttempts() gin.HandlerFunc {
	return func(c *gin.Context) {
		if blocked := rm.attemptTracker.record(c.ClientIP()); blocked {
			rm.logger.Warn("Throttling auth attempts",
				zap.String("client_ip", c.ClientIP()),
				zap.String("path", c.FullPath()))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many authentication attempts, try again later",
			})
			return
		}
		c.Next()
	}
}

// RecoverPanic converts handler panics into 500 responses.
func (rm *RequestMiddleware) RecoverPanic() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				requestID := c.GetString("request_id")
				rm.logger.Error("Panic recovered",
					zap.String("request_id", requestID),
					zap.Any("error", err),
					zap.Stack("stack"))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "internal server error",
				})
			}
		}()
		c.Next()
	}
}

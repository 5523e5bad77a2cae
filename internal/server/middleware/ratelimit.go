package middleware

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// cleanupInterval - минимальный интервал между проходами очистки
	cleanupInterval = time.Minute
	// clientIdleTTL - время неактивности, после которого limiter клиента удаляется
	clientIdleTTL = 3 * time.Minute
)

// RateLimiter ограничивает частоту запросов по ключу (обычно IP клиента).
// Для каждого ключа держится свой token bucket из x/time/rate.
// Неактивные клиенты вычищаются попутно при обращениях, фоновых
// goroutine нет.
type RateLimiter struct {
	limiters    map[string]*clientLimiter
	logger      *slog.Logger
	rps         rate.Limit
	burst       int
	mu          sync.Mutex
	nextCleanup time.Time
}

// clientLimiter связывает limiter с временем последнего обращения
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter создает новый rate limiter
// rps - запросов в секунду, burst - допустимый всплеск
func NewRateLimiter(rps float64, burst int, logger *slog.Logger) *RateLimiter {
	return &RateLimiter{
		limiters:    make(map[string]*clientLimiter),
		rps:         rate.Limit(rps),
		burst:       burst,
		logger:      logger,
		nextCleanup: time.Now().Add(cleanupInterval),
	}
}

// Allow проверяет, разрешен ли запрос для данного ключа
func (rl *RateLimiter) Allow(key string) bool {
	now := time.Now()

	rl.mu.Lock()
	cl, exists := rl.limiters[key]
	if !exists {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.limiters[key] = cl
	}
	cl.lastSeen = now

	if now.After(rl.nextCleanup) {
		cutoff := now.Add(-clientIdleTTL)
		for k, c := range rl.limiters {
			if c.lastSeen.Before(cutoff) {
				delete(rl.limiters, k)
			}
		}
		rl.nextCleanup = now.Add(cleanupInterval)
	}
	rl.mu.Unlock()

	return cl.limiter.Allow()
}

// RateLimitMiddleware создает middleware для ограничения частоты запросов
func RateLimitMiddleware(rps float64, burst int, logger *slog.Logger) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(rps, burst, logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := getClientIP(r)

			if !limiter.Allow(key) {
				logger.Warn("Rate limit exceeded",
					"ip", key,
					"method", r.Method,
					"path", r.URL.Path,
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"rate limit exceeded, please try again later"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP извлекает IP адрес клиента из запроса
// Проверяет заголовки X-Forwarded-For и X-Real-IP для прокси
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Берем первый IP из списка (реальный клиент)
		for idx := 0; idx < len(xff); idx++ {
			if xff[idx] == ',' {
				return xff[:idx]
			}
		}
		return xff
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	return r.RemoteAddr
}

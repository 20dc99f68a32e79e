package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// rateLimiter keeps one token bucket per client. Buckets idle longer than the
// TTL are evicted so the set does not grow with every IP ever seen.
type rateLimiter struct {
	buckets   *cache.Cache
	rate      rate.Limit
	burstSize int
	ttl       time.Duration
	mu        sync.Mutex
}

func newRateLimiter(reqRate rate.Limit, burstSize int, ttl time.Duration) *rateLimiter {
	return &rateLimiter{
		buckets:   cache.New(ttl, 2*ttl),
		rate:      reqRate,
		burstSize: burstSize,
		ttl:       ttl,
	}
}

func (r *rateLimiter) limiterFor(key string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.buckets.Get(key); ok {
		limiter := v.(*rate.Limiter)
		r.buckets.Set(key, limiter, r.ttl)
		return limiter
	}

	limiter := rate.NewLimiter(r.rate, r.burstSize)
	r.buckets.Set(key, limiter, r.ttl)
	return limiter
}

// clientKey prefers the chat user in the path so users behind one gateway do
// not share a bucket.
func clientKey(ctx *fiber.Ctx) string {
	if userID := ctx.Params("user_id"); userID != "" {
		return "user:" + userID
	}
	return "ip:" + ctx.IP()
}

func (m *middleware) NewRateLimiter(ctx *fiber.Ctx) error {
	key := clientKey(ctx)
	limiter := m.rateLimitter.limiterFor(key)

	reservation := limiter.Reserve()
	if delay := reservation.Delay(); delay > 0 {
		reservation.Cancel()

		m.log.WithFields(logrus.Fields{
			"request_id": m.GetRequestID(ctx),
			"client":     key,
			"path":       ctx.Path(),
		}).Warn("Rate limit exceeded")

		ctx.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(delay.Seconds()))))
		return ctx.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": "Too many requests",
		})
	}

	return ctx.Next()
}

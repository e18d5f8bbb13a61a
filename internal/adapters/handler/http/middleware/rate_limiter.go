package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimiterMiddleware is a fixed window limiter keyed by client IP and
// shared between replicas through Redis. Redis failures let the request
// through.
func RateLimiterMiddleware(rdb *redis.Client, limit int, window time.Duration, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := "rate_limit:" + c.ClientIP()

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			log.Warn("rate limiter skipped", zap.Error(err))
			c.Next()
			return
		}

		if count == 1 {
			if err := rdb.Expire(ctx, key, window).Err(); err != nil {
				log.Warn("rate limiter expire failed, dropping key", zap.String("key", key), zap.Error(err))
				rdb.Del(ctx, key)
				c.Next()
				return
			}
		}

		ttl, err := rdb.TTL(ctx, key).Result()
		if err != nil || ttl < 0 {
			ttl = window
		}

		setRateLimitHeaders(c, limit, int64(limit)-count, ttl)

		if count > int64(limit) {
			abortTooManyRequests(c, ttl)
			return
		}

		c.Next()
	}
}

// LocalRateLimiterMiddleware keeps one token bucket per client IP in
// process memory. Used when no Redis is configured; limit requests refill
// evenly over window.
func LocalRateLimiterMiddleware(limit int, window time.Duration) gin.HandlerFunc {
	buckets := newLocalBuckets(limit, window)

	return func(c *gin.Context) {
		now := time.Now()
		l := buckets.get(c.ClientIP(), now)

		r := l.ReserveN(now, 1)
		delay := r.DelayFrom(now)
		if !r.OK() || delay > 0 {
			r.CancelAt(now)
			setRateLimitHeaders(c, limit, 0, delay)
			abortTooManyRequests(c, delay)
			return
		}

		setRateLimitHeaders(c, limit, int64(l.TokensAt(now)), window)
		c.Next()
	}
}

type localBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// localBuckets maps client IPs to limiters. A bucket idle for a whole window
// has refilled completely, so it is dropped and recreated on the next hit.
type localBuckets struct {
	limit  int
	window time.Duration
	every  rate.Limit

	mu        sync.Mutex
	buckets   map[string]*localBucket
	lastSweep time.Time
}

func newLocalBuckets(limit int, window time.Duration) *localBuckets {
	return &localBuckets{
		limit:   limit,
		window:  window,
		every:   rate.Every(window / time.Duration(max(limit, 1))),
		buckets: make(map[string]*localBucket),
	}
}

func (b *localBuckets) get(ip string, now time.Time) *rate.Limiter {
	b.mu.Lock()
	defer b.mu.Unlock()

	if now.Sub(b.lastSweep) >= b.window {
		b.evictIdle(now)
		b.lastSweep = now
	}

	e, ok := b.buckets[ip]
	if !ok {
		e = &localBucket{limiter: rate.NewLimiter(b.every, b.limit)}
		b.buckets[ip] = e
	}
	e.lastSeen = now
	return e.limiter
}

func (b *localBuckets) evictIdle(now time.Time) {
	for ip, e := range b.buckets {
		if now.Sub(e.lastSeen) >= b.window {
			delete(b.buckets, ip)
		}
	}
}

func (b *localBuckets) size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buckets)
}

func setRateLimitHeaders(c *gin.Context, limit int, remaining int64, reset time.Duration) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
	c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, remaining), 10))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(reset).Unix(), 10))
}

func abortTooManyRequests(c *gin.Context, retryIn time.Duration) {
	seconds := int(retryIn.Round(time.Second).Seconds())
	if seconds < 1 {
		seconds = 1
	}
	c.Header("Retry-After", strconv.Itoa(seconds))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"error":      "too many requests",
		"retry_in_s": seconds,
	})
}

// Package ratelimiter implements token bucket rate limiting for HTTP
// endpoints.
//
// A Limiter applies one Config over a Store. MemoryStore keeps buckets in a
// bounded LRU whose entries expire once a bucket would be full again;
// RedisStore shares buckets between instances with an atomic Lua script.
// A denied request never consumes tokens.
//
//	lim, err := ratelimiter.New(ratelimiter.NewMemoryStore(), ratelimiter.Config{
//		Capacity:       30,
//		RefillRate:     1,
//		RefillInterval: time.Second,
//	})
//	if err != nil {
//		return err
//	}
//	r.Use(ratelimiter.Middleware(lim,
//		ratelimiter.FirstOf(ratelimiter.ByCookie("adaptive_sid"), ratelimiter.ByClientIP),
//		log,
//	))
//
// Responses carry X-RateLimit-Limit, X-RateLimit-Remaining and
// X-RateLimit-Reset; rejected ones also carry Retry-After.
package ratelimiter

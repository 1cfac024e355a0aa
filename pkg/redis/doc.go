// Package redis connects to Redis with retries and exposes a readiness probe.
//
// Config is populated from the environment through pkg/config:
//
//	var cfg redis.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//	if cfg.Enabled() {
//		client, err := redis.Connect(ctx, cfg)
//		...
//	}
//
// Errors wrap the underlying go-redis errors with errors.Join, so the
// sentinels in this package can be matched with errors.Is.
package redis

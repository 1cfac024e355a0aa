// Package logger builds *slog.Logger instances with functional options and
// transparent injection of values stored in context.Context.
//
// New picks slog.NewTextHandler or slog.NewJSONHandler based on the
// configured Format and wraps it with NewContextHandler, which runs every
// registered ContextExtractor before delegating. Attribute helpers in attr.go
// keep key names consistent across packages (session_id, tier, device, …).
//
// # Usage
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Env, "adaptived"),
//		logger.WithContextValue("session_id", sessionKey{}),
//	)
//	log.InfoContext(ctx, "config degraded", logger.Tier("low-end"))
//
// Packages that accept an optional logger default to Discard.
package logger

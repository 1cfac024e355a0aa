package app

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/adaptive/pkg/clienthints"
	"github.com/dmitrymomot/adaptive/pkg/logger"
)

// NewLogger builds the process logger. Records carry the chi request id and
// the client hints fingerprint when the context has them.
func NewLogger(cfg Config, out io.Writer) *slog.Logger {
	opts := []logger.Option{
		logger.WithEnvironment(cfg.Env, cfg.Service),
		logger.WithOutput(out),
		logger.WithContextExtractors(
			logger.StringExtractor("request_id", middleware.GetReqID),
			fingerprintExtractor,
		),
	}
	if l, err := cfg.Level(); err == nil && l != nil {
		opts = append(opts, logger.WithLevel(*l))
	}
	if f := strings.ToLower(cfg.LogFormat); f != "" {
		opts = append(opts, logger.WithFormat(logger.Format(f)))
	}
	return logger.New(opts...)
}

func fingerprintExtractor(ctx context.Context) (slog.Attr, bool) {
	if fp := clienthints.FingerprintFromContext(ctx); fp != "" {
		return logger.Fingerprint(fp), true
	}
	return slog.Attr{}, false
}

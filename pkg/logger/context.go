package logger

import (
	"context"
	"log/slog"
)

// ContextExtractor pulls a request-scoped attribute out of ctx. The second
// result is false when ctx carries nothing worth logging.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// StringExtractor builds a ContextExtractor logging the non-empty string
// returned by get under key.
func StringExtractor(key string, get func(context.Context) string) ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		v := get(ctx)
		if v == "" {
			return slog.Attr{}, false
		}
		return slog.String(key, v), true
	}
}

// contextHandler enriches each record with the attributes its extractors
// find in the record's context before passing it on.
type contextHandler struct {
	inner      slog.Handler
	extractors []ContextExtractor
}

// NewContextHandler wraps inner so that every record is enriched by
// extractors. Nil extractors are skipped; with none left inner is returned
// unchanged.
func NewContextHandler(inner slog.Handler, extractors ...ContextExtractor) slog.Handler {
	var kept []ContextExtractor
	for _, ex := range extractors {
		if ex != nil {
			kept = append(kept, ex)
		}
	}
	if len(kept) == 0 {
		return inner
	}
	return &contextHandler{inner: inner, extractors: kept}
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		for _, ex := range h.extractors {
			if a, ok := ex(ctx); ok {
				r.AddAttrs(a)
			}
		}
	}
	return h.inner.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.wrap(h.inner.WithAttrs(attrs))
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return h.wrap(h.inner.WithGroup(name))
}

func (h *contextHandler) wrap(inner slog.Handler) *contextHandler {
	return &contextHandler{inner: inner, extractors: h.extractors}
}

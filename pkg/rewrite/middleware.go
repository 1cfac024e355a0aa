package rewrite

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrymomot/adaptive/pkg/clienthints"
	"github.com/dmitrymomot/adaptive/pkg/device"
	"github.com/dmitrymomot/adaptive/pkg/dom"
	"github.com/dmitrymomot/adaptive/pkg/logger"
	"github.com/dmitrymomot/adaptive/pkg/optimize"
	"github.com/dmitrymomot/adaptive/pkg/resource"
)

// HeaderTier reports the device tier a response was adapted to.
const HeaderTier = "X-Adaptive-Tier"

// Middleware adapts text/html responses to the requesting device. The body
// is parsed into a document, resource optimizations and lazy loading are
// applied and the result is rendered back. Responses that are not HTML, not
// 200, already encoded or larger than the buffer limit pass through unchanged,
// as does a body that fails to parse.
func Middleware(opts ...Option) func(http.Handler) http.Handler {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	log := o.logger.With(logger.Component("rewrite"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bw := newBufferedWriter(w, o.maxBody)
			next.ServeHTTP(bw, r)
			bw.settle()

			if !bw.buffered() {
				if bw.overflowed {
					log.DebugContext(r.Context(), "response streamed unchanged", slog.Any("reason", ErrBodyTooLarge))
				}
				return
			}

			body := bw.buf.Bytes()
			if len(body) == 0 {
				w.WriteHeader(bw.status)
				return
			}

			h := w.Header()
			out, tier, err := o.adapt(r, body)
			if err != nil {
				log.WarnContext(r.Context(), "html rewrite skipped", logger.Error(err))
				out = body
			} else if tier != "" {
				h.Set(HeaderTier, string(tier))
			}

			h.Set("Content-Length", strconv.Itoa(len(out)))
			for _, name := range clienthints.VaryOn {
				h.Add("Vary", name)
			}
			w.WriteHeader(bw.status)
			_, _ = w.Write(out)
		})
	}
}

func (o *options) adapt(r *http.Request, body []byte) ([]byte, device.Tier, error) {
	start := time.Now()

	doc, err := dom.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, "", err
	}

	var (
		info *device.Info
		tier device.Tier
	)
	if i, ok := o.info(r); ok {
		info, tier = &i, i.Tier()
	}

	report := resource.NewManager(info, resource.WithLogger(o.logger)).Apply(doc)

	opt := optimize.NewManager(info, append([]optimize.Option{optimize.WithLogger(o.logger)}, o.optimize...)...)
	defer opt.Cleanup()
	if o.config != nil {
		if live, ok := o.config(r); ok {
			opt.UpdateConfig(func(c *optimize.Config) { *c = live })
		}
	}
	lazy, err := opt.SetupLazyLoading(doc, o.lazySelector)
	if err != nil {
		return nil, "", err
	}
	if classes := opt.Config().Classes(); len(classes) > 0 {
		doc.Root().AddClass(classes...)
	}

	var buf bytes.Buffer
	buf.Grow(len(body) + len(body)/8)
	if err := doc.Render(&buf); err != nil {
		return nil, "", err
	}

	o.logger.DebugContext(r.Context(), "html adapted",
		slog.Int("images", report.Images),
		slog.Int("preloads", report.Preloads),
		slog.Int("prefetches", report.Prefetches),
		slog.Int("lazy", lazy),
		logger.Duration(time.Since(start)),
	)
	return buf.Bytes(), tier, nil
}

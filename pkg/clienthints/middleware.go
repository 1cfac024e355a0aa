package clienthints

import (
	"net/http"
	"strings"

	"github.com/dmitrymomot/adaptive/pkg/device"
	"github.com/dmitrymomot/adaptive/pkg/deviceutils"
)

// Middleware advertises the hints it reads, then stores the request Source,
// its detected device.Info and the client fingerprint in the request context.
// Detection options are passed through to device.Detect.
func Middleware(opts ...device.Option) func(http.Handler) http.Handler {
	acceptCH := strings.Join(AcceptCH, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Accept-CH", acceptCH)
			for _, name := range VaryOn {
				h.Add("Vary", name)
			}

			src := FromRequest(r)
			ctx := WithSource(r.Context(), src)
			ctx = WithInfo(ctx, device.Detect(ctx, src, opts...))
			ctx = WithFingerprint(ctx, deviceutils.GenerateFingerprint(r))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

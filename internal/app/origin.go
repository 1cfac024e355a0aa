package app

import (
	"errors"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/dmitrymomot/adaptive/pkg/logger"
)

// newOrigin returns the handler producing the pages to adapt: a reverse
// proxy to cfg.Upstream, or a file server over cfg.StaticDir.
func newOrigin(cfg Config, log *slog.Logger) (http.Handler, error) {
	if cfg.Upstream == "" {
		return http.FileServer(http.Dir(cfg.StaticDir)), nil
	}

	target, err := url.Parse(cfg.Upstream)
	if err != nil {
		return nil, errors.Join(ErrUpstream, err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, ErrUpstream
	}

	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
			pr.Out.Host = pr.In.Host
			// Encoded bodies cannot be rewritten; compression is redone on the way out.
			// Deleting the header is not enough, http.Transport would ask for gzip.
			pr.Out.Header.Set("Accept-Encoding", "identity")
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.ErrorContext(r.Context(), "upstream request failed",
				slog.String("upstream", target.Host), logger.Error(err))
			w.WriteHeader(http.StatusBadGateway)
		},
	}, nil
}

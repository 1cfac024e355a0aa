package telemetry

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/adaptive/pkg/device"
	"github.com/dmitrymomot/adaptive/pkg/optimize"
)

// sessionID returns the session id carried by the request cookie.
func (r *Registry) sessionID(req *http.Request) (string, bool) {
	c, err := req.Cookie(r.opts.cookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return "", false
	}
	return c.Value, true
}

// ensureSessionID returns the request session id, minting one and setting
// the cookie when the request has none.
func (r *Registry) ensureSessionID(w http.ResponseWriter, req *http.Request) string {
	if id, ok := r.sessionID(req); ok {
		return id
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     r.opts.cookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(r.opts.ttl.Seconds()),
		HttpOnly: true,
		Secure:   r.opts.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// RequestSession returns the live session named by the request cookie. It
// never creates one.
func (r *Registry) RequestSession(req *http.Request) (*Session, bool) {
	id, ok := r.sessionID(req)
	if !ok {
		return nil, false
	}
	return r.Get(id)
}

// RequestInfo returns the device of the request session.
func (r *Registry) RequestInfo(req *http.Request) (device.Info, bool) {
	s, ok := r.RequestSession(req)
	if !ok {
		return device.Info{}, false
	}
	return s.Info(), true
}

// RequestConfig returns the live config of the request session, including
// runtime degradation applied by its monitors.
func (r *Registry) RequestConfig(req *http.Request) (optimize.Config, bool) {
	s, ok := r.RequestSession(req)
	if !ok {
		return optimize.Config{}, false
	}
	return s.Config(), true
}

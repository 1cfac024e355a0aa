package telemetry

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/adaptive/pkg/clienthints"
	"github.com/dmitrymomot/adaptive/pkg/logger"
	"github.com/dmitrymomot/adaptive/pkg/validator"
)

type errorResponse struct {
	Error  string                     `json:"error"`
	Fields validator.ValidationErrors `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (r *Registry) writeError(w http.ResponseWriter, req *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, clienthints.ErrInvalidReport), errors.Is(err, ErrInvalidSamples):
		status = http.StatusBadRequest
	case errors.Is(err, ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrRegistryClosed), errors.Is(err, ErrSessionClosed):
		status = http.StatusServiceUnavailable
	}

	body := errorResponse{Error: http.StatusText(status)}
	if status < http.StatusInternalServerError {
		body.Error = err.Error()
		body.Fields = validator.ExtractValidationErrors(err)
	} else {
		r.opts.logger.ErrorContext(req.Context(), "telemetry request failed",
			slog.String("path", req.URL.Path), logger.Error(err))
	}
	writeJSON(w, status, body)
}

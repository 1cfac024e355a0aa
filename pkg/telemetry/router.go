package telemetry

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/dmitrymomot/adaptive/pkg/clienthints"
	"github.com/dmitrymomot/adaptive/pkg/device"
	"github.com/dmitrymomot/adaptive/pkg/logger"
	"github.com/dmitrymomot/adaptive/pkg/optimize"
)

// SignalsKey is the datastar signal namespace config patches are sent under.
const SignalsKey = "adaptive"

// ConfigResponse is the body of GET /config and of successful reports.
type ConfigResponse struct {
	SessionID string           `json:"session_id"`
	Tier      device.Tier      `json:"tier"`
	Device    device.Info      `json:"device"`
	Config    optimize.Config  `json:"config"`
	Signals   optimize.Signals `json:"signals"`
}

// SamplesResponse is the body of POST /samples.
type SamplesResponse struct {
	Queued  int              `json:"queued"`
	Signals optimize.Signals `json:"signals"`
}

// Router mounts the telemetry endpoints:
//
//	POST /report          beacon report, re-detects the device
//	POST /samples         frame, memory and connection samples
//	GET  /config          current config as JSON
//	GET  /config/stream   datastar SSE, patches signals on every config change
//	GET  /schema/report   JSON schema of the report body
//	GET  /schema/samples  JSON schema of the samples body
//
// Example:
//
//	reg := telemetry.NewRegistry(telemetry.WithStore(store))
//	r := chi.NewRouter()
//	r.Mount("/adaptive", telemetry.Router(reg))
func Router(reg *Registry) chi.Router {
	r := chi.NewRouter()
	r.Use(clienthints.Middleware(reg.opts.detect...))

	r.Post("/report", reg.handleReport)
	r.Post("/samples", reg.handleSamples)
	r.Get("/config", reg.handleConfig)
	r.Get("/config/stream", reg.handleStream)
	r.Get("/schema/report", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, ReportSchema())
	})
	r.Get("/schema/samples", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, SamplesSchema())
	})

	return r
}

func (r *Registry) handleReport(w http.ResponseWriter, req *http.Request) {
	rep, err := clienthints.DecodeReport(req.Body)
	if err != nil {
		r.writeError(w, req, err)
		return
	}

	src, err := clienthints.SourceFromContext(req.Context())
	if err != nil {
		r.writeError(w, req, err)
		return
	}

	id := r.ensureSessionID(w, req)
	sess, err := r.Report(req.Context(), id, src, rep)
	if err != nil {
		r.writeError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, configResponse(sess))
}

func (r *Registry) handleSamples(w http.ResponseWriter, req *http.Request) {
	smp, err := DecodeSamples(req.Body)
	if err != nil {
		r.writeError(w, req, err)
		return
	}

	sess, err := r.sessionFor(w, req)
	if err != nil {
		r.writeError(w, req, err)
		return
	}
	queued := sess.Record(smp)
	writeJSON(w, http.StatusAccepted, SamplesResponse{Queued: queued, Signals: sess.Config().Signals()})
}

func (r *Registry) handleConfig(w http.ResponseWriter, req *http.Request) {
	sess, err := r.sessionFor(w, req)
	if err != nil {
		r.writeError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, configResponse(sess))
}

// handleStream follows the session across re-detections: when the current
// optimizer is replaced its subscription closes and the loop subscribes to
// the new one.
func (r *Registry) handleStream(w http.ResponseWriter, req *http.Request) {
	sess, err := r.sessionFor(w, req)
	if err != nil {
		r.writeError(w, req, err)
		return
	}

	ctx := req.Context()
	sse := datastar.NewSSE(w, req)

	for {
		opt := sess.Optimizer()
		sub := opt.Subscribe(ctx)

		if err := patchSignals(sse, opt.Config()); err != nil {
			_ = sub.Close()
			return
		}
		for msg := range sub.Receive(ctx) {
			if err := patchSignals(sse, msg.Data); err != nil {
				_ = sub.Close()
				r.opts.logger.DebugContext(ctx, "config stream ended",
					logger.SessionID(sess.ID()), logger.Error(err))
				return
			}
		}
		_ = sub.Close()

		if ctx.Err() != nil || sess.Closed() {
			return
		}
	}
}

func (r *Registry) sessionFor(w http.ResponseWriter, req *http.Request) (*Session, error) {
	src, err := clienthints.SourceFromContext(req.Context())
	if err != nil {
		return nil, err
	}
	return r.Open(req.Context(), r.ensureSessionID(w, req), src)
}

func configResponse(s *Session) ConfigResponse {
	cfg := s.Config()
	return ConfigResponse{
		SessionID: s.ID(),
		Tier:      s.Tier(),
		Device:    s.Info(),
		Config:    cfg,
		Signals:   cfg.Signals(),
	}
}

func patchSignals(sse *datastar.ServerSentEventGenerator, cfg optimize.Config) error {
	data, err := json.Marshal(map[string]any{SignalsKey: cfg.Signals()})
	if err != nil {
		return err
	}
	return sse.PatchSignals(data)
}

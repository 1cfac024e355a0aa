package clienthints

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/dmitrymomot/adaptive/pkg/device"
	"github.com/dmitrymomot/adaptive/pkg/validator"
)

// MaxReportBytes bounds the beacon body.
const MaxReportBytes = 16 << 10

// Report carries the values only script can read. Absent fields fall back to
// request headers, then to detection defaults.
type Report struct {
	UserAgent           string                     `json:"user_agent,omitempty"`
	MaxTouchPoints      *int                       `json:"max_touch_points,omitempty"`
	ViewportWidth       *int                       `json:"viewport_width,omitempty"`
	ViewportHeight      *int                       `json:"viewport_height,omitempty"`
	PixelRatio          *float64                   `json:"pixel_ratio,omitempty"`
	ColorDepth          *int                       `json:"color_depth,omitempty"`
	SafeArea            *device.SafeArea           `json:"safe_area,omitempty"`
	DeviceMemory        *float64                   `json:"device_memory,omitempty"`
	HardwareConcurrency *int                       `json:"hardware_concurrency,omitempty"`
	Connection          *device.Connection         `json:"connection,omitempty"`
	Battery             *device.Battery            `json:"battery,omitempty"`
	Features            map[device.Capability]bool `json:"features,omitempty"`
	Media               map[string]bool            `json:"media,omitempty"`
}

var effectiveTypes = []string{
	device.ConnectionSlow2G,
	device.Connection2G,
	device.Connection3G,
	device.Connection4G,
}

// Validate rejects values outside what a browser can report.
func (r Report) Validate() error {
	return validator.Apply(
		validator.MaxLen("user_agent", r.UserAgent, 1024),
		validator.Optional(r.MaxTouchPoints, func(v int) validator.Rule {
			return validator.Range("max_touch_points", v, 0, 32)
		}),
		validator.Optional(r.ViewportWidth, func(v int) validator.Rule {
			return validator.Range("viewport_width", v, 0, 16384)
		}),
		validator.Optional(r.ViewportHeight, func(v int) validator.Rule {
			return validator.Range("viewport_height", v, 0, 16384)
		}),
		validator.Optional(r.PixelRatio, func(v float64) validator.Rule {
			return validator.Range("pixel_ratio", v, 0.25, 10)
		}),
		validator.Optional(r.DeviceMemory, func(v float64) validator.Rule {
			return validator.Range("device_memory", v, 0, 1024)
		}),
		validator.Optional(r.HardwareConcurrency, func(v int) validator.Rule {
			return validator.Range("hardware_concurrency", v, 1, 1024)
		}),
		validator.Optional(r.Battery, func(b device.Battery) validator.Rule {
			return validator.Range("battery.level", b.Level, 0, 1)
		}),
		validator.Optional(r.Connection, func(c device.Connection) validator.Rule {
			return validator.OneOf("connection.effective_type", c.EffectiveType, effectiveTypes)
		}),
	)
}

// DecodeReport reads and validates a JSON report.
func DecodeReport(r io.Reader) (Report, error) {
	var rep Report
	dec := json.NewDecoder(io.LimitReader(r, MaxReportBytes))
	if err := dec.Decode(&rep); err != nil {
		return Report{}, errors.Join(ErrInvalidReport, err)
	}
	if err := rep.Validate(); err != nil {
		return Report{}, errors.Join(ErrInvalidReport, err)
	}
	return rep, nil
}

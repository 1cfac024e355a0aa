package telemetry

import (
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/dmitrymomot/adaptive/pkg/device"
	"github.com/dmitrymomot/adaptive/pkg/optimize"
	"github.com/dmitrymomot/adaptive/pkg/validator"
)

const (
	// MaxSamplesBytes bounds a samples request body.
	MaxSamplesBytes = 64 << 10
	// MaxFramesPerBatch bounds the frame timestamps accepted per request.
	MaxFramesPerBatch = 1024
)

// frameEpoch anchors client frame timestamps. Only differences between
// timestamps are meaningful.
var frameEpoch = time.Unix(0, 0)

// Samples is a batch of runtime measurements posted by the page.
type Samples struct {
	// Frames are requestAnimationFrame timestamps in milliseconds, ascending.
	Frames []float64 `json:"frames,omitempty"`
	// Memory is the latest performance.memory reading.
	Memory *optimize.MemorySample `json:"memory,omitempty"`
	// Connection is the current navigator.connection state.
	Connection *device.Connection `json:"connection,omitempty"`
}

// Validate checks ordering and bounds.
func (s Samples) Validate() error {
	ascending := true
	for i := 1; i < len(s.Frames); i++ {
		if s.Frames[i] < s.Frames[i-1] {
			ascending = false
			break
		}
	}
	nonNegative := len(s.Frames) == 0 || s.Frames[0] >= 0

	return validator.Apply(
		validator.Range("frames", len(s.Frames), 0, MaxFramesPerBatch),
		validator.Rule{
			Check: func() bool { return ascending && nonNegative },
			Error: validator.ValidationError{Field: "frames", Message: "must be non-negative and ascending"},
		},
		validator.Optional(s.Connection, func(c device.Connection) validator.Rule {
			return validator.OneOf("connection.effective_type", c.EffectiveType, effectiveTypes)
		}),
	)
}

// Empty reports whether the batch carries no measurement.
func (s Samples) Empty() bool {
	return len(s.Frames) == 0 && s.Memory == nil && s.Connection == nil
}

var effectiveTypes = []string{
	device.ConnectionSlow2G,
	device.Connection2G,
	device.Connection3G,
	device.Connection4G,
}

// DecodeSamples reads and validates a JSON samples batch.
func DecodeSamples(r io.Reader) (Samples, error) {
	var s Samples
	if err := json.NewDecoder(io.LimitReader(r, MaxSamplesBytes)).Decode(&s); err != nil {
		return Samples{}, errors.Join(ErrInvalidSamples, err)
	}
	if err := s.Validate(); err != nil {
		return Samples{}, errors.Join(ErrInvalidSamples, err)
	}
	return s, nil
}

func frameTime(ms float64) time.Time {
	return frameEpoch.Add(time.Duration(ms * float64(time.Millisecond)))
}

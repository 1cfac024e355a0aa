package telemetry_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/adaptive/pkg/telemetry"
	"github.com/dmitrymomot/adaptive/pkg/validator"
)

func TestDecodeSamples(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		wantErr bool
		field   string
	}{
		{name: "frames", body: `{"frames":[0,16.7,33.4]}`},
		{name: "memory", body: `{"memory":{"used_bytes":100,"limit_bytes":200}}`},
		{name: "connection", body: `{"connection":{"effective_type":"3g","save_data":true}}`},
		{name: "empty object", body: `{}`},
		{name: "descending frames", body: `{"frames":[10,5]}`, wantErr: true, field: "frames"},
		{name: "negative frames", body: `{"frames":[-1,5]}`, wantErr: true, field: "frames"},
		{name: "unknown effective type", body: `{"connection":{"effective_type":"5g"}}`, wantErr: true, field: "connection.effective_type"},
		{name: "malformed", body: `{"frames":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := telemetry.DecodeSamples(strings.NewReader(tt.body))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, telemetry.ErrInvalidSamples)
			if tt.field != "" {
				assert.True(t, validator.ExtractValidationErrors(err).Has(tt.field))
			}
		})
	}

	t.Run("too many frames", func(t *testing.T) {
		t.Parallel()
		frames := make([]string, telemetry.MaxFramesPerBatch+1)
		for i := range frames {
			frames[i] = "1"
		}
		_, err := telemetry.DecodeSamples(strings.NewReader(`{"frames":[` + strings.Join(frames, ",") + `]}`))
		assert.ErrorIs(t, err, telemetry.ErrInvalidSamples)
	})
}

func TestSamplesEmpty(t *testing.T) {
	t.Parallel()
	assert.True(t, telemetry.Samples{}.Empty())
	assert.False(t, telemetry.Samples{Frames: []float64{1}}.Empty())
}

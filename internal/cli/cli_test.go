package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/adaptive/internal/cli"
	"github.com/dmitrymomot/adaptive/pkg/device"
	"github.com/dmitrymomot/adaptive/pkg/optimize"
)

const pixelUA = "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36"

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestClassify(t *testing.T) {
	t.Parallel()

	t.Run("headers", func(t *testing.T) {
		t.Parallel()
		out, err := execute(t, "", "classify", "--json",
			"-A", pixelUA,
			"-H", "Sec-CH-Device-Memory: 1",
			"-H", "ECT: 2g",
		)
		require.NoError(t, err)

		var c cli.Classification
		require.NoError(t, json.Unmarshal([]byte(out), &c))
		assert.Equal(t, device.TierLowEnd, c.Tier)
		assert.Equal(t, device.TypeMobile, c.Device.Type)
		assert.True(t, c.SlowConnection)
		assert.Equal(t, 60, c.Config.Images.Quality)
		assert.Contains(t, c.Signals.Classes, optimize.ClassNoShadows)
	})

	t.Run("report from stdin", func(t *testing.T) {
		t.Parallel()
		report := `{"device_memory":16,"hardware_concurrency":8,"connection":{"effective_type":"4g"}}`
		out, err := execute(t, report, "classify", "--json", "--report", "-")
		require.NoError(t, err)

		var c cli.Classification
		require.NoError(t, json.Unmarshal([]byte(out), &c))
		assert.Equal(t, device.TierHighEnd, c.Tier)
		assert.Equal(t, 90, c.Config.Images.Quality)
	})

	t.Run("text output", func(t *testing.T) {
		t.Parallel()
		out, err := execute(t, "", "classify", "-A", pixelUA)
		require.NoError(t, err)
		assert.Contains(t, out, "tier:")
		assert.Contains(t, out, "images:")
	})

	t.Run("bad header", func(t *testing.T) {
		t.Parallel()
		_, err := execute(t, "", "classify", "-H", "no-colon")
		assert.Error(t, err)
	})

	t.Run("invalid report", func(t *testing.T) {
		t.Parallel()
		_, err := execute(t, `{"hardware_concurrency":0}`, "classify", "--report", "-")
		assert.Error(t, err)
	})
}

func TestProfileCommands(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	valid := filepath.Join(dir, "valid.yaml")
	require.NoError(t, os.WriteFile(valid, []byte("images:\n  format: avif\n"), 0o600))
	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("images:\n  quality: 500\n"), 0o600))

	t.Run("validate", func(t *testing.T) {
		t.Parallel()
		out, err := execute(t, "", "profile", "validate", valid)
		require.NoError(t, err)
		assert.Contains(t, out, "ok")

		_, err = execute(t, "", "profile", "validate", invalid)
		assert.ErrorIs(t, err, optimize.ErrInvalidProfile)
	})

	t.Run("show tier", func(t *testing.T) {
		t.Parallel()
		out, err := execute(t, "", "profile", "show", valid, "--tier", string(device.TierLowEnd))
		require.NoError(t, err)

		var cfg optimize.Config
		require.NoError(t, yaml.Unmarshal([]byte(out), &cfg))
		assert.Equal(t, "avif", cfg.Images.Format)
		assert.Equal(t, 60, cfg.Images.Quality)
		assert.True(t, cfg.Animations.Reduced)
	})

	t.Run("show defaults", func(t *testing.T) {
		t.Parallel()
		out, err := execute(t, "", "profile", "show")
		require.NoError(t, err)

		var cfg optimize.Config
		require.NoError(t, yaml.Unmarshal([]byte(out), &cfg))
		assert.Equal(t, optimize.DefaultConfig(), cfg)
	})

	t.Run("unknown tier", func(t *testing.T) {
		t.Parallel()
		_, err := execute(t, "", "profile", "show", "--tier", "ultra")
		assert.ErrorIs(t, err, cli.ErrUnknownTier)
	})
}

func TestSchemaCommand(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"report", "samples"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			out, err := execute(t, "", "schema", name)
			require.NoError(t, err)

			var schema map[string]any
			require.NoError(t, json.Unmarshal([]byte(out), &schema))
			assert.Contains(t, schema["$id"], name)
		})
	}

	_, err := execute(t, "", "schema", "other")
	assert.Error(t, err)
}

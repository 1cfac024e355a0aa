package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/adaptive/pkg/clienthints"
	"github.com/dmitrymomot/adaptive/pkg/device"
	"github.com/dmitrymomot/adaptive/pkg/deviceutils"
	"github.com/dmitrymomot/adaptive/pkg/optimize"
	"github.com/dmitrymomot/adaptive/pkg/profile"
	"github.com/dmitrymomot/adaptive/pkg/resource"
)

// Classification is the classify command output.
type Classification struct {
	Label          string           `json:"label"`
	Tier           device.Tier      `json:"tier"`
	Device         device.Info      `json:"device"`
	Touch          bool             `json:"touch"`
	SlowConnection bool             `json:"slow_connection"`
	ReducedMotion  bool             `json:"reduced_motion"`
	DarkMode       bool             `json:"dark_mode"`
	Config         optimize.Config  `json:"config"`
	Resources      optimize.Config  `json:"resources"`
	Signals        optimize.Signals `json:"signals"`
}

type classifyFlags struct {
	userAgent   string
	headers     []string
	reportPath  string
	profilePath string
	asJSON      bool
}

func newClassifyCommand() *cobra.Command {
	var f classifyFlags

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify a device from a user agent, client hints and a report",
		Example: `  adaptived classify --user-agent "$UA" -H "Sec-CH-Device-Memory: 2" -H "ECT: 3g"
  adaptived classify --report report.json --json
  echo '{"device_memory":16,"hardware_concurrency":8}' | adaptived classify --report -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := classify(cmd.Context(), f, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return printClassification(cmd.OutOrStdout(), c, f.asJSON)
		},
	}
	cmd.Flags().StringVarP(&f.userAgent, "user-agent", "A", "", "User-Agent header")
	cmd.Flags().StringArrayVarP(&f.headers, "header", "H", nil, `request header as "Name: value", repeatable`)
	cmd.Flags().StringVar(&f.reportPath, "report", "", `JSON report file, "-" for stdin`)
	cmd.Flags().StringVar(&f.profilePath, "profile", "", "YAML profile to derive the config from")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print JSON")
	return cmd
}

func classify(ctx context.Context, f classifyFlags, stdin io.Reader) (Classification, error) {
	header, err := parseHeaders(f.headers)
	if err != nil {
		return Classification{}, err
	}
	if f.userAgent != "" {
		header.Set(clienthints.HeaderUserAgent, f.userAgent)
	}

	var rep clienthints.Report
	if f.reportPath != "" {
		if rep, err = readReport(f.reportPath, stdin); err != nil {
			return Classification{}, err
		}
	}

	base, err := profile.Load(f.profilePath)
	if err != nil {
		return Classification{}, err
	}

	src := clienthints.NewSource(header, rep)
	info := device.Detect(ctx, src)
	cfg := optimize.Derive(base, &info)

	return Classification{
		Label:          info.ShortIdentifier(),
		Tier:           info.Tier(),
		Device:         info,
		Touch:          deviceutils.SupportsTouch(src),
		SlowConnection: deviceutils.IsSlowConnection(src),
		ReducedMotion:  deviceutils.PrefersReducedMotion(src),
		DarkMode:       deviceutils.PrefersDarkMode(src),
		Config:         cfg,
		Resources:      resource.ConfigFor(&info),
		Signals:        cfg.Signals(),
	}, nil
}

func parseHeaders(lines []string) (http.Header, error) {
	h := make(http.Header, len(lines))
	for _, line := range lines {
		name, value, ok := strings.Cut(line, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q, want \"Name: value\"", line)
		}
		h.Add(name, strings.TrimSpace(value))
	}
	return h, nil
}

func readReport(path string, stdin io.Reader) (clienthints.Report, error) {
	if path == "-" {
		return clienthints.DecodeReport(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return clienthints.Report{}, errors.Join(clienthints.ErrInvalidReport, err)
	}
	defer f.Close()
	return clienthints.DecodeReport(f)
}

func printClassification(w io.Writer, c Classification, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	}

	writeLine(w, "device:      %s", c.Label)
	writeLine(w, "tier:        %s", c.Tier)
	writeLine(w, "memory:      %.1f GB, %d cores", c.Device.Performance.MemoryGB, c.Device.Performance.Cores)
	writeLine(w, "connection:  %s (slow: %t)", c.Device.Performance.Connection.EffectiveType, c.SlowConnection)
	writeLine(w, "touch:       %t", c.Touch)
	writeLine(w, "images:      quality %d, %s, lazy %t", c.Config.Images.Quality, c.Config.Images.Format, c.Config.Images.Lazy)
	writeLine(w, "animations:  %d fps, %s, reduced %t", c.Config.Animations.FPS, c.Config.Animations.Duration, c.Config.Animations.Reduced)
	writeLine(w, "hints:       preload %t, prefetch %t", c.Resources.Network.Preload, c.Resources.Network.Prefetch)
	if len(c.Signals.Classes) > 0 {
		writeLine(w, "classes:     %s", strings.Join(c.Signals.Classes, " "))
	}
	return nil
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/adaptive/pkg/device"
	"github.com/dmitrymomot/adaptive/pkg/optimize"
	"github.com/dmitrymomot/adaptive/pkg/profile"
)

func newProfileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Inspect optimization profiles",
	}
	cmd.AddCommand(newProfileValidateCommand(), newProfileShowCommand())
	return cmd
}

func newProfileValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check that a YAML profile loads",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := profile.Load(args[0]); err != nil {
				return err
			}
			writeLine(cmd.OutOrStdout(), "%s: ok", args[0])
			return nil
		},
	}
}

func newProfileShowCommand() *cobra.Command {
	var tier string

	cmd := &cobra.Command{
		Use:   "show [file]",
		Short: "Print the effective config for a tier as YAML",
		Long: `Print the config a device of the given tier receives. Without a file the
built-in defaults are used as the base.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			base, err := profile.Load(path)
			if err != nil {
				return err
			}
			cfg, err := configForTier(base, device.Tier(tier))
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return err
			}
			return enc.Close()
		},
	}
	cmd.Flags().StringVar(&tier, "tier", "", "low-end, mid-range or high-end; empty prints the base")
	return cmd
}

// tierSamples are performance snapshots that classify into each tier.
var tierSamples = map[device.Tier]device.Performance{
	device.TierLowEnd: {MemoryGB: 1, Cores: 2, Connection: device.Connection{EffectiveType: device.Connection3G}},
	device.TierMidRange: {
		MemoryGB: device.DefaultMemoryGB, Cores: device.DefaultCores,
		Connection: device.Connection{EffectiveType: device.Connection4G},
	},
	device.TierHighEnd: {MemoryGB: 16, Cores: 8, Connection: device.Connection{EffectiveType: device.Connection4G}},
}

func configForTier(base optimize.Config, tier device.Tier) (optimize.Config, error) {
	if tier == "" {
		return base, nil
	}
	perf, ok := tierSamples[tier]
	if !ok {
		return optimize.Config{}, fmt.Errorf("%w %q", ErrUnknownTier, tier)
	}
	info := device.Info{Performance: perf}
	return optimize.Derive(base, &info), nil
}

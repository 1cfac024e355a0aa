// Package cli provides the adaptived commands.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/adaptive/internal/app"
	"github.com/dmitrymomot/adaptive/pkg/config"
)

// Version is set at build time.
var Version = "dev"

// NewRootCommand builds the command tree. Environment files named by
// --env-file are loaded before any subcommand reads its configuration.
func NewRootCommand() *cobra.Command {
	var envFiles []string

	root := &cobra.Command{
		Use:   "adaptived",
		Short: "Device-adaptive HTML delivery",
		Long: `adaptived serves or proxies HTML pages and adapts them to the device
requesting them.

Devices are classified from client hints and from the report posted by the
page script. Each classification yields an optimization config (image
quality, lazy loading, animation budget, CSS feature classes, resource
hints) that is applied to the HTML on the way out and streamed to the page
as it changes.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return config.LoadEnv(envFiles...)
		},
	}
	root.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load before reading the environment")

	root.AddCommand(
		newServeCommand(),
		newClassifyCommand(),
		newProfileCommand(),
		newSchemaCommand(),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loadConfig() (app.Config, error) {
	var cfg app.Config
	if err := config.Load(&cfg); err != nil {
		return app.Config{}, err
	}
	return cfg, nil
}

func writeLine(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format+"\n", args...)
}

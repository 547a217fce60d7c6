package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-console/internal/config"
	"github.com/oshokin/alarm-console/internal/service/manager"
	"github.com/oshokin/alarm-console/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// logLevel overrides the configured minimum log level.
	logLevel string

	// rootCmd represents the base command for running the alarm console.
	rootCmd = &cobra.Command{
		Use:   "alarm-console",
		Short: "Run the interactive multi-threaded alarm console.",
		Long: `Starts the interactive alarm console: commands typed at the prompt create,
change, suspend, reactivate, cancel, and list periodic alarms while display
schedulers print each active alarm's message on its interval.

Settings (queue capacity, scheduler tick, prompt, log level) are read from
the YAML configuration file; a missing file means defaults. The console
keeps the input line visible across asynchronous worker output.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &manager.Options{
				ConfigPath: configPath,
				LogLevel:   logLevel,
			}

			return manager.Run(ctx, options)
		},
	}
)

// Execute runs the alarm-console CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "minimum log level (overrides configuration)")
}

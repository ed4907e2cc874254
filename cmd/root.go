package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/lehigh-university-libraries/carcustomizer/internal/config"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "carcustomizer",
		Short: "AI-assisted car photo customization",
		Long: `Carcustomizer applies paint, wheel, body kit, graphics and background
modifications to photos of a car, keeping every camera angle consistent.

Each modification is sent to a remote image model once per view, on top of
that view's latest result, so edits compound until the views are reset.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			level, err := config.LoadLogLevel(cmd.Flags())
			if err != nil {
				return err
			}
			if verbose {
				level = slog.LevelDebug
			}
			setupLogging(level)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
	cmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error (env: LOG_LEVEL)")

	// Add subcommands
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newEditCmd())
	cmd.AddCommand(newOptionsCmd())

	return cmd
}

func setupLogging(level slog.Level) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/carcustomizer/internal/config"
	"github.com/lehigh-university-libraries/carcustomizer/internal/handlers"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the editor API and relay endpoint",
		Long: `Starts the carcustomizer HTTP API on the specified port.

Clients create an editor session by uploading front, side and rear photos,
then apply modifications to every view at once and download the results.
The server also exposes /api/generate, a relay that forwards single edits to
the configured provider so browsers never hold the provider credential.`,
		Example: `  # Start server on default port 8888 using Gemini
  GEMINI_API_KEY=... carcustomizer serve

  # Start server on custom port using OpenAI
  carcustomizer serve --port 3000 --provider openai`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}

			editor, closeEditor, err := newEditor(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := closeEditor(); err != nil {
					slog.Warn("Unable to close provider client", "err", err)
				}
			}()

			handler := handlers.New(editor, handlers.Options{MaxUploadBytes: cfg.Server.MaxUploadBytes})

			addr := ":" + cfg.Server.Port
			server := &http.Server{
				Addr:              addr,
				Handler:           handler.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Carcustomizer API available", "addr", addr, "url", "http://localhost"+addr, "provider", cfg.Provider)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give in-flight batches time to resolve
				shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.RequestTimeout+5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringP("port", "p", "", "Port to listen on (default $PORT or 8888)")
	addProviderFlags(cmd.Flags())

	return cmd
}

package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hoalabs/bylaws-assistant/internal/adapters/driving/httpapi"
	"github.com/hoalabs/bylaws-assistant/internal/core/ports/driving"
	"github.com/hoalabs/bylaws-assistant/internal/logger"
	"github.com/hoalabs/bylaws-assistant/internal/watcher"
)

var flagWatch bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Starts the HTTP API on the configured port.

With --watch, PDFs dropped into the documents directory are ingested
automatically without going through the upload endpoint.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&flagWatch, "watch", false, "ingest PDFs dropped into the documents directory")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	// The upload endpoint writes into the directory the watcher
	// watches; guarding the upload path keeps each upload indexed once.
	var ingestion driving.IngestionService = a.ingestion
	var w *watcher.Watcher
	if flagWatch {
		w = watcher.New(a.cfg.DocumentsDir, a.ingestion)
		ingestion = w.GuardUploads(a.ingestion)
	}

	srv := httpapi.New(ingestion, a.answers, a.requests, httpapi.Options{
		StaticDir:   a.cfg.StaticDir,
		LLMProvider: a.cfg.LLMProvider,
		LLMModel:    a.cfg.LLMModel(),
		Version:     version,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if w != nil {
		go func() {
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("watcher stopped: %v", err)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(":" + a.cfg.Port)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("Shutting down")
		return srv.Shutdown(context.Background())
	}
}

package commands

import (
	"context"
	"errors"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"saldo/internal/amqp"
	"saldo/internal/auth"
	"saldo/internal/http"
	"saldo/internal/live"
	"saldo/internal/log"
	"saldo/internal/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	blobs, closeBlobs, localDir, err := openBlobs(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeBlobs()

	var publisher services.CleanupPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			return err
		}
		defer client.Close()
		publisher = client
		logger.Info("Attachment cleanup queue connected", "queue", cfg.AMQPQueue)
	} else {
		logger.Info("No AMQP URL configured; attachment blobs are deleted inline")
	}

	hub := live.NewHub(st)
	srv := http.NewServer(":"+cfg.Port, http.Options{
		Ledger:        services.NewLedger(st, hub, blobs, publisher, logger),
		Importer:      services.NewImporter(st, logger),
		Exporter:      services.NewExporter(st, logger),
		Hub:           hub,
		Auth:          auth.NewService(st, st, cfg.SessionTTL),
		DefaultLocale: cfg.DefaultLocale,
		BlobDir:       localDir,
		Logger:        logger,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening",
			log.FieldOperation, log.OpStartup,
			"addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down", log.FieldOperation, log.OpShutdown)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

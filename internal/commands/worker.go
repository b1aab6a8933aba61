package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"saldo/internal/amqp"
	"saldo/internal/worker"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the attachment cleanup worker",
	Long: `The worker drains the attachment cleanup queue and periodically sweeps
the blob store for orphans whose record no longer exists.`,
	RunE: runWorker,
}

func runWorker(cmd *cobra.Command, _ []string) error {
	if cfg.AMQPURL == "" {
		return fmt.Errorf("AMQP_URL is required to run the worker")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	blobs, closeBlobs, _, err := openBlobs(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeBlobs()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return err
	}
	defer client.Close()

	logger.Info("Cleanup worker started",
		"queue", cfg.AMQPQueue,
		"sweep_interval", cfg.SweepInterval.String())

	w := worker.NewCleanupWorker(st, blobs, logger)
	return w.Run(ctx, client, cfg.SweepInterval)
}

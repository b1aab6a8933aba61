// Package worker removes attachment blobs that belonged to deleted
// expense records: queued cleanup messages first, plus a periodic sweep
// for blobs whose record no longer exists.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"saldo/internal/amqp"
	"saldo/internal/blob"
	"saldo/internal/log"
	"saldo/internal/store"
)

// Consumer is the queue side the worker drains; satisfied by
// *amqp.Client.
type Consumer interface {
	Consume(ctx context.Context, handler func(context.Context, *amqp.AttachmentCleanupMessage) error) error
}

type CleanupWorker struct {
	store  store.ExpenseStore
	blobs  blob.Store
	logger *log.Logger
}

func NewCleanupWorker(s store.ExpenseStore, blobs blob.Store, logger *log.Logger) *CleanupWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &CleanupWorker{
		store:  s,
		blobs:  blobs,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleCleanupMessage deletes the blob named by one queued message. A
// blob that is already gone counts as success so redeliveries converge.
func (w *CleanupWorker) HandleCleanupMessage(ctx context.Context, msg *amqp.AttachmentCleanupMessage) error {
	err := w.blobs.Delete(ctx, msg.RecordID)
	if errors.Is(err, blob.ErrNotFound) {
		w.logger.DebugContext(ctx, "Blob already gone",
			log.FieldRecordID, msg.RecordID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete blob %s: %w", msg.RecordID, err)
	}

	w.logger.InfoContext(ctx, "Attachment blob removed",
		log.FieldOperation, log.OpCleanup,
		log.FieldRecordID, msg.RecordID,
		log.FieldAttachment, msg.Attachment)
	return nil
}

// SweepOrphans deletes blobs whose key matches no stored record. It
// backs up the cleanup queue: a lost message leaves an orphan, and the
// sweep eventually collects it.
func (w *CleanupWorker) SweepOrphans(ctx context.Context) (int, error) {
	keys, err := w.blobs.List(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("list blobs: %w", err)
	}

	records, err := w.store.ListExpenses(ctx)
	if err != nil {
		return 0, fmt.Errorf("list expenses: %w", err)
	}
	known := make(map[string]struct{}, len(records))
	for _, r := range records {
		known[r.ID] = struct{}{}
	}

	removed := 0
	for _, key := range keys {
		if _, ok := known[key]; ok {
			continue
		}
		if err := w.blobs.Delete(ctx, key); err != nil && !errors.Is(err, blob.ErrNotFound) {
			w.logger.ErrorContext(ctx, "Failed to delete orphan blob",
				"key", key, log.FieldError, err)
			continue
		}
		removed++
	}

	if removed > 0 {
		w.logger.InfoContext(ctx, "Orphan sweep finished",
			log.FieldOperation, log.OpCleanup,
			"removed", removed)
	}
	return removed, nil
}

// Run consumes the cleanup queue and sweeps orphans on a timer until the
// context is canceled.
func (w *CleanupWorker) Run(ctx context.Context, consumer Consumer, sweepInterval time.Duration) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return consumer.Consume(ctx, w.HandleCleanupMessage)
	})

	g.Go(func() error {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if _, err := w.SweepOrphans(ctx); err != nil {
					w.logger.ErrorContext(ctx, "Orphan sweep failed", log.FieldError, err)
				}
			}
		}
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

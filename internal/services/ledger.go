// Package services orchestrates expense operations across the document
// store, the blob store, the live snapshot hub and the cleanup queue.
package services

import (
	"context"
	"fmt"
	"io"

	"saldo/internal/blob"
	"saldo/internal/core"
	"saldo/internal/live"
	"saldo/internal/log"
	"saldo/internal/store"
)

// CleanupPublisher queues asynchronous removal of an attachment blob.
type CleanupPublisher interface {
	PublishAttachmentCleanup(ctx context.Context, recordID, attachment string) error
}

// Attachment is a file bundled with a create request.
type Attachment struct {
	Filename string
	Size     int64
	Content  io.Reader
}

type Ledger struct {
	store     store.ExpenseStore
	hub       *live.Hub
	blobs     blob.Store
	publisher CleanupPublisher // optional
	logger    *log.Logger
}

func NewLedger(s store.ExpenseStore, hub *live.Hub, blobs blob.Store, publisher CleanupPublisher, logger *log.Logger) *Ledger {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Ledger{
		store:     s,
		hub:       hub,
		blobs:     blobs,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentLedger),
	}
}

// ListProjected returns the display-ready projection of the full record
// set: chronologically accumulated running balances, most recent first.
func (l *Ledger) ListProjected(ctx context.Context) ([]core.BalanceLine, error) {
	records, err := l.store.ListExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return core.ProjectBalances(records), nil
}

// Create persists a new record and, when a file is bundled, uploads the
// attachment keyed by the newly assigned identity after the create
// succeeds.
func (l *Ledger) Create(ctx context.Context, e core.Expense, file *Attachment) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	e.ID = "" // the store assigns identity
	if file != nil {
		e.Attachment = file.Filename
	}

	id, err := l.store.CreateExpense(ctx, e)
	if err != nil {
		return "", fmt.Errorf("create expense: %w", err)
	}

	if file != nil {
		if err := l.blobs.Upload(ctx, id, file.Content, file.Size, nil); err != nil {
			// The record exists; the caller surfaces the upload
			// failure and the user can retry with an edit.
			l.logger.ErrorContext(ctx, "Attachment upload failed",
				log.FieldRecordID, id,
				log.FieldAttachment, file.Filename,
				log.FieldError, err)
			return id, fmt.Errorf("upload attachment: %w", err)
		}
	}

	l.logger.InfoContext(ctx, "Expense created",
		log.FieldOperation, log.OpCreate,
		log.FieldRecordID, id,
		log.FieldAmount, e.Amount.Cents,
		log.FieldOccurredOn, e.OccurredOn.String())

	l.hub.Broadcast(ctx)
	return id, nil
}

// Update replaces all fields of the record with the given identity.
func (l *Ledger) Update(ctx context.Context, e core.Expense) error {
	if e.ID == "" {
		return store.ErrNotFound
	}
	if err := e.Validate(); err != nil {
		return err
	}
	if err := l.store.UpdateExpense(ctx, e); err != nil {
		return fmt.Errorf("update expense: %w", err)
	}

	l.logger.InfoContext(ctx, "Expense updated",
		log.FieldOperation, log.OpUpdate,
		log.FieldRecordID, e.ID)

	l.hub.Broadcast(ctx)
	return nil
}

// Delete removes the record and schedules removal of its attachment
// blob. When no queue is configured the blob is deleted inline.
func (l *Ledger) Delete(ctx context.Context, id string) error {
	e, err := l.store.GetExpense(ctx, id)
	if err != nil {
		return fmt.Errorf("get expense: %w", err)
	}
	if err := l.store.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	if e.Attachment != "" {
		if l.publisher != nil {
			if err := l.publisher.PublishAttachmentCleanup(ctx, id, e.Attachment); err != nil {
				// The record is gone; the orphan sweep will pick
				// the blob up if the queue is unavailable.
				l.logger.ErrorContext(ctx, "Failed to queue attachment cleanup",
					log.FieldRecordID, id, log.FieldError, err)
			}
		} else if err := l.blobs.Delete(ctx, id); err != nil && err != blob.ErrNotFound {
			l.logger.ErrorContext(ctx, "Failed to delete attachment blob",
				log.FieldRecordID, id, log.FieldError, err)
		}
	}

	l.logger.InfoContext(ctx, "Expense deleted",
		log.FieldOperation, log.OpDelete,
		log.FieldRecordID, id)

	l.hub.Broadcast(ctx)
	return nil
}

// AttachmentURL resolves the download URL for a record's attachment.
func (l *Ledger) AttachmentURL(ctx context.Context, id string) (string, error) {
	e, err := l.store.GetExpense(ctx, id)
	if err != nil {
		return "", fmt.Errorf("get expense: %w", err)
	}
	if e.Attachment == "" {
		return "", blob.ErrNotFound
	}
	return l.blobs.URL(ctx, id)
}

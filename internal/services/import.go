package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"saldo/internal/core"
	"saldo/internal/log"
	"saldo/internal/store"
)

// RecordError ties an import failure to the position of the record in
// the imported file.
type RecordError struct {
	Index int    `json:"index"`
	Name  string `json:"name,omitempty"`
	Err   string `json:"error"`
}

// ImportReport summarizes one import run. A failed record never aborts
// the rest of the batch; each record is an independent unit of work.
type ImportReport struct {
	Created int           `json:"created"`
	Updated int           `json:"updated"`
	Failed  []RecordError `json:"failed,omitempty"`
}

// Importer reconciles externally supplied records against the store.
type Importer struct {
	store  store.ExpenseStore
	logger *log.Logger
}

func NewImporter(s store.ExpenseStore, logger *log.Logger) *Importer {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Importer{
		store:  s,
		logger: logger.WithComponent(log.ComponentImport),
	}
}

// ImportAll reads a JSON array of raw records and reconciles each one,
// strictly sequentially: a record carrying the identity of an existing
// stored record updates it in place; anything else is created fresh with
// a store-assigned identity. At most one stored record per identity,
// always.
//
// Only a file that is not valid JSON fails the whole call. Malformed or
// unwritable records are reported per record and skipped.
func (im *Importer) ImportAll(ctx context.Context, r io.Reader) (ImportReport, error) {
	var raws []core.RawRecord
	if err := json.NewDecoder(r).Decode(&raws); err != nil {
		return ImportReport{}, fmt.Errorf("decode import file: %w", err)
	}

	var report ImportReport
	for i, raw := range raws {
		created, err := im.reconcile(ctx, raw)
		if err != nil {
			report.Failed = append(report.Failed, RecordError{Index: i, Name: raw.Name, Err: err.Error()})
			im.logger.WarnContext(ctx, "Skipping record",
				log.FieldOperation, log.OpImport,
				"index", i,
				log.FieldError, err)
			continue
		}
		if created {
			report.Created++
		} else {
			report.Updated++
		}
	}

	im.logger.InfoContext(ctx, "Import finished",
		log.FieldOperation, log.OpImport,
		log.FieldBatchSize, len(raws),
		"created", report.Created,
		"updated", report.Updated,
		"failed", len(report.Failed))

	return report, nil
}

// reconcile routes one normalized record to the update or create path.
// It reports whether a new record was created.
func (im *Importer) reconcile(ctx context.Context, raw core.RawRecord) (bool, error) {
	e, err := core.Normalize(raw)
	if err != nil {
		return false, err
	}

	if e.ID != "" {
		_, err := im.store.GetExpense(ctx, e.ID)
		switch {
		case err == nil:
			if err := im.store.UpdateExpense(ctx, e); err != nil {
				return false, fmt.Errorf("update %s: %w", e.ID, err)
			}
			return false, nil
		case errors.Is(err, store.ErrNotFound):
			// Unknown identity: fall through to the create path,
			// letting the store assign a fresh one.
		default:
			return false, fmt.Errorf("look up %s: %w", e.ID, err)
		}
	}

	e.ID = ""
	if _, err := im.store.CreateExpense(ctx, e); err != nil {
		return false, fmt.Errorf("create record: %w", err)
	}
	return true, nil
}

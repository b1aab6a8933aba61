package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"saldo/internal/core"
	"saldo/internal/log"
	"saldo/internal/store"
)

// Exporter serializes the full record set for download. Export is a pure
// projection: records carry only persisted fields, so derived attributes
// like running balances never appear in the output.
type Exporter struct {
	store  store.ExpenseStore
	logger *log.Logger
}

func NewExporter(s store.ExpenseStore, logger *log.Logger) *Exporter {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Exporter{
		store:  s,
		logger: logger.WithComponent(log.ComponentExport),
	}
}

// Export writes the record set as a JSON array. The output is importable
// as-is and round-trips identities.
func (ex *Exporter) Export(ctx context.Context, w io.Writer) error {
	records, err := ex.store.ListExpenses(ctx)
	if err != nil {
		return fmt.Errorf("list expenses: %w", err)
	}
	if records == nil {
		// An empty set exports as [], not null.
		records = []core.Expense{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}

	ex.logger.InfoContext(ctx, "Export written",
		log.FieldOperation, log.OpExport,
		log.FieldBatchSize, len(records))

	return nil
}

// Filename stamps the download name with the export instant in ISO-8601
// form.
func Filename(now time.Time) string {
	return "expenses-" + now.UTC().Format(time.RFC3339) + ".json"
}

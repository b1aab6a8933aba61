package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"saldo/internal/services"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import an expense export file into the configured store",
	Long: `Import reads a JSON export file and reconciles it record by record: a
record whose identity matches a stored record updates it in place,
anything else is created fresh. Malformed records are skipped and
reported; they never abort the rest of the batch.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()

	st, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	report, err := services.NewImporter(st, logger).ImportAll(cmd.Context(), f)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "created %d, updated %d, skipped %d\n",
		report.Created, report.Updated, len(report.Failed))
	for _, rec := range report.Failed {
		fmt.Fprintf(cmd.OutOrStdout(), "  record %d (%s): %s\n", rec.Index, rec.Name, rec.Err)
	}
	return nil
}

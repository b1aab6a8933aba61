package commands

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"saldo/internal/services"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all expense records as JSON",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "-",
		"output file; '-' writes to stdout, empty picks a timestamped name")
}

func runExport(cmd *cobra.Command, _ []string) error {
	st, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	var w io.Writer = cmd.OutOrStdout()
	if exportOut != "-" {
		name := exportOut
		if name == "" {
			name = services.Filename(time.Now())
		}
		f, err := os.Create(name)
		if err != nil {
			return fmt.Errorf("create export file: %w", err)
		}
		defer f.Close()
		w = f
		fmt.Fprintf(cmd.ErrOrStderr(), "writing %s\n", name)
	}

	return services.NewExporter(st, logger).Export(cmd.Context(), w)
}

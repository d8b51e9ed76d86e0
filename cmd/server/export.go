package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"inventario/internal/database"
	"inventario/internal/inventory"
	"inventario/internal/models"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func newExportCmd(v *viper.Viper) *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the whole product table as CSV or XLSX",
		Example: "  inventario export --format csv --out inventario.csv\n" +
			"  inventario export --format xlsx --out -",
		RunE: func(cmd *cobra.Command, args []string) error {
			write, err := exportWriter(format)
			if err != nil {
				return err
			}

			_, log, db, err := bootstrap(v)
			if err != nil {
				return err
			}
			defer log.Sync()
			defer database.Close(db)

			products, err := inventory.NewStore(db, log).List(context.Background(), inventory.Filter{})
			if err != nil {
				return err
			}

			if err := writeExport(cmd.OutOrStdout(), out, write, products); err != nil {
				return fmt.Errorf("export: %w", err)
			}
			log.Info("export written", zap.String("format", format), zap.String("out", out), zap.Int("rows", len(products)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "csv", "csv or xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, - for stdout (default inventario.<format>)")
	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		if out == "" {
			out = defaultExportName(format)
		}
	}
	return cmd
}

func defaultExportName(format string) string {
	if format == "xlsx" || format == "excel" {
		return inventory.XLSXFilename
	}
	return inventory.CSVFilename
}

type exportFunc func(io.Writer, []models.Product) error

// writeExport writes to stdout when out is "-", otherwise to the file at out.
// The file's Close error is returned since a failed flush surfaces there.
func writeExport(stdout io.Writer, out string, write exportFunc, products []models.Product) error {
	if out == "-" {
		return write(stdout, products)
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := write(f, products); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func exportWriter(format string) (exportFunc, error) {
	switch format {
	case "csv":
		return inventory.WriteCSV, nil
	case "xlsx", "excel":
		return inventory.WriteXLSX, nil
	default:
		return nil, fmt.Errorf("export: unknown format %q (csv, xlsx)", format)
	}
}

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/llmcalc/llmcalc/calc"
	"github.com/llmcalc/llmcalc/calc/catalog"
)

var (
	catalogKind string // hardware or models
	catalogOut  string // Output path; empty writes to stdout
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and exchange the hardware and model catalogs",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the known hardware and models",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		store := loadCatalog()

		if err := renderHardwareList(os.Stdout, store.ListHardware(), outputFormat); err != nil {
			logrus.Fatalf("%v", err)
		}
		if outputFormat == formatTable {
			fmt.Println()
		}
		if err := renderModelList(os.Stdout, store.ListModels(), outputFormat); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

var catalogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a catalog as CSV",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		store := loadCatalog()

		out, closer, err := openOutput(catalogOut)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		defer closer()

		switch catalogKind {
		case "hardware":
			err = catalog.ExportHardwareCSV(out, store.ListHardware())
		case "models":
			err = catalog.ExportModelsCSV(out, store.ListModels())
		default:
			logrus.Fatalf("unknown catalog kind %q (valid: hardware, models)", catalogKind)
		}
		if err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <csv-file>",
	Short: "Convert a CSV catalog into a JSON override file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		f, err := os.Open(args[0])
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		defer f.Close()

		var payload any
		var count int
		switch catalogKind {
		case "hardware":
			records, err := catalog.ImportHardwareCSV(f)
			if err != nil {
				logrus.Fatalf("%v", err)
			}
			byID := make(map[string]calc.Hardware, len(records))
			for _, h := range records {
				byID[h.ID] = h
			}
			payload, count = byID, len(records)
		case "models":
			records, err := catalog.ImportModelsCSV(f)
			if err != nil {
				logrus.Fatalf("%v", err)
			}
			byID := make(map[string]calc.Model, len(records))
			for _, m := range records {
				byID[m.ID] = m
			}
			payload, count = byID, len(records)
		default:
			logrus.Fatalf("unknown catalog kind %q (valid: hardware, models)", catalogKind)
		}

		out, closer, err := openOutput(catalogOut)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		defer closer()

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(payload); err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Infof("Imported %d %s records", count, catalogKind)
	},
}

// openOutput returns the writer for path, or stdout when path is empty. The
// returned closer is a no-op for stdout.
func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create %q: %w", path, err)
	}
	return f, func() { f.Close() }, nil
}

func init() {
	catalogExportCmd.Flags().StringVar(&catalogKind, "kind", "hardware", "Catalog to export (hardware or models)")
	catalogExportCmd.Flags().StringVar(&catalogOut, "out", "", "Output file (default stdout)")
	catalogImportCmd.Flags().StringVar(&catalogKind, "kind", "hardware", "Catalog to import (hardware or models)")
	catalogImportCmd.Flags().StringVar(&catalogOut, "out", "", "Output file (default stdout)")

	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogExportCmd)
	catalogCmd.AddCommand(catalogImportCmd)
	rootCmd.AddCommand(catalogCmd)
}

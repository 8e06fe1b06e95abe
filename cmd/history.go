package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/llmcalc/llmcalc/calc/history"
)

var historyOut string // Output path for export; empty writes to stdout

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect past calculations",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded calculations, newest first",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		store, err := history.Open(historyPath())
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := renderHistory(os.Stdout, store.Entries(), outputFormat); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the history as CSV",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		store, err := history.Open(historyPath())
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		out, closer, err := openOutput(historyOut)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		defer closer()
		if err := store.ExportCSV(out); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded calculations",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		store, err := history.Open(historyPath())
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		n := store.Len()
		if err := store.Clear(); err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Infof("Cleared %d history entries", n)
	},
}

func init() {
	historyExportCmd.Flags().StringVar(&historyOut, "out", "", "Output file (default stdout)")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

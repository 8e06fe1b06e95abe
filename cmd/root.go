package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/llmcalc/llmcalc/calc"
	"github.com/llmcalc/llmcalc/calc/api"
	"github.com/llmcalc/llmcalc/calc/catalog"
	"github.com/llmcalc/llmcalc/calc/history"
)

var (
	logLevel     string // Log verbosity level
	outputFormat string // Output rendering (table, json, csv)
	remoteURL    string // Base URL of a calculation server; empty runs in process
	hardwareFile string // Extra hardware records, JSON keyed by id
	modelFile    string // Extra model records, JSON keyed by id
	historyFile  string // History location override; empty uses ~/.llmcalc/history.json
	noHistory    bool   // Skip recording results
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "llmcalc",
	Short: "Analytic efficiency calculator for LLM inference deployments",
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "table", "Output format (table, json, csv)")
	rootCmd.PersistentFlags().StringVar(&remoteURL, "remote", "", "Run calculations against a server at this base URL")
	rootCmd.PersistentFlags().StringVar(&hardwareFile, "hardware-file", "", "JSON file with hardware records merged over the built-ins")
	rootCmd.PersistentFlags().StringVar(&modelFile, "model-file", "", "JSON file with model records merged over the built-ins")
	rootCmd.PersistentFlags().StringVar(&historyFile, "history-file", "", "History file (default ~/.llmcalc/history.json)")
	rootCmd.PersistentFlags().BoolVar(&noHistory, "no-history", false, "Do not record results in the history file")
}

// setupLogging applies the --log flag before a command runs.
func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// loadCatalog builds the catalog with any file overrides applied.
func loadCatalog() *catalog.Store {
	store := catalog.NewStore()
	if hardwareFile != "" {
		if err := store.LoadHardwareFile(hardwareFile); err != nil {
			logrus.Fatalf("load hardware file: %v", err)
		}
	}
	if modelFile != "" {
		if err := store.LoadModelFile(modelFile); err != nil {
			logrus.Fatalf("load model file: %v", err)
		}
	}
	return store
}

// newCalculator picks in-process or remote execution from --remote.
func newCalculator() calc.Calculator {
	if remoteURL != "" {
		return api.NewClient(remoteURL)
	}
	return calc.Local{}
}

func historyPath() string {
	if historyFile != "" {
		return historyFile
	}
	return history.DefaultPath()
}

// recordHistory appends an entry, warning instead of failing the command.
func recordHistory(e history.Entry) {
	if noHistory {
		return
	}
	store, err := history.Open(historyPath())
	if err != nil {
		logrus.Warnf("history unavailable: %v", err)
		return
	}
	if err := store.Append(e); err != nil {
		logrus.Warnf("record history: %v", err)
	}
}

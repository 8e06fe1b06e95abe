package cmd

import (
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/llmcalc/llmcalc/calc/api"
)

var serveAddr string // Listen address for the HTTP API

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the calculation API server",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		store := loadCatalog()
		srv := api.NewServer(store)

		mux := http.NewServeMux()
		srv.RegisterRoutes(mux)

		logrus.Infof("Serving calculation API on %s", serveAddr)
		if err := http.ListenAndServe(serveAddr, mux); err != nil {
			logrus.Fatalf("Server failed: %v", err)
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")

	rootCmd.AddCommand(serveCmd)
}

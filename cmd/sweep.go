package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/llmcalc/llmcalc/calc/sweep"
)

var (
	sweepFile       string   // YAML scenario file; empty builds the spec from flags
	sweepHardware   string   // Hardware catalog id
	sweepModel      string   // Model catalog id
	sweepGPUs       []int    // GPU-count axis
	sweepPrecisions []string // Precision axis
	sweepContext    int      // Prompt tokens per request
	sweepGenerated  int      // Generated tokens per request
	sweepBatch      int      // Concurrent requests in the running batch
	sweepTTFT       float64  // Measured time to first token (ms)
	sweepTPOT       float64  // Measured time per output token (ms)
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Compare deployment options across a gpu-count x precision grid",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		var spec *sweep.Spec
		if sweepFile != "" {
			loaded, err := sweep.Load(sweepFile)
			if err != nil {
				logrus.Fatalf("%v", err)
			}
			spec = loaded
		} else {
			spec = &sweep.Spec{
				Hardware: sweepHardware,
				Model:    sweepModel,
				Workload: sweep.Workload{
					ContextLength:   sweepContext,
					GeneratedLength: sweepGenerated,
					BatchSize:       sweepBatch,
					TTFTMillis:      sweepTTFT,
					TPOTMillis:      sweepTPOT,
				},
				GPUCounts:  sweepGPUs,
				Precisions: sweepPrecisions,
			}
		}

		store := loadCatalog()
		hw, err := store.Hardware(spec.Hardware)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		m, err := store.Model(spec.Model)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		outcomes, err := sweep.Run(cmd.Context(), newCalculator(), spec, hw, m)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		for _, o := range outcomes {
			if o.Err != nil {
				logrus.Warnf("scenario %s failed: %v", o.Name, o.Err)
			}
		}

		if err := renderSweep(os.Stdout, outcomes, outputFormat); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

func init() {
	sweepCmd.Flags().StringVar(&sweepFile, "scenario", "", "YAML sweep spec (overrides the flag-built grid)")
	sweepCmd.Flags().StringVar(&sweepHardware, "hardware", "a100-80gb", "Hardware id from the catalog")
	sweepCmd.Flags().StringVar(&sweepModel, "model", "", "Model id from the catalog")
	sweepCmd.Flags().IntSliceVar(&sweepGPUs, "gpus", []int{1, 2, 4, 8}, "Comma-separated GPU counts to sweep")
	sweepCmd.Flags().StringSliceVar(&sweepPrecisions, "precisions", []string{"fp16", "int8"}, "Comma-separated precisions to sweep")
	sweepCmd.Flags().IntVar(&sweepContext, "context", 2048, "Prompt tokens per request")
	sweepCmd.Flags().IntVar(&sweepGenerated, "generated", 256, "Generated tokens per request")
	sweepCmd.Flags().IntVar(&sweepBatch, "batch", 1, "Concurrent requests in the running batch")
	sweepCmd.Flags().Float64Var(&sweepTTFT, "ttft", 350, "Measured time to first token (ms)")
	sweepCmd.Flags().Float64Var(&sweepTPOT, "tpot", 40, "Measured time per output token (ms)")

	rootCmd.AddCommand(sweepCmd)
}

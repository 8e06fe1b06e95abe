package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/llmcalc/llmcalc/calc"
	"github.com/llmcalc/llmcalc/calc/history"
)

var (
	utilHardware  string  // Hardware catalog id
	utilModel     string  // Model catalog id
	utilPrecision string  // Uniform precision for both compute paths
	utilAttnPrec  string  // Attention-path precision override
	utilFFNPrec   string  // FFN-path precision override
	utilGPUs      int     // Tensor-parallel fleet size
	utilContext   int     // Prompt tokens per request
	utilGenerated int     // Generated tokens per request
	utilBatch     int     // Concurrent requests in the running batch
	utilTTFT      float64 // Measured time to first token (ms)
	utilTPOT      float64 // Measured time per output token (ms)
)

var utilizationCmd = &cobra.Command{
	Use:   "utilization",
	Short: "Estimate MFU and memory-bandwidth utilization for a deployment",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		store := loadCatalog()
		hw, err := store.Hardware(utilHardware)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		m, err := store.Model(utilModel)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		attnSpelling, ffnSpelling := utilAttnPrec, utilFFNPrec
		if attnSpelling == "" {
			attnSpelling = utilPrecision
		}
		if ffnSpelling == "" {
			ffnSpelling = utilPrecision
		}
		attnPrec, err := calc.ParsePrecision(attnSpelling)
		if err != nil {
			logrus.Fatalf("attention precision: %v", err)
		}
		ffnPrec, err := calc.ParsePrecision(ffnSpelling)
		if err != nil {
			logrus.Fatalf("ffn precision: %v", err)
		}

		in := calc.CalculationInput{
			AttentionPrecision: attnPrec,
			FFNPrecision:       ffnPrec,
			GPUCount:           utilGPUs,
			ContextLength:      utilContext,
			GeneratedLength:    utilGenerated,
			BatchSize:          utilBatch,
			TTFTMillis:         utilTTFT,
			TPOTMillis:         utilTPOT,
		}

		res, err := newCalculator().Utilization(cmd.Context(), in, hw, m)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		if err := renderUtilization(os.Stdout, res, outputFormat); err != nil {
			logrus.Fatalf("%v", err)
		}
		recordHistory(history.FromUtilization(res))
	},
}

func init() {
	utilizationCmd.Flags().StringVar(&utilHardware, "hardware", "a100-80gb", "Hardware id from the catalog")
	utilizationCmd.Flags().StringVar(&utilModel, "model", "", "Model id from the catalog")
	utilizationCmd.Flags().StringVar(&utilPrecision, "precision", "fp16", "Precision for both compute paths (fp16, bf16, int8, fp32)")
	utilizationCmd.Flags().StringVar(&utilAttnPrec, "attention-precision", "", "Attention-path precision (defaults to --precision)")
	utilizationCmd.Flags().StringVar(&utilFFNPrec, "ffn-precision", "", "FFN-path precision (defaults to --precision)")
	utilizationCmd.Flags().IntVar(&utilGPUs, "gpus", 1, "GPU count (1, 2, 4, 8, 16, 32)")
	utilizationCmd.Flags().IntVar(&utilContext, "context", 2048, "Prompt tokens per request")
	utilizationCmd.Flags().IntVar(&utilGenerated, "generated", 256, "Generated tokens per request")
	utilizationCmd.Flags().IntVar(&utilBatch, "batch", 1, "Concurrent requests in the running batch")
	utilizationCmd.Flags().Float64Var(&utilTTFT, "ttft", 350, "Measured time to first token (ms)")
	utilizationCmd.Flags().Float64Var(&utilTPOT, "tpot", 40, "Measured time per output token (ms)")
	_ = utilizationCmd.MarkFlagRequired("model")

	rootCmd.AddCommand(utilizationCmd)
}

package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/llmcalc/llmcalc/calc"
	"github.com/llmcalc/llmcalc/calc/history"
)

var (
	concHardware    string  // Hardware catalog id
	concModel       string  // Model catalog id
	concPrecision   string  // Weight and KV precision
	concGPUs        int     // Tensor-parallel fleet size
	concContext     int     // Full context length reserved per request
	concOverhead    float64 // Serving framework footprint (GB)
	concMemUtil     float64 // Fraction of device memory the engine may claim
	concReserve     float64 // Explicit activation reserve (GB); negative derives from --gpu-memory-utilization
	concPagedFactor float64 // Effective KV packing gain of paged attention
)

var concurrencyCmd = &cobra.Command{
	Use:   "concurrency",
	Short: "Estimate how many requests fit in GPU memory at once",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		store := loadCatalog()
		hw, err := store.Hardware(concHardware)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		m, err := store.Model(concModel)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		p, err := calc.ParsePrecision(concPrecision)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		in := calc.NewConcurrencyInput(p, concGPUs, concContext)
		in.FrameworkOverheadGB = concOverhead
		in.GPUMemoryUtilization = concMemUtil
		in.PagedAttentionFactor = concPagedFactor
		if concReserve >= 0 {
			reserve := concReserve
			in.ActivationReserveGB = &reserve
		}

		res, err := newCalculator().Concurrency(cmd.Context(), in, hw, m)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		if err := renderConcurrency(os.Stdout, res, outputFormat); err != nil {
			logrus.Fatalf("%v", err)
		}
		recordHistory(history.FromConcurrency(res))
	},
}

func init() {
	concurrencyCmd.Flags().StringVar(&concHardware, "hardware", "a100-80gb", "Hardware id from the catalog")
	concurrencyCmd.Flags().StringVar(&concModel, "model", "", "Model id from the catalog")
	concurrencyCmd.Flags().StringVar(&concPrecision, "precision", "fp16", "Weight and KV precision (fp16, bf16, int8, fp32)")
	concurrencyCmd.Flags().IntVar(&concGPUs, "gpus", 1, "GPU count (1, 2, 4, 8, 16, 32)")
	concurrencyCmd.Flags().IntVar(&concContext, "context", 2048, "Context length reserved per request")
	concurrencyCmd.Flags().Float64Var(&concOverhead, "framework-overhead", calc.DefaultFrameworkOverheadGB, "Serving framework footprint in GB")
	concurrencyCmd.Flags().Float64Var(&concMemUtil, "gpu-memory-utilization", calc.DefaultGPUMemoryUtilization, "Fraction of device memory the engine may claim")
	concurrencyCmd.Flags().Float64Var(&concReserve, "activation-reserve", -1, "Explicit activation reserve in GB (overrides --gpu-memory-utilization)")
	concurrencyCmd.Flags().Float64Var(&concPagedFactor, "paged-factor", calc.DefaultPagedAttentionFactor, "Effective KV packing gain of paged attention")
	_ = concurrencyCmd.MarkFlagRequired("model")

	rootCmd.AddCommand(concurrencyCmd)
}

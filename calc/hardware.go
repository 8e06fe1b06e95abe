package calc

import (
	"fmt"
	"math"
	"strings"
)

// bytesPerGB converts byte counts to the binary gigabytes used everywhere in
// this package (matching how device memory is marketed and reported).
const bytesPerGB = 1 << 30

// Hardware describes one accelerator: datasheet dense peak throughput per
// precision, device memory, and HBM bandwidth. Records are plain values and
// never mutate during a calculation.
type Hardware struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	FP16TFLOPS float64 `json:"fp16_tflops"`
	BF16TFLOPS float64 `json:"bf16_tflops"`
	INT8TFLOPS float64 `json:"int8_tflops"`
	FP32TFLOPS float64 `json:"fp32_tflops"`

	MemoryGB     float64 `json:"memory_gb"`
	BandwidthTBs float64 `json:"bandwidth_tb_s"`
}

// PeakTFLOPS returns the single-device peak for the given precision.
// Panics outside the enum.
func (h Hardware) PeakTFLOPS(p Precision) float64 {
	switch p {
	case PrecisionFP16:
		return h.FP16TFLOPS
	case PrecisionBF16:
		return h.BF16TFLOPS
	case PrecisionINT8:
		return h.INT8TFLOPS
	case PrecisionFP32:
		return h.FP32TFLOPS
	}
	panic(fmt.Sprintf("unknown precision %q", string(p)))
}

// invalidPositive reports whether v cannot serve as a positive physical
// quantity (v <= 0, NaN, or Inf).
func invalidPositive(v float64) bool {
	return v <= 0 || math.IsNaN(v) || math.IsInf(v, 0)
}

// invalidNonNegative reports whether v cannot serve as a zero-or-more
// quantity.
func invalidNonNegative(v float64) bool {
	return v < 0 || math.IsNaN(v) || math.IsInf(v, 0)
}

// Validate returns an error listing all invalid fields, or nil if valid.
func (h Hardware) Validate() error {
	var problems []string

	if h.ID == "" {
		problems = append(problems, "ID must not be empty")
	}
	if invalidPositive(h.FP16TFLOPS) {
		problems = append(problems, fmt.Sprintf("FP16TFLOPS must be a valid positive number, got %v", h.FP16TFLOPS))
	}
	if invalidPositive(h.BF16TFLOPS) {
		problems = append(problems, fmt.Sprintf("BF16TFLOPS must be a valid positive number, got %v", h.BF16TFLOPS))
	}
	if invalidPositive(h.INT8TFLOPS) {
		problems = append(problems, fmt.Sprintf("INT8TFLOPS must be a valid positive number, got %v", h.INT8TFLOPS))
	}
	if invalidPositive(h.FP32TFLOPS) {
		problems = append(problems, fmt.Sprintf("FP32TFLOPS must be a valid positive number, got %v", h.FP32TFLOPS))
	}
	if invalidPositive(h.MemoryGB) {
		problems = append(problems, fmt.Sprintf("MemoryGB must be a valid positive number, got %v", h.MemoryGB))
	}
	if invalidPositive(h.BandwidthTBs) {
		problems = append(problems, fmt.Sprintf("BandwidthTBs must be a valid positive number, got %v", h.BandwidthTBs))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid hardware %q: %s", h.ID, strings.Join(problems, "; "))
	}
	return nil
}

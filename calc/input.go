package calc

import (
	"fmt"
	"strings"
)

// Serving-stack defaults for the concurrency estimate.
const (
	// DefaultFrameworkOverheadGB covers the serving runtime itself: CUDA
	// context, compiled graphs, NCCL buffers.
	DefaultFrameworkOverheadGB = 2.0
	// DefaultGPUMemoryUtilization mirrors the usual serving-engine default
	// for the fraction of device memory the engine may claim.
	DefaultGPUMemoryUtilization = 0.9
	// DefaultPagedAttentionFactor is the effective KV packing gain of block
	// paging over contiguous full-context allocation.
	DefaultPagedAttentionFactor = 2.3
)

// validGPUCounts holds the supported tensor-parallel fleet sizes.
var validGPUCounts = map[int]bool{1: true, 2: true, 4: true, 8: true, 16: true, 32: true}

// CalculationInput is the workload half of a utilization calculation. The
// attention and FFN paths always carry their own precision; use
// WithPrecision for the common uniform case.
type CalculationInput struct {
	AttentionPrecision Precision `json:"attention_precision"`
	FFNPrecision       Precision `json:"ffn_precision"`

	GPUCount        int `json:"gpu_count"`
	ContextLength   int `json:"context_length"`
	GeneratedLength int `json:"generated_length"`
	BatchSize       int `json:"batch_size"`

	TTFTMillis float64 `json:"ttft_ms"`
	TPOTMillis float64 `json:"tpot_ms"`
}

// WithPrecision returns a copy of in running both the attention and FFN
// paths at p.
func (in CalculationInput) WithPrecision(p Precision) CalculationInput {
	in.AttentionPrecision = p
	in.FFNPrecision = p
	return in
}

// Validate returns an error listing all invalid fields, or nil if valid.
func (in CalculationInput) Validate() error {
	var problems []string

	if !in.AttentionPrecision.valid() {
		problems = append(problems, fmt.Sprintf("attention_precision %q is not one of fp16, bf16, int8, fp32", string(in.AttentionPrecision)))
	}
	if !in.FFNPrecision.valid() {
		problems = append(problems, fmt.Sprintf("ffn_precision %q is not one of fp16, bf16, int8, fp32", string(in.FFNPrecision)))
	}
	if !validGPUCounts[in.GPUCount] {
		problems = append(problems, fmt.Sprintf("gpu_count must be one of 1, 2, 4, 8, 16, 32, got %d", in.GPUCount))
	}
	if in.ContextLength < 1 {
		problems = append(problems, fmt.Sprintf("context_length must be >= 1, got %d", in.ContextLength))
	}
	if in.GeneratedLength < 1 {
		problems = append(problems, fmt.Sprintf("generated_length must be >= 1, got %d", in.GeneratedLength))
	}
	if in.BatchSize < 1 {
		problems = append(problems, fmt.Sprintf("batch_size must be >= 1, got %d", in.BatchSize))
	}
	if invalidPositive(in.TTFTMillis) {
		problems = append(problems, fmt.Sprintf("ttft_ms must be a valid positive number, got %v", in.TTFTMillis))
	}
	if invalidPositive(in.TPOTMillis) {
		problems = append(problems, fmt.Sprintf("tpot_ms must be a valid positive number, got %v", in.TPOTMillis))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid calculation input: %s", strings.Join(problems, "; "))
	}
	return nil
}

// ConcurrencyInput configures a max-concurrency estimate. An explicit
// ActivationReserveGB overrides the reserve otherwise derived from
// GPUMemoryUtilization.
type ConcurrencyInput struct {
	Precision     Precision `json:"precision"`
	GPUCount      int       `json:"gpu_count"`
	ContextLength int       `json:"context_length"`

	FrameworkOverheadGB  float64  `json:"framework_overhead_gb"`
	GPUMemoryUtilization float64  `json:"gpu_memory_utilization"`
	ActivationReserveGB  *float64 `json:"activation_reserve_gb,omitempty"`

	PagedAttentionFactor float64 `json:"paged_attention_factor"`
}

// NewConcurrencyInput returns an input with the serving-stack defaults
// filled in.
func NewConcurrencyInput(p Precision, gpuCount, contextLen int) ConcurrencyInput {
	return ConcurrencyInput{
		Precision:            p,
		GPUCount:             gpuCount,
		ContextLength:        contextLen,
		FrameworkOverheadGB:  DefaultFrameworkOverheadGB,
		GPUMemoryUtilization: DefaultGPUMemoryUtilization,
		PagedAttentionFactor: DefaultPagedAttentionFactor,
	}
}

// Validate returns an error listing all invalid fields, or nil if valid.
func (in ConcurrencyInput) Validate() error {
	var problems []string

	if !in.Precision.valid() {
		problems = append(problems, fmt.Sprintf("precision %q is not one of fp16, bf16, int8, fp32", string(in.Precision)))
	}
	if !validGPUCounts[in.GPUCount] {
		problems = append(problems, fmt.Sprintf("gpu_count must be one of 1, 2, 4, 8, 16, 32, got %d", in.GPUCount))
	}
	if in.ContextLength < 1 {
		problems = append(problems, fmt.Sprintf("context_length must be >= 1, got %d", in.ContextLength))
	}
	if invalidNonNegative(in.FrameworkOverheadGB) {
		problems = append(problems, fmt.Sprintf("framework_overhead_gb must be >= 0, got %v", in.FrameworkOverheadGB))
	}
	if invalidPositive(in.GPUMemoryUtilization) || in.GPUMemoryUtilization > 1 {
		problems = append(problems, fmt.Sprintf("gpu_memory_utilization must be in (0, 1], got %v", in.GPUMemoryUtilization))
	}
	if in.ActivationReserveGB != nil && invalidNonNegative(*in.ActivationReserveGB) {
		problems = append(problems, fmt.Sprintf("activation_reserve_gb must be >= 0, got %v", *in.ActivationReserveGB))
	}
	if invalidPositive(in.PagedAttentionFactor) {
		problems = append(problems, fmt.Sprintf("paged_attention_factor must be a valid positive number, got %v", in.PagedAttentionFactor))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid concurrency input: %s", strings.Join(problems, "; "))
	}
	return nil
}

package calc

import (
	"time"

	"github.com/google/uuid"
)

// Bottleneck classifies which resource limits a deployment.
type Bottleneck string

const (
	BottleneckCompute  Bottleneck = "compute"
	BottleneckMemory   Bottleneck = "memory"
	BottleneckBalanced Bottleneck = "balanced"
)

// PhaseUtilization carries the efficiency figures of one phase.
type PhaseUtilization struct {
	MFUPercent       float64 `json:"mfu_percent"`
	BandwidthPercent float64 `json:"bandwidth_percent"`
}

// CalculationResult is the complete outcome of a utilization calculation:
// the echoed input and record ids, the compute and bandwidth figures
// (aggregate and per phase), the sizing that produced them, and the derived
// bottleneck with its suggestions.
type CalculationResult struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`

	HardwareID string           `json:"hardware_id"`
	ModelID    string           `json:"model_id"`
	Attention  AttentionKind    `json:"attention_kind"`
	Input      CalculationInput `json:"input"`

	ActualTFLOPS float64 `json:"actual_tflops"`
	PeakTFLOPS   float64 `json:"peak_tflops"`
	MFUPercent   float64 `json:"mfu_percent"`

	RequiredBandwidthGBs float64 `json:"required_bandwidth_gb_s"`
	HardwareBandwidthGBs float64 `json:"hardware_bandwidth_gb_s"`
	BandwidthPercent     float64 `json:"bandwidth_percent"`

	Prefill PhaseUtilization `json:"prefill"`
	Decode  PhaseUtilization `json:"decode"`

	ModelMemoryGB    float64 `json:"model_memory_gb"`
	KVCacheGB        float64 `json:"kv_cache_gb"`
	MemoryPerTokenGB float64 `json:"memory_per_token_gb"`

	Flops FlopsBreakdown `json:"flops"`

	Bottleneck  Bottleneck `json:"bottleneck"`
	Suggestions []string   `json:"suggestions"`
}

// MemoryBreakdown itemizes device memory for a concurrency estimate.
// TotalGB sums the components; when the fixed footprint alone exceeds the
// device memory, the KV pool is zero and TotalGB exceeds the device total
// by the oversubscription.
type MemoryBreakdown struct {
	WeightsGB           float64 `json:"weights_gb"`
	FrameworkOverheadGB float64 `json:"framework_overhead_gb"`
	ActivationReserveGB float64 `json:"activation_reserve_gb"`
	KVCachePoolGB       float64 `json:"kv_cache_pool_gb"`
	TotalGB             float64 `json:"total_gb"`
}

// ConcurrencyResult is the complete outcome of a max-concurrency estimate.
type ConcurrencyResult struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`

	HardwareID string           `json:"hardware_id"`
	ModelID    string           `json:"model_id"`
	Attention  AttentionKind    `json:"attention_kind"`
	Input      ConcurrencyInput `json:"input"`

	TotalMemoryGB float64         `json:"total_memory_gb"`
	Memory        MemoryBreakdown `json:"memory"`

	PerRequestKVGB         float64 `json:"per_request_kv_gb"`
	PerRequestActivationGB float64 `json:"per_request_activation_gb"`

	MaxConcurrency      int `json:"max_concurrency"`
	MaxConcurrencyPaged int `json:"max_concurrency_paged"`
}

func newResultID() string {
	return uuid.NewString()
}

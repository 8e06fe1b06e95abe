package calc

import (
	"fmt"
	"math"
	"time"
)

// ComputeMaxConcurrency estimates how many requests fit in device memory at
// full context once weights, framework overhead, and the activation reserve
// are set aside. Oversized fixed footprints yield zero concurrency, never an
// error. Pure function like ComputeUtilization.
func ComputeMaxConcurrency(in ConcurrencyInput, hw Hardware, m Model) (*ConcurrencyResult, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("compute max concurrency: %w", err)
	}
	if err := hw.Validate(); err != nil {
		return nil, fmt.Errorf("compute max concurrency: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("compute max concurrency: %w", err)
	}
	if m.MaxPositions > 0 && in.ContextLength > m.MaxPositions {
		return nil, fmt.Errorf("compute max concurrency: context %d tokens exceeds model %q max positions %d",
			in.ContextLength, m.ID, m.MaxPositions)
	}

	totalGB := hw.MemoryGB * float64(in.GPUCount)
	weightsGB := m.WeightMemoryGB(in.Precision)

	reserveGB := (1 - in.GPUMemoryUtilization) * totalGB
	if in.ActivationReserveGB != nil {
		reserveGB = *in.ActivationReserveGB
	}

	fixedGB := weightsGB + in.FrameworkOverheadGB + reserveGB
	poolGB := math.Max(0, totalGB-fixedGB)

	attn := ResolveAttention(m)
	perRequestKVGB := attn.KVCacheGB(in.ContextLength, in.Precision)
	perRequestActGB := 2 * float64(m.NumLayers) * float64(m.HiddenDim) * in.Precision.BytesPerElement() / bytesPerGB

	res := &ConcurrencyResult{
		ID:         newResultID(),
		Timestamp:  time.Now().UTC(),
		HardwareID: hw.ID,
		ModelID:    m.ID,
		Attention:  attn.Kind,
		Input:      in,

		TotalMemoryGB: totalGB,
		Memory: MemoryBreakdown{
			WeightsGB:           weightsGB,
			FrameworkOverheadGB: in.FrameworkOverheadGB,
			ActivationReserveGB: reserveGB,
			KVCachePoolGB:       poolGB,
			TotalGB:             weightsGB + in.FrameworkOverheadGB + reserveGB + poolGB,
		},
		PerRequestKVGB:         perRequestKVGB,
		PerRequestActivationGB: perRequestActGB,
	}
	res.MaxConcurrency = fitRequests(poolGB, perRequestKVGB, perRequestActGB)
	res.MaxConcurrencyPaged = ApplyPagedAttentionFactor(res, in.PagedAttentionFactor)
	return res, nil
}

// fitRequests floors the pool over the per-request footprint, guarding the
// degenerate zero-footprint and empty-pool cases.
func fitRequests(poolGB, kvGB, actGB float64) int {
	footprint := kvGB + actGB
	if footprint <= 0 || poolGB <= 0 {
		return 0
	}
	return int(math.Floor(poolGB / footprint))
}

// ApplyPagedAttentionFactor recomputes the fit with the per-request KV
// footprint shrunk by the paged-attention block-efficiency factor. It reads
// only the sizing fields of res and leaves res unmodified; factors at or
// below zero read as no paging gain.
func ApplyPagedAttentionFactor(res *ConcurrencyResult, factor float64) int {
	if !(factor > 0) {
		factor = 1
	}
	return fitRequests(res.Memory.KVCachePoolGB, res.PerRequestKVGB/factor, res.PerRequestActivationGB)
}

package calc

import (
	"fmt"
	"math"
	"time"
)

// bottleneckHysteresis keeps near-equal compute and memory intensities
// classified as balanced instead of flapping between the two labels.
const bottleneckHysteresis = 1.2

// clampPercent bounds a ratio-derived percentage to [0, 100].
func clampPercent(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return math.Min(v, 100)
}

// ComputeUtilization estimates how efficiently a deployment uses its
// hardware: achieved model FLOPs against the precision-matched peak of the
// fleet, and the decode-side memory traffic against aggregate HBM bandwidth.
// Pure function over value inputs; safe to call concurrently.
func ComputeUtilization(in CalculationInput, hw Hardware, m Model) (*CalculationResult, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("compute utilization: %w", err)
	}
	if err := hw.Validate(); err != nil {
		return nil, fmt.Errorf("compute utilization: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("compute utilization: %w", err)
	}
	if m.MaxPositions > 0 && in.ContextLength+in.GeneratedLength > m.MaxPositions {
		return nil, fmt.Errorf("compute utilization: context %d + generated %d tokens exceed model %q max positions %d",
			in.ContextLength, in.GeneratedLength, m.ID, m.MaxPositions)
	}

	flops := computeFlops(in, m)

	prefillSeconds := in.TTFTMillis / 1000
	decodeSeconds := in.TPOTMillis * float64(in.GeneratedLength) / 1000
	totalSeconds := prefillSeconds + decodeSeconds

	peak := hw.PeakTFLOPS(in.AttentionPrecision) * float64(in.GPUCount)
	actual := flops.Total() / 1e12 / totalSeconds
	mfu := clampPercent(actual / peak * 100)

	attn := ResolveAttention(m)
	weightPrecision := in.AttentionPrecision.Wider(in.FFNPrecision)
	modelGB := m.WeightMemoryGB(weightPrecision)
	kvGB := attn.KVCacheGB(in.ContextLength, in.AttentionPrecision)

	// Each decode step streams the weights plus its share of the KV cache.
	perTokenGB := modelGB + kvGB/float64(in.GeneratedLength)
	requiredBW := perTokenGB / (in.TPOTMillis / 1000)
	hardwareBW := hw.BandwidthTBs * float64(in.GPUCount) * 1000
	bwPct := clampPercent(requiredBW / hardwareBW * 100)

	prefill := PhaseUtilization{
		MFUPercent:       clampPercent(flops.PrefillTotal() / 1e12 / prefillSeconds / peak * 100),
		BandwidthPercent: clampPercent(modelGB / prefillSeconds / hardwareBW * 100),
	}
	decode := PhaseUtilization{
		MFUPercent:       clampPercent(flops.DecodeTotal() / 1e12 / decodeSeconds / peak * 100),
		BandwidthPercent: bwPct,
	}

	res := &CalculationResult{
		ID:         newResultID(),
		Timestamp:  time.Now().UTC(),
		HardwareID: hw.ID,
		ModelID:    m.ID,
		Attention:  attn.Kind,
		Input:      in,

		ActualTFLOPS: actual,
		PeakTFLOPS:   peak,
		MFUPercent:   mfu,

		RequiredBandwidthGBs: requiredBW,
		HardwareBandwidthGBs: hardwareBW,
		BandwidthPercent:     bwPct,

		Prefill: prefill,
		Decode:  decode,

		ModelMemoryGB:    modelGB,
		KVCacheGB:        kvGB,
		MemoryPerTokenGB: perTokenGB,

		Flops:      flops,
		Bottleneck: classifyBottleneck(mfu, bwPct),
	}
	res.Suggestions = suggestionsFor(res)
	return res, nil
}

func classifyBottleneck(mfuPct, bwPct float64) Bottleneck {
	switch {
	case mfuPct > bottleneckHysteresis*bwPct:
		return BottleneckCompute
	case bwPct > bottleneckHysteresis*mfuPct:
		return BottleneckMemory
	default:
		return BottleneckBalanced
	}
}

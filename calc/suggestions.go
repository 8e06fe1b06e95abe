package calc

// Suggestion identifiers are stable strings; frontends map them to
// localized copy. New identifiers may be added, existing ones never change
// meaning.
const (
	SuggestEnableTensorCores        = "enable-tensor-cores"
	SuggestQuantizeWeightsINT8      = "quantize-weights-int8"
	SuggestIncreaseBatchSize        = "increase-batch-size"
	SuggestQuantizeKVCache          = "quantize-kv-cache"
	SuggestReduceBatchSize          = "reduce-batch-size"
	SuggestUseGQACheckpoint         = "use-gqa-checkpoint"
	SuggestEnablePagedAttention     = "enable-paged-attention"
	SuggestContinuousBatching       = "enable-continuous-batching"
	SuggestCheckParallelismOverhead = "check-parallelism-overhead"
)

// Rule thresholds.
const (
	lowMFUPercent        = 30.0
	mediumMFUPercent     = 50.0
	highBandwidthPercent = 80.0
	smallBatchSize       = 8
)

// suggestionsFor derives the ordered optimization hints for a finished
// calculation. The rules read only result fields, so identical results
// always yield the identical ordered slice.
func suggestionsFor(res *CalculationResult) []string {
	var out []string

	switch res.Bottleneck {
	case BottleneckCompute:
		if res.MFUPercent < lowMFUPercent {
			out = append(out, SuggestEnableTensorCores)
			if res.Input.FFNPrecision != PrecisionINT8 {
				out = append(out, SuggestQuantizeWeightsINT8)
			}
		}
		if res.Input.BatchSize < smallBatchSize {
			out = append(out, SuggestIncreaseBatchSize)
		}
	case BottleneckMemory:
		if res.BandwidthPercent > highBandwidthPercent {
			if res.Input.AttentionPrecision != PrecisionINT8 {
				out = append(out, SuggestQuantizeKVCache)
			}
			if res.Input.BatchSize > 1 {
				out = append(out, SuggestReduceBatchSize)
			}
		}
		if res.Attention == AttentionMHA {
			out = append(out, SuggestUseGQACheckpoint)
		}
		out = append(out, SuggestEnablePagedAttention)
	case BottleneckBalanced:
		if res.MFUPercent < mediumMFUPercent {
			out = append(out, SuggestContinuousBatching)
		}
	}

	if res.Input.GPUCount > 1 {
		out = append(out, SuggestCheckParallelismOverhead)
	}
	return out
}

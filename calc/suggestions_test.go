package calc

import (
	"testing"
)

func TestSuggestionsFor_ComputeBoundLowMFU(t *testing.T) {
	// GIVEN a compute-bound result crawling at 20% MFU with a small batch
	res := &CalculationResult{
		Bottleneck: BottleneckCompute,
		MFUPercent: 20,
		Input: CalculationInput{
			AttentionPrecision: PrecisionFP16,
			FFNPrecision:       PrecisionFP16,
			BatchSize:          4,
			GPUCount:           1,
		},
	}

	got := suggestionsFor(res)

	want := []string{SuggestEnableTensorCores, SuggestQuantizeWeightsINT8, SuggestIncreaseBatchSize}
	assertSuggestions(t, want, got)
}

func TestSuggestionsFor_ComputeBoundAlreadyINT8SkipsQuantization(t *testing.T) {
	res := &CalculationResult{
		Bottleneck: BottleneckCompute,
		MFUPercent: 20,
		Input: CalculationInput{
			AttentionPrecision: PrecisionINT8,
			FFNPrecision:       PrecisionINT8,
			BatchSize:          16,
			GPUCount:           1,
		},
	}

	got := suggestionsFor(res)

	assertSuggestions(t, []string{SuggestEnableTensorCores}, got)
}

func TestSuggestionsFor_MemoryBoundSaturatedBandwidth(t *testing.T) {
	// GIVEN a memory-bound MHA deployment past the 80% bandwidth threshold
	res := &CalculationResult{
		Bottleneck:       BottleneckMemory,
		BandwidthPercent: 92,
		Attention:        AttentionMHA,
		Input: CalculationInput{
			AttentionPrecision: PrecisionFP16,
			FFNPrecision:       PrecisionFP16,
			BatchSize:          4,
			GPUCount:           2,
		},
	}

	got := suggestionsFor(res)

	want := []string{
		SuggestQuantizeKVCache,
		SuggestReduceBatchSize,
		SuggestUseGQACheckpoint,
		SuggestEnablePagedAttention,
		SuggestCheckParallelismOverhead,
	}
	assertSuggestions(t, want, got)
}

func TestSuggestionsFor_MemoryBoundGQASkipsCheckpointSwap(t *testing.T) {
	res := &CalculationResult{
		Bottleneck:       BottleneckMemory,
		BandwidthPercent: 40,
		Attention:        AttentionGQA,
		Input: CalculationInput{
			AttentionPrecision: PrecisionFP16,
			FFNPrecision:       PrecisionFP16,
			BatchSize:          1,
			GPUCount:           1,
		},
	}

	got := suggestionsFor(res)

	assertSuggestions(t, []string{SuggestEnablePagedAttention}, got)
}

func TestSuggestionsFor_BalancedMidMFU(t *testing.T) {
	res := &CalculationResult{
		Bottleneck: BottleneckBalanced,
		MFUPercent: 35,
		Input: CalculationInput{
			AttentionPrecision: PrecisionFP16,
			FFNPrecision:       PrecisionFP16,
			BatchSize:          8,
			GPUCount:           1,
		},
	}

	got := suggestionsFor(res)

	assertSuggestions(t, []string{SuggestContinuousBatching}, got)
}

func TestSuggestionsFor_SameResultSameOrderedList(t *testing.T) {
	res := &CalculationResult{
		Bottleneck:       BottleneckMemory,
		BandwidthPercent: 92,
		Attention:        AttentionMHA,
		Input: CalculationInput{
			AttentionPrecision: PrecisionFP16,
			FFNPrecision:       PrecisionFP16,
			BatchSize:          4,
			GPUCount:           2,
		},
	}

	first := suggestionsFor(res)
	for i := 0; i < 10; i++ {
		assertSuggestions(t, first, suggestionsFor(res))
	}
}

func assertSuggestions(t *testing.T, want, got []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d suggestions %v, got %d: %v", len(want), want, len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("suggestion %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

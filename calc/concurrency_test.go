package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeMaxConcurrency_A100SevenBDefaults(t *testing.T) {
	// GIVEN a 7B fp16 deployment on one A100 with the serving defaults
	// (2 GB framework overhead, 0.9 memory utilization, paged factor 2.3)
	in := NewConcurrencyInput(PrecisionFP16, 1, 2048)

	res, err := ComputeMaxConcurrency(in, a100(), llama7B())
	require.NoError(t, err)

	// THEN the breakdown reconstructs the device memory
	assert.InDelta(t, 13.04, res.Memory.WeightsGB, 0.01)
	assert.Equal(t, 2.0, res.Memory.FrameworkOverheadGB)
	assert.InDelta(t, 8.0, res.Memory.ActivationReserveGB, 0.001)
	assert.InDelta(t, 56.96, res.Memory.KVCachePoolGB, 0.01)
	assert.InDelta(t, 80.0, res.Memory.TotalGB, 0.001)
	assert.Equal(t, 80.0, res.TotalMemoryGB)

	// THEN per-request costs and the fits follow
	assert.InDelta(t, 1.0, res.PerRequestKVGB, 0.001)
	assert.InDelta(t, 0.000488, res.PerRequestActivationGB, 0.00001)
	assert.Equal(t, 56, res.MaxConcurrency)
	assert.Equal(t, 130, res.MaxConcurrencyPaged)
}

func TestComputeMaxConcurrency_OversizedOverheadYieldsZeroNotError(t *testing.T) {
	// GIVEN framework overhead larger than the whole device
	in := NewConcurrencyInput(PrecisionFP16, 1, 2048)
	in.FrameworkOverheadGB = 100

	res, err := ComputeMaxConcurrency(in, a100(), llama7B())
	require.NoError(t, err)

	assert.Equal(t, 0, res.MaxConcurrency)
	assert.Equal(t, 0, res.MaxConcurrencyPaged)
	assert.Equal(t, 0.0, res.Memory.KVCachePoolGB)
}

func TestComputeMaxConcurrency_GPUSweepNeverShrinks(t *testing.T) {
	prev := -1
	for _, gpus := range []int{1, 2, 4, 8} {
		in := NewConcurrencyInput(PrecisionFP16, gpus, 2048)
		res, err := ComputeMaxConcurrency(in, a100(), llama7B())
		require.NoError(t, err)

		assert.GreaterOrEqual(t, res.MaxConcurrency, prev, "gpus=%d", gpus)
		assert.Equal(t, 80.0*float64(gpus), res.TotalMemoryGB, "gpus=%d", gpus)
		prev = res.MaxConcurrency
	}
}

func TestComputeMaxConcurrency_PagedNeverBelowContiguous(t *testing.T) {
	in := NewConcurrencyInput(PrecisionFP16, 1, 2048)
	res, err := ComputeMaxConcurrency(in, a100(), llama7B())
	require.NoError(t, err)

	assert.GreaterOrEqual(t, res.MaxConcurrencyPaged, res.MaxConcurrency)

	// Factor 1.0 removes the paging gain entirely.
	assert.Equal(t, res.MaxConcurrency, ApplyPagedAttentionFactor(res, 1.0))
	// Invalid factors read as no gain rather than dividing by zero.
	assert.Equal(t, res.MaxConcurrency, ApplyPagedAttentionFactor(res, 0))
}

func TestComputeMaxConcurrency_ExplicitReserveOverridesUtilization(t *testing.T) {
	// GIVEN an explicit 5 GB activation reserve
	reserve := 5.0
	in := NewConcurrencyInput(PrecisionFP16, 1, 2048)
	in.ActivationReserveGB = &reserve

	res, err := ComputeMaxConcurrency(in, a100(), llama7B())
	require.NoError(t, err)

	// THEN the utilization-derived 8 GB is ignored
	assert.Equal(t, 5.0, res.Memory.ActivationReserveGB)
	assert.InDelta(t, 59.96, res.Memory.KVCachePoolGB, 0.01)
	assert.Equal(t, 59, res.MaxConcurrency)
}

func TestComputeMaxConcurrency_GQAFitsMoreThanMHA(t *testing.T) {
	// GIVEN two checkpoints differing only in KV-head sharing
	in := NewConcurrencyInput(PrecisionFP16, 1, 2048)

	mhaRes, err := ComputeMaxConcurrency(in, a100(), llama7B())
	require.NoError(t, err)

	gqaModel := llama7B()
	gqaModel.NumKVHeads = 8
	gqaRes, err := ComputeMaxConcurrency(in, a100(), gqaModel)
	require.NoError(t, err)

	// THEN the quarter-size KV cache admits far more requests
	assert.Equal(t, mhaRes.PerRequestKVGB/4, gqaRes.PerRequestKVGB)
	assert.Greater(t, gqaRes.MaxConcurrency, mhaRes.MaxConcurrency)
}

func TestComputeMaxConcurrency_HybridChargesFixedStatePerRequest(t *testing.T) {
	// GIVEN a hybrid checkpoint on a wide fleet
	in := NewConcurrencyInput(PrecisionFP16, 8, 2048)
	m := hybrid48L()

	res, err := ComputeMaxConcurrency(in, a100(), m)
	require.NoError(t, err)

	// THEN each request carries the per-token KV for the full-attention
	// layers plus the sequence-independent linear state
	attn := ResolveAttention(m)
	want := attn.KVCacheGB(2048, PrecisionFP16)
	assert.Equal(t, want, res.PerRequestKVGB)
	assert.Greater(t, res.PerRequestKVGB, attn.KVBytesPerToken(PrecisionFP16)*2048/bytesPerGB)
	assert.Equal(t, AttentionHybrid, res.Attention)
}

func TestComputeMaxConcurrency_RejectsInvalidInputs(t *testing.T) {
	cases := map[string]func(*ConcurrencyInput){
		"gpu count off the ladder": func(in *ConcurrencyInput) { in.GPUCount = 5 },
		"zero context":             func(in *ConcurrencyInput) { in.ContextLength = 0 },
		"negative overhead":        func(in *ConcurrencyInput) { in.FrameworkOverheadGB = -1 },
		"utilization above one":    func(in *ConcurrencyInput) { in.GPUMemoryUtilization = 1.5 },
		"zero utilization":         func(in *ConcurrencyInput) { in.GPUMemoryUtilization = 0 },
		"zero paged factor":        func(in *ConcurrencyInput) { in.PagedAttentionFactor = 0 },
	}
	for name, mutate := range cases {
		in := NewConcurrencyInput(PrecisionFP16, 1, 2048)
		mutate(&in)
		_, err := ComputeMaxConcurrency(in, a100(), llama7B())
		assert.Error(t, err, name)
	}
}

func TestComputeMaxConcurrency_ContextBeyondMaxPositionsErrors(t *testing.T) {
	in := NewConcurrencyInput(PrecisionFP16, 1, 8192)
	_, err := ComputeMaxConcurrency(in, a100(), llama7B())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max positions")
}

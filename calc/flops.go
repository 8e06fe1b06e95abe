package calc

// FlopsBreakdown splits the theoretical FLOPs of one calculation by phase
// and operator family. Values are raw FLOPs.
type FlopsBreakdown struct {
	PrefillAttention float64 `json:"prefill_attention_flops"`
	PrefillFFN       float64 `json:"prefill_ffn_flops"`
	PrefillEmbedding float64 `json:"prefill_embedding_flops"`
	DecodeAttention  float64 `json:"decode_attention_flops"`
	DecodeFFN        float64 `json:"decode_ffn_flops"`
	DecodeEmbedding  float64 `json:"decode_embedding_flops"`
}

// PrefillTotal sums the prefill-phase terms.
func (b FlopsBreakdown) PrefillTotal() float64 {
	return b.PrefillAttention + b.PrefillFFN + b.PrefillEmbedding
}

// DecodeTotal sums the decode-phase terms.
func (b FlopsBreakdown) DecodeTotal() float64 {
	return b.DecodeAttention + b.DecodeFFN + b.DecodeEmbedding
}

// Total sums both phases.
func (b FlopsBreakdown) Total() float64 {
	return b.PrefillTotal() + b.DecodeTotal()
}

// computeFlops produces the breakdown for one request shape, times batch.
//
// Prefill pushes every context token through every layer: QKV projections
// (the K/V widths shrink with the KV-head count), the score matmul against
// the full context, the output projection, and the three SwiGLU FFN matrices.
// Decode repeats the same structure for one token per step against the
// running-average context length context + generated/2; summed over
// generated tokens that average is exact for a cache growing one token at a
// time. The attention-shaped terms carry the attention precision's
// throughput scale, the dense FFN and vocabulary projections the FFN
// precision's.
func computeFlops(in CalculationInput, m Model) FlopsBreakdown {
	dModel := float64(m.HiddenDim)
	nLayers := float64(m.NumLayers)
	nHeads := float64(m.NumHeads)
	dHead := float64(m.EffectiveHeadDim())
	dKV := float64(m.EffectiveKVHeads()) * dHead
	dFF := float64(m.IntermediateDim)
	vocab := float64(m.VocabSize)
	batch := float64(in.BatchSize)

	attnScale := in.AttentionPrecision.ThroughputScale()
	ffnScale := in.FFNPrecision.ThroughputScale()

	ctx := float64(in.ContextLength)
	gen := float64(in.GeneratedLength)

	qkvFlops := 2 * ctx * (dModel*dModel + 2*dModel*dKV)
	scoreFlops := 2 * nHeads * ctx * ctx * dHead
	projFlops := 2 * ctx * dModel * dModel
	prefillAttn := (qkvFlops + scoreFlops + projFlops) * nLayers * attnScale

	prefillFFN := 2 * ctx * (3 * dModel * dFF) * nLayers * ffnScale
	prefillEmb := 2 * dModel * vocab * ctx * ffnScale

	avgCtx := ctx + gen/2
	decQKV := 2 * (dModel*dModel + 2*dModel*dKV)
	decScore := 2 * nHeads * avgCtx * dHead
	decProj := 2 * dModel * dModel
	decodeAttn := (decQKV + decScore + decProj) * nLayers * attnScale * gen

	decodeFFN := 2 * (3 * dModel * dFF) * nLayers * ffnScale * gen
	decodeEmb := 2 * dModel * vocab * ffnScale * gen

	return FlopsBreakdown{
		PrefillAttention: prefillAttn * batch,
		PrefillFFN:       prefillFFN * batch,
		PrefillEmbedding: prefillEmb * batch,
		DecodeAttention:  decodeAttn * batch,
		DecodeFFN:        decodeFFN * batch,
		DecodeEmbedding:  decodeEmb * batch,
	}
}

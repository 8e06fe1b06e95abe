package calc

// AttentionKind classifies how a checkpoint shares KV heads across query
// heads, which is what decides its KV-cache growth rate.
type AttentionKind string

const (
	AttentionMHA    AttentionKind = "mha"
	AttentionGQA    AttentionKind = "gqa"
	AttentionMQA    AttentionKind = "mqa"
	AttentionHybrid AttentionKind = "hybrid"
)

// Attention is the resolved attention architecture of a model: the variant
// plus the numbers KV sizing needs. Resolve once with ResolveAttention and
// pass the value around; sizing never re-derives head counts from the model.
type Attention struct {
	Kind AttentionKind

	// KVLayers is the layer count contributing per-token KV growth. For
	// hybrid checkpoints this is the full-attention layer count only.
	KVLayers int
	// KVHeads per contributing layer: 1 for MQA, the query-head count for
	// MHA, the grouped count for GQA.
	KVHeads int
	HeadDim int

	// LinearStateElements is the per-sequence linear-attention state element
	// count, independent of sequence length. Zero for pure transformers.
	LinearStateElements float64
}

// ResolveAttention classifies m. An explicit hybrid config wins over the
// head-count heuristics; kv_heads == num_heads reads as MHA before the
// grouped check, so a degenerate "grouped" config with one group per head
// never classifies as GQA.
func ResolveAttention(m Model) Attention {
	headDim := m.EffectiveHeadDim()
	kvHeads := m.EffectiveKVHeads()

	if m.Hybrid != nil {
		h := m.Hybrid
		perLayer := float64(h.LinearKeyHeads)*float64(h.LinearKeyHeadDim)*float64(h.LinearValueHeadDim) +
			float64(h.LinearKeyHeads)*float64(h.LinearKeyHeadDim)*float64(h.ConvKernelSize)
		return Attention{
			Kind:                AttentionHybrid,
			KVLayers:            h.FullAttentionLayers,
			KVHeads:             kvHeads,
			HeadDim:             headDim,
			LinearStateElements: float64(h.LinearAttentionLayers) * perLayer,
		}
	}

	kind := AttentionGQA
	switch {
	case kvHeads == m.NumHeads:
		kind = AttentionMHA
	case kvHeads == 1:
		kind = AttentionMQA
	}
	return Attention{Kind: kind, KVLayers: m.NumLayers, KVHeads: kvHeads, HeadDim: headDim}
}

// KVBytesPerToken returns the KV-cache bytes appended per context token:
// K and V each hold kv_heads * head_dim elements per contributing layer.
func (a Attention) KVBytesPerToken(p Precision) float64 {
	return 2 * float64(a.KVLayers) * float64(a.KVHeads) * float64(a.HeadDim) * p.BytesPerElement()
}

// FixedStateBytes returns the sequence-length-independent state of a hybrid
// checkpoint: the recurrent accumulator plus the convolution window.
func (a Attention) FixedStateBytes(p Precision) float64 {
	return a.LinearStateElements * p.BytesPerElement()
}

// KVCacheGB returns the total KV footprint for one sequence at the given
// context length.
func (a Attention) KVCacheGB(contextLen int, p Precision) float64 {
	return (a.KVBytesPerToken(p)*float64(contextLen) + a.FixedStateBytes(p)) / bytesPerGB
}

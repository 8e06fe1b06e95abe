package calc

import (
	"testing"
)

// tinyModel keeps every FLOPs term small enough to check by hand.
func tinyModel() Model {
	return Model{
		ID:              "tiny",
		ParamsBillions:  0.001,
		NumLayers:       1,
		HiddenDim:       8,
		NumHeads:        2,
		NumKVHeads:      1,
		VocabSize:       10,
		IntermediateDim: 16,
	}
}

func tinyInput() CalculationInput {
	return CalculationInput{
		AttentionPrecision: PrecisionFP16,
		FFNPrecision:       PrecisionFP16,
		GPUCount:           1,
		ContextLength:      4,
		GeneratedLength:    2,
		BatchSize:          1,
		TTFTMillis:         10,
		TPOTMillis:         5,
	}
}

func TestComputeFlops_HandComputedTinyShape(t *testing.T) {
	// GIVEN a 1-layer model with hidden=8, heads=2, kv_heads=1 (head_dim=4),
	// ffn=16, vocab=10 and a 4-token prompt generating 2 tokens
	b := computeFlops(tinyInput(), tinyModel())

	// THEN each prefill term matches the closed form
	// qkv: 2*4*(8*8 + 2*8*4) = 1024, scores: 2*2*4*4*4 = 256, proj: 2*4*64 = 512
	if want := 1024.0 + 256 + 512; b.PrefillAttention != want {
		t.Errorf("prefill attention: expected %v, got %v", want, b.PrefillAttention)
	}
	// ffn: 2*4*(3*8*16) = 3072
	if b.PrefillFFN != 3072 {
		t.Errorf("prefill ffn: expected 3072, got %v", b.PrefillFFN)
	}
	// embedding: 2*8*10*4 = 640
	if b.PrefillEmbedding != 640 {
		t.Errorf("prefill embedding: expected 640, got %v", b.PrefillEmbedding)
	}

	// THEN decode uses one token per step against avg context 4 + 2/2 = 5
	// per token: qkv 256 + scores 2*2*5*4=80 + proj 128 = 464, times 2 tokens
	if want := 464.0 * 2; b.DecodeAttention != want {
		t.Errorf("decode attention: expected %v, got %v", want, b.DecodeAttention)
	}
	if want := 768.0 * 2; b.DecodeFFN != want {
		t.Errorf("decode ffn: expected %v, got %v", want, b.DecodeFFN)
	}
	if want := 160.0 * 2; b.DecodeEmbedding != want {
		t.Errorf("decode embedding: expected %v, got %v", want, b.DecodeEmbedding)
	}
}

func TestComputeFlops_PrecisionScalesApplyPerPath(t *testing.T) {
	// GIVEN the tiny shape with INT8 attention over an FP16 FFN
	in := tinyInput()
	in.AttentionPrecision = PrecisionINT8

	base := computeFlops(tinyInput(), tinyModel())
	split := computeFlops(in, tinyModel())

	// THEN only the attention terms double; FFN and embedding are untouched
	if split.PrefillAttention != 2*base.PrefillAttention {
		t.Errorf("expected int8 attention to double prefill attention: %v vs %v", split.PrefillAttention, base.PrefillAttention)
	}
	if split.DecodeAttention != 2*base.DecodeAttention {
		t.Errorf("expected int8 attention to double decode attention: %v vs %v", split.DecodeAttention, base.DecodeAttention)
	}
	if split.PrefillFFN != base.PrefillFFN || split.DecodeFFN != base.DecodeFFN {
		t.Error("ffn terms must not move with the attention precision")
	}
	if split.PrefillEmbedding != base.PrefillEmbedding || split.DecodeEmbedding != base.DecodeEmbedding {
		t.Error("embedding terms must not move with the attention precision")
	}
}

func TestComputeFlops_BatchMultipliesEveryTerm(t *testing.T) {
	in := tinyInput()
	in.BatchSize = 3

	base := computeFlops(tinyInput(), tinyModel())
	batched := computeFlops(in, tinyModel())

	if batched.Total() != 3*base.Total() {
		t.Errorf("expected batch 3 to triple total flops: %v vs %v", batched.Total(), base.Total())
	}
}

func TestComputeFlops_MonotonicInContextLength(t *testing.T) {
	// Longer prompts can only add work, in both phases.
	in := typicalInput()
	m := llama7B()

	short := computeFlops(in, m)
	in.ContextLength *= 2
	long := computeFlops(in, m)

	if long.PrefillTotal() <= short.PrefillTotal() {
		t.Errorf("prefill flops must grow with context: %v vs %v", long.PrefillTotal(), short.PrefillTotal())
	}
	if long.DecodeTotal() <= short.DecodeTotal() {
		t.Errorf("decode flops must grow with context: %v vs %v", long.DecodeTotal(), short.DecodeTotal())
	}
}

func TestComputeFlops_GQAShrinksOnlyQKVTerm(t *testing.T) {
	// GIVEN the 7B shape in MHA and 8-group GQA forms
	in := typicalInput()
	mha := computeFlops(in, llama7B())
	gqa := computeFlops(in, gqa8B())

	// THEN attention flops shrink (narrower K/V projections) while the
	// score matmul, driven by query heads, keeps decode close
	if gqa.PrefillAttention >= mha.PrefillAttention {
		t.Errorf("gqa must reduce prefill attention flops: %v vs %v", gqa.PrefillAttention, mha.PrefillAttention)
	}
}

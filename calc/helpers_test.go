package calc

// Shared fixtures for engine tests. Model dimensions follow the Llama-2-7B
// checkpoint shape; hardware numbers are A100-80GB datasheet values.

func a100() Hardware {
	return Hardware{
		ID:           "a100-80gb",
		Name:         "NVIDIA A100 80GB SXM",
		FP16TFLOPS:   312,
		BF16TFLOPS:   312,
		INT8TFLOPS:   624,
		FP32TFLOPS:   156,
		MemoryGB:     80,
		BandwidthTBs: 2.039,
	}
}

func llama7B() Model {
	return Model{
		ID:              "llama-2-7b",
		Name:            "Llama 2 7B",
		ParamsBillions:  7,
		NumLayers:       32,
		HiddenDim:       4096,
		NumHeads:        32,
		NumKVHeads:      32,
		HeadDim:         128,
		VocabSize:       32000,
		IntermediateDim: 11008,
		MaxPositions:    4096,
	}
}

// gqa8B mirrors the Llama-3.1-8B grouped layout: 32 query heads over 8 KV
// heads.
func gqa8B() Model {
	m := llama7B()
	m.ID = "llama-3.1-8b"
	m.Name = "Llama 3.1 8B"
	m.ParamsBillions = 8
	m.NumKVHeads = 8
	m.IntermediateDim = 14336
	m.MaxPositions = 131072
	return m
}

func hybrid48L() Model {
	return Model{
		ID:              "hybrid-48l",
		Name:            "Hybrid 48L",
		ParamsBillions:  80,
		NumLayers:       48,
		HiddenDim:       2048,
		NumHeads:        16,
		NumKVHeads:      2,
		HeadDim:         256,
		VocabSize:       151936,
		IntermediateDim: 5120,
		MaxPositions:    262144,
		Hybrid: &HybridConfig{
			FullAttentionLayers:   12,
			LinearAttentionLayers: 36,
			LinearKeyHeads:        16,
			LinearValueHeads:      32,
			LinearKeyHeadDim:      128,
			LinearValueHeadDim:    128,
			ConvKernelSize:        4,
		},
	}
}

func typicalInput() CalculationInput {
	return CalculationInput{
		AttentionPrecision: PrecisionFP16,
		FFNPrecision:       PrecisionFP16,
		GPUCount:           1,
		ContextLength:      2048,
		GeneratedLength:    256,
		BatchSize:          1,
		TTFTMillis:         350,
		TPOTMillis:         40,
	}
}

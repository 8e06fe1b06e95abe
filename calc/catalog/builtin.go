package catalog

import "github.com/llmcalc/llmcalc/calc"

// builtinHardware carries dense (non-sparsity) datasheet numbers. FP32
// columns are the tensor-core TF32 figures, since that is what GEMMs
// actually run at on these parts.
var builtinHardware = []calc.Hardware{
	{
		ID:           "a100-80gb",
		Name:         "NVIDIA A100 80GB SXM",
		FP16TFLOPS:   312,
		BF16TFLOPS:   312,
		INT8TFLOPS:   624,
		FP32TFLOPS:   156,
		MemoryGB:     80,
		BandwidthTBs: 2.039,
	},
	{
		ID:           "h100-sxm",
		Name:         "NVIDIA H100 80GB SXM",
		FP16TFLOPS:   989.5,
		BF16TFLOPS:   989.5,
		INT8TFLOPS:   1979,
		FP32TFLOPS:   494.7,
		MemoryGB:     80,
		BandwidthTBs: 3.35,
	},
	{
		ID:           "h200-sxm",
		Name:         "NVIDIA H200 141GB SXM",
		FP16TFLOPS:   989.5,
		BF16TFLOPS:   989.5,
		INT8TFLOPS:   1979,
		FP32TFLOPS:   494.7,
		MemoryGB:     141,
		BandwidthTBs: 4.8,
	},
	{
		ID:           "l40s",
		Name:         "NVIDIA L40S",
		FP16TFLOPS:   362.1,
		BF16TFLOPS:   362.1,
		INT8TFLOPS:   733,
		FP32TFLOPS:   183,
		MemoryGB:     48,
		BandwidthTBs: 0.864,
	},
	{
		ID:           "rtx-4090",
		Name:         "NVIDIA GeForce RTX 4090",
		FP16TFLOPS:   165.2,
		BF16TFLOPS:   165.2,
		INT8TFLOPS:   330.3,
		FP32TFLOPS:   82.6,
		MemoryGB:     24,
		BandwidthTBs: 1.008,
	},
	{
		ID:           "mi300x",
		Name:         "AMD Instinct MI300X",
		FP16TFLOPS:   1307.4,
		BF16TFLOPS:   1307.4,
		INT8TFLOPS:   2614.9,
		FP32TFLOPS:   653.7,
		MemoryGB:     192,
		BandwidthTBs: 5.3,
	},
}

// builtinModels covers one checkpoint per attention variant so every sizing
// path is reachable out of the box.
var builtinModels = []calc.Model{
	{
		ID:              "llama-2-7b",
		Name:            "Llama 2 7B",
		ParamsBillions:  6.74,
		NumLayers:       32,
		HiddenDim:       4096,
		NumHeads:        32,
		NumKVHeads:      32,
		HeadDim:         128,
		VocabSize:       32000,
		IntermediateDim: 11008,
		MaxPositions:    4096,
	},
	{
		ID:              "llama-3.1-8b",
		Name:            "Llama 3.1 8B Instruct",
		ParamsBillions:  8.03,
		NumLayers:       32,
		HiddenDim:       4096,
		NumHeads:        32,
		NumKVHeads:      8,
		HeadDim:         128,
		VocabSize:       128256,
		IntermediateDim: 14336,
		MaxPositions:    131072,
	},
	{
		ID:              "qwen2.5-7b",
		Name:            "Qwen2.5 7B Instruct",
		ParamsBillions:  7.62,
		NumLayers:       28,
		HiddenDim:       3584,
		NumHeads:        28,
		NumKVHeads:      4,
		HeadDim:         128,
		VocabSize:       152064,
		IntermediateDim: 18944,
		MaxPositions:    32768,
	},
	{
		ID:              "falcon-7b",
		Name:            "Falcon 7B",
		ParamsBillions:  7.22,
		NumLayers:       32,
		HiddenDim:       4544,
		NumHeads:        71,
		NumKVHeads:      1,
		HeadDim:         64,
		VocabSize:       65024,
		IntermediateDim: 18176,
		MaxPositions:    2048,
	},
	{
		ID:              "qwen3-next-80b",
		Name:            "Qwen3-Next 80B A3B",
		ParamsBillions:  80,
		NumLayers:       48,
		HiddenDim:       2048,
		NumHeads:        16,
		NumKVHeads:      2,
		HeadDim:         256,
		VocabSize:       151936,
		IntermediateDim: 5120,
		MaxPositions:    262144,
		Hybrid: &calc.HybridConfig{
			FullAttentionLayers:   12,
			LinearAttentionLayers: 36,
			LinearKeyHeads:        16,
			LinearValueHeads:      32,
			LinearKeyHeadDim:      128,
			LinearValueHeadDim:    128,
			ConvKernelSize:        4,
		},
	},
}

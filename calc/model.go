package calc

import (
	"fmt"
	"strings"
)

// Model describes a transformer checkpoint with the dimensions the FLOPs,
// KV-cache, and memory accounting need. JSON tags follow HuggingFace
// config.json naming wherever a counterpart exists.
type Model struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	ParamsBillions float64 `json:"params_billions"`

	NumLayers       int `json:"num_hidden_layers"`
	HiddenDim       int `json:"hidden_size"`
	NumHeads        int `json:"num_attention_heads"`
	NumKVHeads      int `json:"num_key_value_heads"`
	HeadDim         int `json:"head_dim"`
	VocabSize       int `json:"vocab_size"`
	IntermediateDim int `json:"intermediate_size"`
	MaxPositions    int `json:"max_position_embeddings"`

	// Hybrid marks checkpoints that interleave full-attention layers with
	// linear-attention layers carrying fixed recurrent state. Nil means a
	// pure transformer stack.
	Hybrid *HybridConfig `json:"hybrid_attention,omitempty"`
}

// HybridConfig carries the extra dimensions of a hybrid checkpoint's
// linear-attention layers: the recurrent state is key_heads x key_dim x
// value_dim per layer plus a short convolution window of key_dim width
// conv_kernel_size.
type HybridConfig struct {
	FullAttentionLayers   int `json:"full_attention_layers"`
	LinearAttentionLayers int `json:"linear_attention_layers"`
	LinearKeyHeads        int `json:"linear_key_heads"`
	LinearValueHeads      int `json:"linear_value_heads"`
	LinearKeyHeadDim      int `json:"linear_key_head_dim"`
	LinearValueHeadDim    int `json:"linear_value_head_dim"`
	ConvKernelSize        int `json:"conv_kernel_size"`
}

// EffectiveKVHeads defaults a missing num_key_value_heads to the attention
// head count, matching HuggingFace semantics where absence means MHA.
func (m Model) EffectiveKVHeads() int {
	if m.NumKVHeads > 0 {
		return m.NumKVHeads
	}
	return m.NumHeads
}

// EffectiveHeadDim falls back to hidden_size / num_attention_heads when the
// checkpoint does not pin head_dim explicitly.
func (m Model) EffectiveHeadDim() int {
	if m.HeadDim > 0 {
		return m.HeadDim
	}
	if m.NumHeads > 0 {
		return m.HiddenDim / m.NumHeads
	}
	return 0
}

// WeightMemoryGB returns the resident weight footprint at the given
// precision.
func (m Model) WeightMemoryGB(p Precision) float64 {
	return m.ParamsBillions * 1e9 * p.BytesPerElement() / bytesPerGB
}

// Validate returns an error listing all invalid fields, or nil if valid.
func (m Model) Validate() error {
	var problems []string

	if m.ID == "" {
		problems = append(problems, "ID must not be empty")
	}
	if invalidPositive(m.ParamsBillions) {
		problems = append(problems, fmt.Sprintf("ParamsBillions must be a valid positive number, got %v", m.ParamsBillions))
	}
	if m.NumLayers <= 0 {
		problems = append(problems, fmt.Sprintf("NumLayers must be > 0, got %d", m.NumLayers))
	}
	if m.HiddenDim <= 0 {
		problems = append(problems, fmt.Sprintf("HiddenDim must be > 0, got %d", m.HiddenDim))
	}
	if m.NumHeads <= 0 {
		problems = append(problems, fmt.Sprintf("NumHeads must be > 0, got %d", m.NumHeads))
	}
	if m.VocabSize <= 0 {
		problems = append(problems, fmt.Sprintf("VocabSize must be > 0, got %d", m.VocabSize))
	}
	if m.IntermediateDim <= 0 {
		problems = append(problems, fmt.Sprintf("IntermediateDim must be > 0, got %d", m.IntermediateDim))
	}
	if m.NumKVHeads < 0 {
		problems = append(problems, fmt.Sprintf("NumKVHeads must be >= 0, got %d", m.NumKVHeads))
	}
	if m.NumKVHeads > 0 && m.NumHeads > 0 {
		if m.NumKVHeads > m.NumHeads {
			problems = append(problems, fmt.Sprintf("NumKVHeads %d must not exceed NumHeads %d", m.NumKVHeads, m.NumHeads))
		} else if m.NumHeads%m.NumKVHeads != 0 {
			problems = append(problems, fmt.Sprintf("NumHeads %d must be divisible by NumKVHeads %d", m.NumHeads, m.NumKVHeads))
		}
	}
	if m.Hybrid != nil {
		problems = append(problems, m.Hybrid.problems(m.NumLayers)...)
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid model %q: %s", m.ID, strings.Join(problems, "; "))
	}
	return nil
}

func (h HybridConfig) problems(numLayers int) []string {
	var problems []string
	if h.FullAttentionLayers <= 0 {
		problems = append(problems, fmt.Sprintf("Hybrid.FullAttentionLayers must be > 0, got %d", h.FullAttentionLayers))
	}
	if h.LinearAttentionLayers <= 0 {
		problems = append(problems, fmt.Sprintf("Hybrid.LinearAttentionLayers must be > 0, got %d", h.LinearAttentionLayers))
	}
	if got := h.FullAttentionLayers + h.LinearAttentionLayers; numLayers > 0 && got != numLayers {
		problems = append(problems, fmt.Sprintf("Hybrid layer counts must sum to NumLayers %d, got %d", numLayers, got))
	}
	if h.LinearKeyHeads <= 0 {
		problems = append(problems, fmt.Sprintf("Hybrid.LinearKeyHeads must be > 0, got %d", h.LinearKeyHeads))
	}
	if h.LinearValueHeads <= 0 {
		problems = append(problems, fmt.Sprintf("Hybrid.LinearValueHeads must be > 0, got %d", h.LinearValueHeads))
	}
	if h.LinearKeyHeadDim <= 0 {
		problems = append(problems, fmt.Sprintf("Hybrid.LinearKeyHeadDim must be > 0, got %d", h.LinearKeyHeadDim))
	}
	if h.LinearValueHeadDim <= 0 {
		problems = append(problems, fmt.Sprintf("Hybrid.LinearValueHeadDim must be > 0, got %d", h.LinearValueHeadDim))
	}
	if h.ConvKernelSize <= 0 {
		problems = append(problems, fmt.Sprintf("Hybrid.ConvKernelSize must be > 0, got %d", h.ConvKernelSize))
	}
	return problems
}

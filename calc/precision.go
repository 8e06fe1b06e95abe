package calc

import (
	"fmt"
	"strings"
)

// Precision identifies a numeric format for weights and activations.
// The wire and CLI representation is the lowercase string.
type Precision string

const (
	PrecisionFP16 Precision = "fp16"
	PrecisionBF16 Precision = "bf16"
	PrecisionINT8 Precision = "int8"
	PrecisionFP32 Precision = "fp32"
)

// Precisions lists the supported formats in display order.
var Precisions = []Precision{PrecisionFP16, PrecisionBF16, PrecisionINT8, PrecisionFP32}

// ParsePrecision normalizes user input ("FP16", " bf16 ") into a Precision.
// Returns an error naming the valid values on anything else.
func ParsePrecision(s string) (Precision, error) {
	p := Precision(strings.ToLower(strings.TrimSpace(s)))
	if !p.valid() {
		return "", fmt.Errorf("unknown precision %q (valid: fp16, bf16, int8, fp32)", s)
	}
	return p, nil
}

func (p Precision) valid() bool {
	switch p {
	case PrecisionFP16, PrecisionBF16, PrecisionINT8, PrecisionFP32:
		return true
	}
	return false
}

// BytesPerElement returns the storage footprint of one element.
// Panics outside the enum; user input must go through ParsePrecision first.
func (p Precision) BytesPerElement() float64 {
	switch p {
	case PrecisionFP16, PrecisionBF16:
		return 2
	case PrecisionINT8:
		return 1
	case PrecisionFP32:
		return 4
	}
	panic(fmt.Sprintf("unknown precision %q", string(p)))
}

// ThroughputScale returns the compute-throughput multiplier relative to the
// FP16 tensor-core baseline: INT8 paths move twice the elements per cycle,
// FP32 half. Panics outside the enum.
func (p Precision) ThroughputScale() float64 {
	switch p {
	case PrecisionFP16, PrecisionBF16:
		return 1.0
	case PrecisionINT8:
		return 2.0
	case PrecisionFP32:
		return 0.5
	}
	panic(fmt.Sprintf("unknown precision %q", string(p)))
}

// Wider returns whichever of the two formats has the larger per-element
// footprint. Resident weight memory in a mixed-precision setup is governed
// by the widest format the checkpoint is stored in.
func (p Precision) Wider(other Precision) Precision {
	if other.BytesPerElement() > p.BytesPerElement() {
		return other
	}
	return p
}

func (p Precision) String() string { return string(p) }

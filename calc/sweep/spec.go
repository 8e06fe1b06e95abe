// Package sweep runs batches of utilization scenarios and ranks the outcomes,
// so deployment options can be compared in one pass.
package sweep

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/llmcalc/llmcalc/calc"
)

// Spec declares a batch of scenarios over one hardware/model pair, loadable
// from a YAML file. Either list Scenarios explicitly, or give the GPUCounts
// and Precisions axes and the grid is their cross product. Nil pointer fields
// in a scenario mean "not set in YAML" and fall back to the shared workload.
type Spec struct {
	Hardware string `yaml:"hardware"`
	Model    string `yaml:"model"`

	Workload Workload `yaml:"workload"`

	GPUCounts  []int    `yaml:"gpu_counts"`
	Precisions []string `yaml:"precisions"`

	Scenarios []Scenario `yaml:"scenarios"`
}

// Workload is the request shape shared by every scenario in the spec.
type Workload struct {
	ContextLength   int     `yaml:"context_length"`
	GeneratedLength int     `yaml:"generated_length"`
	BatchSize       int     `yaml:"batch_size"`
	TTFTMillis      float64 `yaml:"ttft_ms"`
	TPOTMillis      float64 `yaml:"tpot_ms"`
}

// Scenario is one explicit grid point.
type Scenario struct {
	Name      string `yaml:"name"`
	GPUCount  int    `yaml:"gpu_count"`
	Precision string `yaml:"precision"`

	ContextLength   *int     `yaml:"context_length"`
	GeneratedLength *int     `yaml:"generated_length"`
	BatchSize       *int     `yaml:"batch_size"`
	TTFTMillis      *float64 `yaml:"ttft_ms"`
	TPOTMillis      *float64 `yaml:"tpot_ms"`
}

// Load reads and parses a YAML sweep spec file.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sweep spec: %w", err)
	}
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing sweep spec: %w", err)
	}
	return &spec, nil
}

// Validate checks that the spec names a hardware/model pair, carries a
// complete workload, and has at least one way to produce scenarios.
func (s *Spec) Validate() error {
	if s.Hardware == "" {
		return fmt.Errorf("hardware is required")
	}
	if s.Model == "" {
		return fmt.Errorf("model is required")
	}

	if s.Workload.ContextLength < 1 {
		return fmt.Errorf("workload context_length must be >= 1, got %d", s.Workload.ContextLength)
	}
	if s.Workload.GeneratedLength < 1 {
		return fmt.Errorf("workload generated_length must be >= 1, got %d", s.Workload.GeneratedLength)
	}
	if s.Workload.BatchSize < 1 {
		return fmt.Errorf("workload batch_size must be >= 1, got %d", s.Workload.BatchSize)
	}
	if s.Workload.TTFTMillis <= 0 {
		return fmt.Errorf("workload ttft_ms must be positive, got %f", s.Workload.TTFTMillis)
	}
	if s.Workload.TPOTMillis <= 0 {
		return fmt.Errorf("workload tpot_ms must be positive, got %f", s.Workload.TPOTMillis)
	}

	if len(s.Scenarios) == 0 && (len(s.GPUCounts) == 0 || len(s.Precisions) == 0) {
		return fmt.Errorf("either scenarios or both gpu_counts and precisions must be given")
	}

	for _, p := range s.Precisions {
		if _, err := calc.ParsePrecision(p); err != nil {
			return fmt.Errorf("precisions: %w", err)
		}
	}
	for i, sc := range s.Scenarios {
		if sc.GPUCount < 1 {
			return fmt.Errorf("scenario %d: gpu_count must be >= 1, got %d", i, sc.GPUCount)
		}
		if _, err := calc.ParsePrecision(sc.Precision); err != nil {
			return fmt.Errorf("scenario %d: %w", i, err)
		}
		if sc.ContextLength != nil && *sc.ContextLength < 1 {
			return fmt.Errorf("scenario %d: context_length must be >= 1, got %d", i, *sc.ContextLength)
		}
		if sc.GeneratedLength != nil && *sc.GeneratedLength < 1 {
			return fmt.Errorf("scenario %d: generated_length must be >= 1, got %d", i, *sc.GeneratedLength)
		}
		if sc.BatchSize != nil && *sc.BatchSize < 1 {
			return fmt.Errorf("scenario %d: batch_size must be >= 1, got %d", i, *sc.BatchSize)
		}
		if sc.TTFTMillis != nil && *sc.TTFTMillis <= 0 {
			return fmt.Errorf("scenario %d: ttft_ms must be positive, got %f", i, *sc.TTFTMillis)
		}
		if sc.TPOTMillis != nil && *sc.TPOTMillis <= 0 {
			return fmt.Errorf("scenario %d: tpot_ms must be positive, got %f", i, *sc.TPOTMillis)
		}
	}
	return nil
}

// expand turns the spec into the concrete scenario list: explicit scenarios
// if given, otherwise the gpu_counts x precisions grid.
func (s *Spec) expand() []Scenario {
	if len(s.Scenarios) > 0 {
		out := make([]Scenario, len(s.Scenarios))
		copy(out, s.Scenarios)
		for i := range out {
			if out[i].Name == "" {
				out[i].Name = scenarioName(out[i].GPUCount, out[i].Precision)
			}
		}
		return out
	}

	out := make([]Scenario, 0, len(s.GPUCounts)*len(s.Precisions))
	for _, g := range s.GPUCounts {
		for _, p := range s.Precisions {
			out = append(out, Scenario{
				Name:      scenarioName(g, p),
				GPUCount:  g,
				Precision: p,
			})
		}
	}
	return out
}

func scenarioName(gpuCount int, precision string) string {
	return fmt.Sprintf("%dx-%s", gpuCount, canonicalPrecision(precision))
}

// inputFor applies a scenario's overrides on top of the shared workload.
func (s *Spec) inputFor(sc Scenario) calc.CalculationInput {
	p := canonicalPrecision(sc.Precision)
	in := calc.CalculationInput{
		AttentionPrecision: p,
		FFNPrecision:       p,
		GPUCount:           sc.GPUCount,
		ContextLength:      s.Workload.ContextLength,
		GeneratedLength:    s.Workload.GeneratedLength,
		BatchSize:          s.Workload.BatchSize,
		TTFTMillis:         s.Workload.TTFTMillis,
		TPOTMillis:         s.Workload.TPOTMillis,
	}
	if sc.ContextLength != nil {
		in.ContextLength = *sc.ContextLength
	}
	if sc.GeneratedLength != nil {
		in.GeneratedLength = *sc.GeneratedLength
	}
	if sc.BatchSize != nil {
		in.BatchSize = *sc.BatchSize
	}
	if sc.TTFTMillis != nil {
		in.TTFTMillis = *sc.TTFTMillis
	}
	if sc.TPOTMillis != nil {
		in.TPOTMillis = *sc.TPOTMillis
	}
	return in
}

func canonicalPrecision(s string) calc.Precision {
	return calc.Precision(strings.ToLower(strings.TrimSpace(s)))
}

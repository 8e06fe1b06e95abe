// Package api exposes the calculation engine over HTTP and provides the
// matching client. The client implements calc.Calculator, so commands run
// against a remote service exactly as they run against the in-process engine.
package api

import (
	"fmt"

	"github.com/llmcalc/llmcalc/calc"
)

// CalculationRequest asks the server to run a utilization calculation. The
// hardware and model are referenced by catalog id and resolved against the
// server's own catalog.
type CalculationRequest struct {
	HardwareID string                `json:"hardware_id"`
	ModelID    string                `json:"model_id"`
	Input      calc.CalculationInput `json:"input"`
}

// ConcurrencyRequest asks the server for a max-concurrency estimate.
type ConcurrencyRequest struct {
	HardwareID string                `json:"hardware_id"`
	ModelID    string                `json:"model_id"`
	Input      calc.ConcurrencyInput `json:"input"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// normalize canonicalizes precision spellings so non-Go clients may send
// "FP16" or "Int8". Field validation proper stays with the engine.
func (r *CalculationRequest) normalize() error {
	p, err := calc.ParsePrecision(string(r.Input.AttentionPrecision))
	if err != nil {
		return fmt.Errorf("attention_precision: %w", err)
	}
	r.Input.AttentionPrecision = p

	p, err = calc.ParsePrecision(string(r.Input.FFNPrecision))
	if err != nil {
		return fmt.Errorf("ffn_precision: %w", err)
	}
	r.Input.FFNPrecision = p
	return nil
}

func (r *ConcurrencyRequest) normalize() error {
	p, err := calc.ParsePrecision(string(r.Input.Precision))
	if err != nil {
		return fmt.Errorf("precision: %w", err)
	}
	r.Input.Precision = p
	return nil
}

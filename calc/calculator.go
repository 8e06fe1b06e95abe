package calc

import "context"

// Calculator is the computation contract shared by the in-process engine and
// the remote service client, so commands can swap one for the other. The
// remote side must be numerically interchangeable with the local one.
type Calculator interface {
	Utilization(ctx context.Context, in CalculationInput, hw Hardware, m Model) (*CalculationResult, error)
	Concurrency(ctx context.Context, in ConcurrencyInput, hw Hardware, m Model) (*ConcurrencyResult, error)
}

// Local runs calculations in process via the pure entry points. The context
// is unused; it exists to satisfy the shared contract.
type Local struct{}

func (Local) Utilization(_ context.Context, in CalculationInput, hw Hardware, m Model) (*CalculationResult, error) {
	return ComputeUtilization(in, hw, m)
}

func (Local) Concurrency(_ context.Context, in ConcurrencyInput, hw Hardware, m Model) (*ConcurrencyResult, error) {
	return ComputeMaxConcurrency(in, hw, m)
}

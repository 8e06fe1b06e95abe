package sweep

import (
	"context"
	"sort"
	"sync"

	"github.com/llmcalc/llmcalc/calc"
)

// Outcome pairs a scenario with its calculation result. Err is set when the
// scenario failed; its Result is nil.
type Outcome struct {
	Name   string
	Input  calc.CalculationInput
	Result *calc.CalculationResult
	Err    error
}

// Run executes every scenario against the calculator, one goroutine per
// scenario, and returns outcomes ranked by MFU descending. A failed scenario
// does not abort the batch; it sorts last and carries its error.
func Run(ctx context.Context, calculator calc.Calculator, spec *Spec, hw calc.Hardware, m calc.Model) ([]Outcome, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	scenarios := spec.expand()
	outcomes := make([]Outcome, len(scenarios))

	var wg sync.WaitGroup
	for i, sc := range scenarios {
		wg.Add(1)
		go func(i int, sc Scenario) {
			defer wg.Done()
			in := spec.inputFor(sc)
			res, err := calculator.Utilization(ctx, in, hw, m)
			outcomes[i] = Outcome{Name: sc.Name, Input: in, Result: res, Err: err}
		}(i, sc)
	}
	wg.Wait()

	sort.SliceStable(outcomes, func(i, j int) bool {
		a, b := outcomes[i], outcomes[j]
		if (a.Err == nil) != (b.Err == nil) {
			return a.Err == nil
		}
		if a.Err != nil {
			return false
		}
		return a.Result.MFUPercent > b.Result.MFUPercent
	})
	return outcomes, nil
}

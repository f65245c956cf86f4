package forms

import (
	"context"
	"math"
	"strconv"

	"budget/internal/core"
	"budget/internal/state"
)

// BudgetForm captures a single total budget.
type BudgetForm struct {
	budget float64
}

func NewBudgetForm() *BudgetForm {
	return &BudgetForm{}
}

// HandleChange stores the raw number-input value; empty or unparsable input
// becomes NaN.
func (f *BudgetForm) HandleChange(raw string) {
	f.budget = core.ParseNumberInput(raw)
}

func (f *BudgetForm) Budget() float64 {
	return f.budget
}

// IsInvalid drives the disabled state of the submit control.
func (f *BudgetForm) IsInvalid() bool {
	return math.IsNaN(f.budget) || f.budget <= 0
}

// InputValue renders the current value for the number input.
func (f *BudgetForm) InputValue() string {
	if math.IsNaN(f.budget) {
		return ""
	}
	return strconv.FormatFloat(f.budget, 'f', -1, 64)
}

// Submit dispatches add-budget. The draft is kept as is afterwards.
func (f *BudgetForm) Submit(ctx context.Context, d state.Dispatcher) error {
	if f.IsInvalid() {
		return ErrInvalidBudget
	}
	return d.Dispatch(ctx, state.AddBudget(f.budget))
}

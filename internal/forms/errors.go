// Package forms holds the draft input state of the budget and expense
// forms and the validation run on submit. Forms never mutate canonical data;
// they dispatch actions to a state.Container.
package forms

import "errors"

// Validation errors. Their messages are shown to the user verbatim.
var (
	ErrIncompleteForm = errors.New("All fields are required")
	ErrOverBudget     = errors.New("This expense is over budget")
	ErrInvalidBudget  = errors.New("Budget must be a number greater than zero")
)

// IsValidation reports whether err is a user-facing validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrIncompleteForm) ||
		errors.Is(err, ErrOverBudget) ||
		errors.Is(err, ErrInvalidBudget)
}

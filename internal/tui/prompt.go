package tui

import (
	"context"

	"budget/internal/core"
	"budget/internal/forms"
	"budget/internal/state"

	"github.com/charmbracelet/huh"
)

// Menu choices.
const (
	ChoiceAdd    = "add"
	ChoiceEdit   = "edit"
	ChoiceDelete = "delete"
	ChoiceFilter = "filter"
	ChoiceReset  = "reset"
	ChoiceQuit   = "quit"
)

// ExpenseInput holds the raw text of the expense fields while prompting.
type ExpenseInput struct {
	Name     string
	Amount   string
	Category string
	Date     string
}

func inputFromDraft(d core.DraftExpense) ExpenseInput {
	return ExpenseInput{
		Name:     d.ExpenseName,
		Amount:   formatAmountInput(d.Amount),
		Category: d.Category,
		Date:     d.Date.InputValue(),
	}
}

// Prompter asks the user for input. Returning huh.ErrUserAborted cancels the
// current step.
type Prompter interface {
	Budget(ctx context.Context, value *string) error
	Action(ctx context.Context, st state.State, choice *string) error
	Expense(ctx context.Context, legend string, in *ExpenseInput) error
	PickExpense(ctx context.Context, title string, st state.State, id *string) error
	PickCategory(ctx context.Context, id *string) error
	Confirm(ctx context.Context, title string) (bool, error)
}

type huhPrompter struct {
	cats       core.Categories
	accessible bool
}

// NewPrompter returns the interactive terminal prompter.
func NewPrompter(cats core.Categories, accessible bool) Prompter {
	return &huhPrompter{cats: cats, accessible: accessible}
}

func (p *huhPrompter) run(ctx context.Context, group *huh.Group) error {
	return huh.NewForm(group).
		WithAccessible(p.accessible).
		RunWithContext(ctx)
}

func (p *huhPrompter) Budget(ctx context.Context, value *string) error {
	return p.run(ctx, huh.NewGroup(
		huh.NewInput().
			Title("Define budget").
			Placeholder("define your budget").
			Value(value).
			Validate(func(s string) error {
				f := forms.NewBudgetForm()
				f.HandleChange(s)
				if f.IsInvalid() {
					return forms.ErrInvalidBudget
				}
				return nil
			}),
	))
}

func (p *huhPrompter) Action(ctx context.Context, st state.State, choice *string) error {
	return p.run(ctx, huh.NewGroup(
		huh.NewSelect[string]().Title("What next?").Options(actionOptions(st)...).Value(choice),
	))
}

// actionOptions offers edit and delete only when the filtered list has rows
// to pick from.
func actionOptions(st state.State) []huh.Option[string] {
	opts := []huh.Option[string]{huh.NewOption("New expense", ChoiceAdd)}
	if len(st.FilteredExpenses()) > 0 {
		opts = append(opts,
			huh.NewOption("Edit expense", ChoiceEdit),
			huh.NewOption("Delete expense", ChoiceDelete))
	}
	return append(opts,
		huh.NewOption("Filter expenses", ChoiceFilter),
		huh.NewOption("Reset app", ChoiceReset),
		huh.NewOption("Quit", ChoiceQuit))
}

func (p *huhPrompter) Expense(ctx context.Context, legend string, in *ExpenseInput) error {
	cats := []huh.Option[string]{huh.NewOption("-- Select an option --", "")}
	for _, c := range p.cats {
		cats = append(cats, huh.NewOption(c.Name, c.ID))
	}

	return p.run(ctx, huh.NewGroup(
		huh.NewInput().Title("Expense name:").Placeholder("Write expense name").Value(&in.Name),
		huh.NewInput().Title("Quantity:").Placeholder("write the amount of the expense").Value(&in.Amount),
		huh.NewSelect[string]().Title("Category:").Options(cats...).Value(&in.Category),
		huh.NewInput().Title("Date expense:").Placeholder(core.DateLayout).Value(&in.Date),
	).Title(legend))
}

func (p *huhPrompter) PickExpense(ctx context.Context, title string, st state.State, id *string) error {
	opts := make([]huh.Option[string], 0, len(st.Expenses))
	for _, e := range st.FilteredExpenses() {
		opts = append(opts, huh.NewOption(ExpenseLine(e, p.cats), e.ID))
	}
	return p.run(ctx, huh.NewGroup(
		huh.NewSelect[string]().Title(title).Options(opts...).Value(id),
	))
}

func (p *huhPrompter) PickCategory(ctx context.Context, id *string) error {
	opts := []huh.Option[string]{huh.NewOption("-- All categories --", "")}
	for _, c := range p.cats {
		opts = append(opts, huh.NewOption(c.Name, c.ID))
	}
	return p.run(ctx, huh.NewGroup(
		huh.NewSelect[string]().Title("Filter expenses").Options(opts...).Value(id),
	))
}

func (p *huhPrompter) Confirm(ctx context.Context, title string) (bool, error) {
	var ok bool
	err := p.run(ctx, huh.NewGroup(
		huh.NewConfirm().Title(title).Affirmative("Yes").Negative("No").Value(&ok),
	))
	return ok, err
}

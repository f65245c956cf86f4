// Package tui is a terminal front end for the budget planner. It drives the
// same forms and state container as the web UI.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"

	"budget/internal/core"
	"budget/internal/forms"
	"budget/internal/log"
	"budget/internal/state"

	"github.com/charmbracelet/huh"
)

const invalidDateMessage = "Date must use the YYYY-MM-DD format"

type App struct {
	store  state.Container
	cats   core.Categories
	prompt Prompter
	out    io.Writer
	now    func() time.Time
	logger *log.Logger

	budget    *forms.BudgetForm
	expense   *forms.ExpenseForm
	hadBudget bool
}

type Option func(*App)

func WithPrompter(p Prompter) Option {
	return func(a *App) { a.prompt = p }
}

func WithOutput(w io.Writer) Option {
	return func(a *App) { a.out = w }
}

func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

func WithLogger(l *log.Logger) Option {
	return func(a *App) { a.logger = l }
}

func New(store state.Container, cats core.Categories, opts ...Option) *App {
	a := &App{
		store:  store,
		cats:   cats,
		out:    os.Stdout,
		now:    time.Now,
		logger: log.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.prompt == nil {
		a.prompt = NewPrompter(cats, false)
	}
	a.logger = a.logger.WithComponent(log.ComponentTUI)
	a.budget = forms.NewBudgetForm()
	a.expense = forms.NewExpenseForm(a.now)
	return a
}

func aborted(err error) bool {
	return errors.Is(err, huh.ErrUserAborted)
}

// Run shows the tracker and prompts until the user quits, aborts the menu or
// ctx is done.
func (a *App) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		st, err := a.store.State(ctx)
		if err != nil {
			return fmt.Errorf("read state: %w", err)
		}
		if a.hadBudget && !st.HasBudget() {
			a.budget = forms.NewBudgetForm()
		}
		a.hadBudget = st.HasBudget()

		fmt.Fprintln(a.out, Summary(st, a.cats))

		if !st.HasBudget() {
			if err := a.defineBudget(ctx); err != nil {
				if aborted(err) {
					return nil
				}
				return err
			}
			continue
		}

		var choice string
		if err := a.prompt.Action(ctx, st, &choice); err != nil {
			if aborted(err) {
				return nil
			}
			return err
		}

		switch choice {
		case ChoiceAdd:
			err = a.editExpense(ctx, "")
		case ChoiceEdit:
			err = a.pickAndEdit(ctx, st)
		case ChoiceDelete:
			err = a.deleteExpense(ctx, st)
		case ChoiceFilter:
			err = a.filter(ctx)
		case ChoiceReset:
			err = a.reset(ctx)
		case ChoiceQuit:
			return nil
		}
		if err != nil && !aborted(err) {
			return err
		}
	}
	return nil
}

func (a *App) defineBudget(ctx context.Context) error {
	value := a.budget.InputValue()
	if err := a.prompt.Budget(ctx, &value); err != nil {
		return err
	}
	a.budget.HandleChange(value)

	err := a.budget.Submit(ctx, a.store)
	if forms.IsValidation(err) {
		fmt.Fprintln(a.out, ErrorMessage(err.Error()))
		return nil
	}
	return err
}

func (a *App) pickAndEdit(ctx context.Context, st state.State) error {
	var id string
	if err := a.prompt.PickExpense(ctx, "Edit expense", st, &id); err != nil {
		return err
	}
	if id == "" {
		return nil
	}
	return a.editExpense(ctx, id)
}

// editExpense opens the expense dialog. An empty id creates a new expense.
func (a *App) editExpense(ctx context.Context, id string) error {
	open := state.ShowModal()
	if id != "" {
		open = state.GetExpenseByID(id)
	}
	if err := a.store.Dispatch(ctx, open); err != nil {
		return err
	}

	a.expense = forms.NewExpenseForm(a.now)
	if id != "" {
		st, err := a.store.State(ctx)
		if err != nil {
			return err
		}
		if err := a.expense.LoadForEdit(st); err != nil {
			return err
		}
	}

	for {
		if msg := a.expense.Error(); msg != "" {
			fmt.Fprintln(a.out, ErrorMessage(msg))
		}

		in := inputFromDraft(a.expense.Draft())
		if err := a.prompt.Expense(ctx, forms.Legend(id != ""), &in); err != nil {
			if aborted(err) {
				return a.store.Dispatch(ctx, state.CloseModal())
			}
			return err
		}

		a.expense.HandleChange(forms.FieldExpenseName, in.Name)
		a.expense.HandleChange(forms.FieldAmount, in.Amount)
		a.expense.HandleChange(forms.FieldCategory, in.Category)
		d, err := core.ParseDate(in.Date)
		if err != nil {
			fmt.Fprintln(a.out, ErrorMessage(invalidDateMessage))
			continue
		}
		a.expense.HandleChangeDate(d)

		err = a.expense.Submit(ctx, a.store)
		switch {
		case forms.IsValidation(err):
			a.logger.DebugContext(ctx, "Expense rejected", log.FieldError, err.Error())
			continue
		case err != nil:
			return err
		}
		return nil
	}
}

func (a *App) deleteExpense(ctx context.Context, st state.State) error {
	var id string
	if err := a.prompt.PickExpense(ctx, "Delete expense", st, &id); err != nil {
		return err
	}
	if id == "" {
		return nil
	}
	ok, err := a.prompt.Confirm(ctx, "Delete this expense?")
	if err != nil || !ok {
		return err
	}
	return a.store.Dispatch(ctx, state.RemoveExpense(id))
}

func (a *App) filter(ctx context.Context) error {
	var id string
	if err := a.prompt.PickCategory(ctx, &id); err != nil {
		return err
	}
	return a.store.Dispatch(ctx, state.FilterCategory(id))
}

func (a *App) reset(ctx context.Context) error {
	ok, err := a.prompt.Confirm(ctx, "Reset the budget and remove every expense?")
	if err != nil || !ok {
		return err
	}
	return a.store.Dispatch(ctx, state.ResetApp())
}

func formatAmountInput(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

package http

import (
	"bytes"
	"fmt"
	"html/template"

	"budget/internal/core"
	"budget/internal/forms"
	"budget/internal/session"
	"budget/internal/state"
)

var templateFuncs = template.FuncMap{
	"money":    core.FormatAmount,
	"barWidth": barWidth,
}

type (
	pageView struct {
		State        state.State
		HasBudget    bool
		Budget       budgetView
		Spent        float64
		Remaining    float64
		SpentPercent float64
		Overspent    bool
		Categories   core.Categories
		Expenses     []expenseRow
		Modal        bool
		Expense      expenseView
	}

	budgetView struct {
		Value   string
		Invalid bool
		Message string
	}

	expenseView struct {
		Legend      string
		SubmitLabel string
		Error       string
		Draft       core.DraftExpense
		Amount      string
		Date        string
		Categories  core.Categories
	}

	expenseRow struct {
		ID           string
		Name         string
		Amount       string
		Date         string
		Icon         string
		CategoryName string
	}
)

func newBudgetView(f *forms.BudgetForm, message string) budgetView {
	return budgetView{
		Value:   f.InputValue(),
		Invalid: f.IsInvalid(),
		Message: message,
	}
}

func newExpenseView(f *forms.ExpenseForm, editing bool, cats core.Categories) expenseView {
	d := f.Draft()
	return expenseView{
		Legend:      forms.Legend(editing),
		SubmitLabel: forms.SubmitLabel(editing),
		Error:       f.Error(),
		Draft:       d,
		Amount:      numberValue(d.Amount),
		Date:        d.Date.InputValue(),
		Categories:  cats,
	}
}

// newPageView builds the app view. The caller holds the session lock and has
// synced it with st.
func newPageView(st state.State, sess *session.Session, cats core.Categories, budgetMessage string) pageView {
	remaining := st.RemainingBudget()
	v := pageView{
		State:        st,
		HasBudget:    st.HasBudget(),
		Budget:       newBudgetView(sess.Budget, budgetMessage),
		Spent:        st.TotalExpenses(),
		Remaining:    remaining,
		SpentPercent: st.SpentPercentage(),
		Overspent:    remaining < 0,
		Categories:   cats,
		Modal:        st.Modal,
		Expense:      newExpenseView(sess.Expense, sess.Editing(), cats),
	}

	for _, e := range st.FilteredExpenses() {
		row := expenseRow{
			ID:     e.ID,
			Name:   e.ExpenseName,
			Amount: core.FormatAmount(e.Amount),
			Date:   e.Date.Long(),
		}
		if c, ok := cats.ByID(e.Category); ok {
			row.Icon = c.Icon
			row.CategoryName = c.Name
		}
		v.Expenses = append(v.Expenses, row)
	}
	return v
}

func (s *Server) execute(name string, data any) ([]byte, error) {
	if s.templates == nil {
		return nil, fmt.Errorf("templates not loaded")
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

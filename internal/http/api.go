package http

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"budget/internal/core"
	"budget/internal/forms"
	"budget/internal/log"
	"budget/internal/state"

	"github.com/go-chi/chi/v5"
)

type (
	apiState struct {
		Budget          *float64     `json:"budget"`
		Expenses        []apiExpense `json:"expenses"`
		UpdatingID      string       `json:"updatingId"`
		Modal           bool         `json:"modal"`
		CurrentCategory string       `json:"currentCategory"`
		Spent           *float64     `json:"spent"`
		Remaining       *float64     `json:"remaining"`
		SpentPercentage float64      `json:"spentPercentage"`
	}

	apiExpense struct {
		ID          string   `json:"id"`
		Amount      *float64 `json:"amount"`
		ExpenseName string   `json:"expenseName"`
		Category    string   `json:"category"`
		Date        string   `json:"date"`
	}

	apiError struct {
		Error string `json:"error"`
	}
)

// finite maps values JSON cannot carry to null.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func newAPIState(st state.State) apiState {
	out := apiState{
		Budget:          finite(st.Budget),
		Expenses:        make([]apiExpense, 0, len(st.Expenses)),
		UpdatingID:      st.UpdatingID,
		Modal:           st.Modal,
		CurrentCategory: st.CurrentCategory,
		Spent:           finite(st.TotalExpenses()),
		Remaining:       finite(st.RemainingBudget()),
		SpentPercentage: st.SpentPercentage(),
	}
	for _, e := range st.Expenses {
		out.Expenses = append(out.Expenses, apiExpense{
			ID:          e.ID,
			Amount:      finite(e.Amount),
			ExpenseName: e.ExpenseName,
			Category:    e.Category,
			Date:        e.Date.InputValue(),
		})
	}
	return out
}

// createOnly hides the edit selection so a form submitted through it always
// creates a new expense.
type createOnly struct {
	state.Container
}

func (c createOnly) State(ctx context.Context) (state.State, error) {
	st, err := c.Container.State(ctx)
	st.UpdatingID = ""
	return st, err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, apiError{Error: msg})
}

func (s *Server) apiLogger(ctx context.Context) *log.Logger {
	return log.FromContext(ctx).WithComponent(log.ComponentAPI)
}

func (s *Server) handleAPIState(w http.ResponseWriter, r *http.Request) {
	s.writeState(w, r, http.StatusOK)
}

func (s *Server) writeState(w http.ResponseWriter, r *http.Request, status int) {
	ctx := r.Context()
	st, err := s.store.State(ctx)
	if err != nil {
		s.apiLogger(ctx).ErrorContext(ctx, "Failed to read state",
			log.FieldOperation, log.OpRead,
			log.FieldError, err.Error())
		writeJSONError(w, http.StatusInternalServerError, "state unavailable")
		return
	}
	writeJSON(w, status, newAPIState(st))
}

func (s *Server) handleAPICategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.categories)
}

func (s *Server) handleAPIBudget(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	f := forms.NewBudgetForm()
	f.HandleChange(p.Get(fieldBudget))
	if err := f.Submit(ctx, s.store); err != nil {
		s.apiFailure(w, r, err)
		return
	}
	s.writeState(w, r, http.StatusOK)
}

func (s *Server) handleAPICreateExpense(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	f := forms.NewExpenseForm(s.now)
	for _, name := range expenseFields {
		if p.Has(name) {
			f.HandleChange(name, p.Get(name))
		}
	}
	if p.Has(fieldDate) {
		d, err := core.ParseDate(p.Get(fieldDate))
		if err != nil {
			writeJSONError(w, http.StatusUnprocessableEntity, "Date must use the YYYY-MM-DD format")
			return
		}
		f.HandleChangeDate(d)
	}

	if err := f.Submit(ctx, createOnly{s.store}); err != nil {
		s.apiFailure(w, r, err)
		return
	}
	s.writeState(w, r, http.StatusCreated)
}

func (s *Server) handleAPIDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Dispatch(r.Context(), state.RemoveExpense(id)); err != nil {
		s.apiFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) apiFailure(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	switch {
	case forms.IsValidation(err):
		s.apiLogger(ctx).InfoContext(ctx, "API request rejected",
			log.FieldOperation, log.OpValidate,
			log.FieldError, err.Error())
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, state.ErrExpenseNotFound):
		writeJSONError(w, http.StatusNotFound, "expense not found")
	default:
		s.apiLogger(ctx).ErrorContext(ctx, "API request failed",
			log.FieldOperation, log.OpDispatch,
			log.FieldError, err.Error())
		writeJSONError(w, http.StatusInternalServerError, "internal error")
	}
}

package http

import (
	"net/http"
	"net/url"

	"budget/internal/core"
	"budget/internal/forms"
	"budget/internal/log"
	"budget/internal/state"

	"github.com/go-chi/chi/v5"
)

const fieldDate = "date"

var expenseFields = []string{forms.FieldAmount, forms.FieldExpenseName, forms.FieldCategory}

// applyExpenseFields copies the posted draft fields into the form. A field
// that was not posted is left alone.
func applyExpenseFields(f *forms.ExpenseForm, form url.Values) error {
	for _, name := range expenseFields {
		if form.Has(name) {
			f.HandleChange(name, stripControl(form.Get(name)))
		}
	}
	if form.Has(fieldDate) {
		d, err := core.ParseDate(form.Get(fieldDate))
		if err != nil {
			return err
		}
		f.HandleChangeDate(d)
	}
	return nil
}

// handleExpenseField records edits of the text, amount and category inputs.
func (s *Server) handleExpenseField(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	sess := s.session(w, r)
	sess.Lock()
	defer sess.Unlock()

	for _, name := range expenseFields {
		if r.PostForm.Has(name) {
			sess.Expense.HandleChange(name, stripControl(r.PostForm.Get(name)))
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleExpenseDate records a date picker change; an empty value clears it.
func (s *Server) handleExpenseDate(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	d, err := core.ParseDate(r.PostForm.Get(fieldDate))
	if err != nil {
		BadRequestError("Invalid date").Write(w)
		return
	}

	sess := s.session(w, r)
	sess.Lock()
	defer sess.Unlock()

	sess.Expense.HandleChangeDate(d)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExpenseSubmit(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	sess := s.session(w, r)
	sess.Lock()
	defer sess.Unlock()

	ctx := r.Context()
	if err := applyExpenseFields(sess.Expense, r.PostForm); err != nil {
		BadRequestError("Invalid date").Write(w)
		return
	}

	editing := sess.Editing()
	draft := sess.Expense.Draft()
	if err := sess.Expense.Submit(ctx, s.store); err != nil {
		if !forms.IsValidation(err) {
			s.dispatchError(w, r, err)
			return
		}
		log.NewStructuredLogger(log.FromContext(ctx)).LogValidation(ctx, "expense", err,
			log.NewFields().
				WithSession(sess.ID).
				WithExpense(draft.ExpenseName, draft.Amount, draft.Category))
		s.respond(w, r, sess, NewHTMXResponse())
		return
	}

	log.FromContext(ctx).InfoContext(ctx, "Expense saved",
		log.FieldSessionID, sess.ID,
		log.FieldExpenseName, draft.ExpenseName,
		log.FieldCategory, draft.Category,
		"updated", editing)

	s.respond(w, r, sess, NewHTMXResponse().TriggerExpenseSaved(editing))
}

func (s *Server) handleExpenseCancel(w http.ResponseWriter, r *http.Request) {
	s.dispatchAndRespond(w, r, state.CloseModal(), NewHTMXResponse().TriggerModalClosed())
}

func (s *Server) handleExpenseNew(w http.ResponseWriter, r *http.Request) {
	s.dispatchAndRespond(w, r, state.ShowModal(), NewHTMXResponse())
}

func (s *Server) handleExpenseEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.dispatchAndRespond(w, r, state.GetExpenseByID(id), NewHTMXResponse())
}

func (s *Server) handleExpenseDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.dispatchAndRespond(w, r, state.RemoveExpense(id), NewHTMXResponse().TriggerExpenseRemoved(id))
}

func (s *Server) dispatchAndRespond(w http.ResponseWriter, r *http.Request, a state.Action, resp *HTMXResponseBuilder) {
	sess := s.session(w, r)
	sess.Lock()
	defer sess.Unlock()

	if err := s.store.Dispatch(r.Context(), a); err != nil {
		s.dispatchError(w, r, err)
		return
	}
	s.respond(w, r, sess, resp)
}


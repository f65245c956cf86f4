package http

import (
	"errors"
	"net/http"

	"budget/internal/forms"
	"budget/internal/log"
)

const fieldBudget = "budget"

// handleBudgetInput records a keystroke in the budget input and returns the
// submit control with its disabled state.
func (s *Server) handleBudgetInput(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	sess := s.session(w, r)
	sess.Lock()
	defer sess.Unlock()

	sess.Budget.HandleChange(r.PostForm.Get(fieldBudget))

	body, err := s.execute("budget_submit", newBudgetView(sess.Budget, ""))
	if err != nil {
		s.internalError(w, r, "Failed to render budget control", err)
		return
	}
	NewHTMXResponse().BodyHTML(body).Write(w)
}

func (s *Server) handleBudgetSubmit(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	sess := s.session(w, r)
	sess.Lock()
	defer sess.Unlock()

	ctx := r.Context()
	if r.PostForm.Has(fieldBudget) {
		sess.Budget.HandleChange(r.PostForm.Get(fieldBudget))
	}

	err := sess.Budget.Submit(ctx, s.store)
	switch {
	case errors.Is(err, forms.ErrInvalidBudget):
		log.NewStructuredLogger(log.FromContext(ctx)).LogValidation(ctx, "budget", err,
			log.NewFields().WithSession(sess.ID))
		if !isHTMX(r) {
			s.renderPage(w, r, sess, http.StatusUnprocessableEntity, err.Error())
			return
		}
		v, verr := s.view(ctx, sess, err.Error())
		if verr != nil {
			s.internalError(w, r, "Failed to read state", verr)
			return
		}
		body, rerr := s.execute("app", v)
		if rerr != nil {
			s.internalError(w, r, "Failed to render app", rerr)
			return
		}
		NewHTMXResponse().BodyHTML(body).Write(w)
		return
	case err != nil:
		s.dispatchError(w, r, err)
		return
	}

	s.respond(w, r, sess, NewHTMXResponse().TriggerBudgetDefined(sess.Budget.Budget()))
}

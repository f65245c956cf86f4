package http

import (
	"context"
	"errors"
	"net/http"

	"budget/internal/forms"
	"budget/internal/log"
	"budget/internal/session"
	"budget/internal/state"
)

// session returns the caller's session, issuing a cookie when a new one was
// created or the presented id was unusable.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *session.Session {
	var id string
	if c, err := r.Cookie(sessionCookie); err == nil {
		id = c.Value
	}

	sess, _ := s.sessions.Get(id)
	if sess.ID != id {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return sess
}

// view reads the container state, syncs the session forms and builds the
// page view. The caller holds the session lock.
func (s *Server) view(ctx context.Context, sess *session.Session, budgetMessage string) (pageView, error) {
	st, err := s.store.State(ctx)
	if err != nil {
		return pageView{}, err
	}
	if err := sess.Sync(st); err != nil {
		log.FromContext(ctx).WarnContext(ctx, "Selected expense could not be loaded",
			log.FieldSessionID, sess.ID,
			log.FieldExpenseID, st.UpdatingID,
			log.FieldError, err.Error())
	}
	return newPageView(st, sess, s.categories, budgetMessage), nil
}

// respond finishes a mutation. htmx gets the re-rendered app partial; a plain
// form post is redirected back to the page.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, sess *session.Session, resp *HTMXResponseBuilder) {
	if !isHTMX(r) {
		resp.Status(http.StatusSeeOther).Header("Location", "/").Write(w)
		return
	}

	ctx := r.Context()
	v, err := s.view(ctx, sess, "")
	if err != nil {
		s.internalError(w, r, "Failed to read state", err)
		return
	}
	body, err := s.execute("app", v)
	if err != nil {
		s.internalError(w, r, "Failed to render app", err)
		return
	}
	resp.BodyHTML(body).Write(w)
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	log.NewStructuredLogger(log.FromContext(ctx)).
		LogError(ctx, msg, err, log.ComponentHTTP, log.OpRender, log.NewFields())
	InternalServerError("Something went wrong").Write(w)
}

// dispatchError maps a failed dispatch to a response.
func (s *Server) dispatchError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, state.ErrExpenseNotFound) {
		NotFoundError("Expense not found").Write(w)
		return
	}
	s.internalError(w, r, "Dispatch failed", err)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	sess.Lock()
	defer sess.Unlock()

	s.renderPage(w, r, sess, http.StatusOK, "")
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, sess *session.Session, status int, budgetMessage string) {
	v, err := s.view(r.Context(), sess, budgetMessage)
	if err != nil {
		s.internalError(w, r, "Failed to read state", err)
		return
	}
	body, err := s.execute("index.html", v)
	if err != nil {
		s.internalError(w, r, "Failed to render page", err)
		return
	}
	NewHTMXResponse().Status(status).BodyHTML(body).Write(w)
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	sess := s.session(w, r)
	sess.Lock()
	defer sess.Unlock()

	category := sanitizeInput(r.PostForm.Get(forms.FieldCategory))
	if err := s.store.Dispatch(r.Context(), state.FilterCategory(category)); err != nil {
		s.dispatchError(w, r, err)
		return
	}
	s.respond(w, r, sess, NewHTMXResponse())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	sess.Lock()
	defer sess.Unlock()

	ctx := r.Context()
	if err := s.store.Dispatch(ctx, state.ResetApp()); err != nil {
		s.dispatchError(w, r, err)
		return
	}
	log.FromContext(ctx).InfoContext(ctx, "App reset", log.FieldSessionID, sess.ID)

	if isHTMX(r) {
		NewHTMXResponse().Refresh().Write(w)
		return
	}
	s.respond(w, r, sess, NewHTMXResponse())
}

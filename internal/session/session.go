// Package session keeps the per-browser form drafts. The canonical budget
// data lives in the state container; a session only holds what the user is
// typing.
package session

import (
	"context"
	"sync"
	"time"

	"budget/internal/forms"
	"budget/internal/log"
	"budget/internal/state"

	"github.com/google/uuid"
)

// Session holds one browser's forms. Callers hold the lock while they touch
// the forms.
type Session struct {
	sync.Mutex

	ID      string
	Budget  *forms.BudgetForm
	Expense *forms.ExpenseForm

	now        func() time.Time
	modalOpen  bool
	updatingID string
	hadBudget  bool
}

func newSession(id string, now func() time.Time) *Session {
	return &Session{
		ID:      id,
		Budget:  forms.NewBudgetForm(),
		Expense: forms.NewExpenseForm(now),
		now:     now,
	}
}

// Sync reconciles the forms with the container state. Opening the modal
// remounts the expense form; a newly selected expense is loaded for editing.
// Losing the budget (a reset) remounts both forms.
func (s *Session) Sync(st state.State) error {
	if s.hadBudget && !st.HasBudget() {
		s.Budget = forms.NewBudgetForm()
		s.Expense = forms.NewExpenseForm(s.now)
	}
	s.hadBudget = st.HasBudget()

	opening := st.Modal && !s.modalOpen
	if opening {
		s.Expense = forms.NewExpenseForm(s.now)
	}

	var err error
	if st.UpdatingID != "" && (opening || st.UpdatingID != s.updatingID) {
		err = s.Expense.LoadForEdit(st)
	}

	s.modalOpen = st.Modal
	s.updatingID = st.UpdatingID
	return err
}

// Editing reports whether the last synced state had an expense selected.
func (s *Session) Editing() bool {
	return s.updatingID != ""
}

// Registry maps session ids to sessions with LRU eviction and an idle TTL.
type Registry struct {
	sessions *lru[*Session]
	now      func() time.Time
	logger   *log.Logger
}

type Option func(*Registry)

// WithClock overrides the time source, used for expiry and fresh drafts.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

func WithLogger(l *log.Logger) Option {
	return func(r *Registry) { r.logger = l.WithComponent(log.ComponentSession) }
}

func NewRegistry(maxSessions int, ttl time.Duration, opts ...Option) *Registry {
	r := &Registry{now: time.Now, logger: log.Discard()}
	for _, opt := range opts {
		opt(r)
	}
	if maxSessions < 1 {
		maxSessions = 1
	}
	r.sessions = newLRU[*Session](maxSessions, ttl, r.now)
	return r
}

// Get returns the session for id. A malformed id is replaced with a fresh
// one; unknown or expired ids yield a new session. created reports that case.
func (r *Registry) Get(id string) (s *Session, created bool) {
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	s, created = r.sessions.getOrCreate(id, func() *Session {
		return newSession(id, r.now)
	})
	if created {
		r.logger.Debug("Session created", log.FieldSessionID, s.ID)
	}
	return s, created
}

func (r *Registry) Delete(id string) {
	r.sessions.delete(id)
}

func (r *Registry) Len() int {
	return r.sessions.size()
}

// CleanExpired drops idle sessions and returns how many were removed.
func (r *Registry) CleanExpired() int {
	return r.sessions.cleanExpired()
}

// Run cleans expired sessions every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := r.CleanExpired(); n > 0 {
				r.logger.Info("Expired sessions removed",
					log.FieldOperation, log.OpCleanup,
					log.FieldCount, n)
			}
		case <-ctx.Done():
			return nil
		}
	}
}

package core

import (
	"errors"
	"time"
)

// DateLayout is the wire format used by date inputs.
const DateLayout = "2006-01-02"

type (
	Date struct {
		time.Time
	}

	// DraftExpense is the form-local copy of an expense before it is committed.
	DraftExpense struct {
		Amount      float64 `json:"amount"`
		ExpenseName string  `json:"expenseName"`
		Category    string  `json:"category"` // Category id
		Date        Date    `json:"date"`
	}

	// Expense is a committed expense; the ID is assigned by the state container.
	Expense struct {
		ID string `json:"id,omitempty"`
		DraftExpense
	}
)

var ErrInvalidDate = errors.New("invalid date")

// NewDraft returns an empty draft dated at now.
func NewDraft(now time.Time) DraftExpense {
	return DraftExpense{
		Amount:      0,
		ExpenseName: "",
		Category:    "",
		Date:        Date{Time: now},
	}
}

// HasEmptyField reports whether any field of the draft holds the empty string.
// Only the string fields can match: a zero or NaN amount and a cleared date pass.
func (d DraftExpense) HasEmptyField() bool {
	for _, v := range d.fieldValues() {
		if s, ok := v.(string); ok && s == "" {
			return true
		}
	}
	return false
}

func (d DraftExpense) fieldValues() []any {
	return []any{d.Amount, d.ExpenseName, d.Category, d.Date}
}

// HasEmptyField on a committed expense also considers the id.
func (e Expense) HasEmptyField() bool {
	return e.ID == "" || e.DraftExpense.HasEmptyField()
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string. The empty string yields the zero date,
// matching a cleared date picker.
func ParseDate(s string) (Date, error) {
	if s == "" {
		return Date{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// IsEmpty returns true if the date is zero (cleared picker)
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// InputValue formats the date for an <input type="date">.
func (d Date) InputValue() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// Long formats the date for display, e.g. "Monday, March 3, 2025".
func (d Date) Long() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("Monday, January 2, 2006")
}

// SameDay reports whether both dates fall on the same calendar day.
func (d Date) SameDay(o Date) bool {
	y1, m1, d1 := d.Date()
	y2, m2, d2 := o.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

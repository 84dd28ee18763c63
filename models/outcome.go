package models

import (
	"fmt"
	"strconv"
	"time"
)

// Outcome is the declared result for one market on one day, covering both sessions.
type Outcome struct {
	MarketID   int64      `db:"market_id" json:"market_id"`
	Date       time.Time  `db:"outcome_date" json:"date"`
	OpenPanel  string     `db:"open_panel" json:"open_panel"`
	ClosePanel string     `db:"close_panel" json:"close_panel"`
	OpenAnk    int        `db:"open_ank" json:"open_ank"`
	CloseAnk   int        `db:"close_ank" json:"close_ank"`
	Jodi       string     `db:"jodi" json:"jodi"`
	Declared   bool       `db:"declared" json:"declared"`
	DeclaredAt *time.Time `db:"declared_at" json:"declared_at,omitempty"`
}

// ParsePanel checks that s is exactly three ASCII digits.
func ParsePanel(s string) (string, error) {
	if len(s) != 3 {
		return "", fmt.Errorf("%w: %q must be exactly 3 digits", ErrInvalidPanel, s)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return "", fmt.Errorf("%w: %q must be exactly 3 digits", ErrInvalidPanel, s)
		}
	}
	return s, nil
}

// Ank is the digit sum of a valid panel mod 10.
func Ank(panel string) int {
	sum := 0
	for i := 0; i < len(panel); i++ {
		sum += int(panel[i] - '0')
	}
	return sum % 10
}

// Jodi joins two anks into the two character jodi.
func Jodi(openAnk, closeAnk int) string {
	return strconv.Itoa(openAnk) + strconv.Itoa(closeAnk)
}

// DeriveOutcome computes the ank and jodi fields for a panel pair. The returned
// outcome is not yet keyed to a market or marked declared.
func DeriveOutcome(openPanel, closePanel string) (*Outcome, error) {
	open, err := ParsePanel(openPanel)
	if err != nil {
		return nil, WrapError(KindInvalidInput, err, "invalid open panel")
	}
	cls, err := ParsePanel(closePanel)
	if err != nil {
		return nil, WrapError(KindInvalidInput, err, "invalid close panel")
	}

	openAnk, closeAnk := Ank(open), Ank(cls)
	return &Outcome{
		OpenPanel:  open,
		ClosePanel: cls,
		OpenAnk:    openAnk,
		CloseAnk:   closeAnk,
		Jodi:       Jodi(openAnk, closeAnk),
	}, nil
}

// SamePanels reports whether o was declared with the given panels.
func (o *Outcome) SamePanels(openPanel, closePanel string) bool {
	return o.OpenPanel == openPanel && o.ClosePanel == closePanel
}

// Display renders the result board form, e.g. "123-65-456".
func (o *Outcome) Display() string {
	return fmt.Sprintf("%s-%s-%s", o.OpenPanel, o.Jodi, o.ClosePanel)
}

// SessionPanel returns the panel that settles wagers placed on the given session.
func (o *Outcome) SessionPanel(s Session) string {
	if s == SessionOpen {
		return o.OpenPanel
	}
	return o.ClosePanel
}

// SessionAnk returns the ank that settles wagers placed on the given session.
func (o *Outcome) SessionAnk(s Session) int {
	if s == SessionOpen {
		return o.OpenAnk
	}
	return o.CloseAnk
}

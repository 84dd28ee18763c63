package models

import (
	"slices"
	"strconv"
	"strings"
)

// Classify decides whether w wins against the declared outcome. The second return
// is false when the bet type has no settlement rule; such wagers lose.
func Classify(w *Wager, o *Outcome) (won bool, known bool) {
	switch w.BetType {
	case BetTypeSingle:
		ank := strconv.Itoa(o.SessionAnk(w.Session))
		return slices.Contains(w.Numbers, ank), true
	case BetTypeJodi:
		return len(w.Numbers) == 1 && w.Numbers[0] == o.Jodi, true
	case BetTypeSinglePanna, BetTypeDoublePanna, BetTypeTriplePanna:
		return len(w.Numbers) == 1 && w.Numbers[0] == o.SessionPanel(w.Session), true
	case BetTypeHalfSangam:
		if len(w.Numbers) != 1 {
			return false, true
		}
		panel, ank, openPanel, ok := splitHalfSangam(w.Numbers[0])
		if !ok {
			return false, true
		}
		if openPanel {
			return panel == o.OpenPanel && ank == strconv.Itoa(o.CloseAnk), true
		}
		return ank == strconv.Itoa(o.OpenAnk) && panel == o.ClosePanel, true
	case BetTypeFullSangam:
		if len(w.Numbers) != 1 {
			return false, true
		}
		open, cls, ok := strings.Cut(w.Numbers[0], "-")
		return ok && open == o.OpenPanel && cls == o.ClosePanel, true
	default:
		return false, false
	}
}

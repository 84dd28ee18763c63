package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// BetType enumerates the wager kinds the ledger prices and settles.
type BetType string

const (
	BetTypeSingle      BetType = "single"
	BetTypeJodi        BetType = "jodi"
	BetTypeSinglePanna BetType = "single_panna"
	BetTypeDoublePanna BetType = "double_panna"
	BetTypeTriplePanna BetType = "triple_panna"
	BetTypeHalfSangam  BetType = "half_sangam"
	BetTypeFullSangam  BetType = "full_sangam"
)

// rateTable maps each bet type to its payout multiplier.
var rateTable = map[BetType]decimal.Decimal{
	BetTypeSingle:      decimal.RequireFromString("9.5"),
	BetTypeJodi:        decimal.RequireFromString("95.0"),
	BetTypeSinglePanna: decimal.RequireFromString("142.0"),
	BetTypeDoublePanna: decimal.RequireFromString("285.0"),
	BetTypeTriplePanna: decimal.RequireFromString("950.0"),
	BetTypeHalfSangam:  decimal.RequireFromString("1425.0"),
	BetTypeFullSangam:  decimal.RequireFromString("9500.0"),
}

// BetTypes lists the priced bet types in table order.
func BetTypes() []BetType {
	return []BetType{
		BetTypeSingle, BetTypeJodi, BetTypeSinglePanna, BetTypeDoublePanna,
		BetTypeTriplePanna, BetTypeHalfSangam, BetTypeFullSangam,
	}
}

// LookupRate returns the payout multiplier for bt. Unpriced bet types are rejected
// rather than falling back to another type's rate.
func LookupRate(bt BetType) (decimal.Decimal, error) {
	rate, ok := rateTable[bt]
	if !ok {
		return decimal.Zero, WrapError(KindInvalidInput, ErrUnknownBetType, "bet type %q has no rate", string(bt))
	}
	return rate, nil
}

// ValidateStake requires a positive amount with at most two decimal places.
func ValidateStake(stake decimal.Decimal) error {
	if !stake.IsPositive() {
		return WrapError(KindInvalidInput, ErrInvalidAmount, "stake must be greater than zero")
	}
	if !stake.Equal(stake.Round(2)) {
		return WrapError(KindInvalidInput, ErrInvalidAmount, "stake must have at most two decimal places")
	}
	return nil
}

// Payout is the credit owed for a won wager.
func Payout(stake, rate decimal.Decimal) decimal.Decimal {
	return stake.Mul(rate).Round(2)
}

// ValidateNumbers checks the selected numbers against the shape each bet type expects.
func ValidateNumbers(bt BetType, numbers []string) error {
	if len(numbers) == 0 {
		return NewError(KindInvalidInput, "at least one number is required")
	}

	switch bt {
	case BetTypeSingle:
		if len(numbers) > 10 {
			return NewError(KindInvalidInput, "single accepts at most 10 digits")
		}
		seen := make(map[string]bool, len(numbers))
		for _, n := range numbers {
			if !isDigits(n, 1) {
				return NewError(KindInvalidInput, "single number %q must be one digit", n)
			}
			if seen[n] {
				return NewError(KindInvalidInput, "single number %q selected twice", n)
			}
			seen[n] = true
		}
		return nil
	case BetTypeJodi:
		if len(numbers) != 1 || !isDigits(numbers[0], 2) {
			return NewError(KindInvalidInput, "jodi takes exactly one two-digit number")
		}
		return nil
	case BetTypeSinglePanna, BetTypeDoublePanna, BetTypeTriplePanna:
		if len(numbers) != 1 || !isDigits(numbers[0], 3) {
			return NewError(KindInvalidInput, "%s takes exactly one three-digit panel", bt)
		}
		if got := PanelKind(numbers[0]); got != bt {
			return NewError(KindInvalidInput, "panel %q is a %s, not a %s", numbers[0], got, bt)
		}
		return nil
	case BetTypeHalfSangam:
		if len(numbers) != 1 {
			return NewError(KindInvalidInput, "half_sangam takes exactly one selection")
		}
		if _, _, _, ok := splitHalfSangam(numbers[0]); !ok {
			return NewError(KindInvalidInput, "half_sangam %q must look like 123-4 or 4-123", numbers[0])
		}
		return nil
	case BetTypeFullSangam:
		if len(numbers) != 1 {
			return NewError(KindInvalidInput, "full_sangam takes exactly one selection")
		}
		open, cls, ok := strings.Cut(numbers[0], "-")
		if !ok || !isDigits(open, 3) || !isDigits(cls, 3) {
			return NewError(KindInvalidInput, "full_sangam %q must look like 123-456", numbers[0])
		}
		return nil
	default:
		return WrapError(KindInvalidInput, ErrUnknownBetType, "bet type %q is not supported", string(bt))
	}
}

// PanelKind classifies a three-digit panel by its repeated digits.
func PanelKind(panel string) BetType {
	a, b, c := panel[0], panel[1], panel[2]
	switch {
	case a == b && b == c:
		return BetTypeTriplePanna
	case a == b || b == c || a == c:
		return BetTypeDoublePanna
	default:
		return BetTypeSinglePanna
	}
}

// splitHalfSangam returns the panel and ank halves of a half sangam selection.
// openPanel is true for the "panel-ank" form, where the panel is matched against
// the open panel and the ank against the close ank.
func splitHalfSangam(sel string) (panel, ank string, openPanel, ok bool) {
	left, right, found := strings.Cut(sel, "-")
	if !found {
		return "", "", false, false
	}
	switch {
	case isDigits(left, 3) && isDigits(right, 1):
		return left, right, true, true
	case isDigits(left, 1) && isDigits(right, 3):
		return right, left, false, true
	}
	return "", "", false, false
}

func isDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < n; i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func (bt BetType) String() string {
	return string(bt)
}

// ParseBetType normalizes user input into a BetType without checking it is priced.
func ParseBetType(s string) BetType {
	return BetType(strings.ToLower(strings.TrimSpace(s)))
}

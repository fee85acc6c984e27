package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// StroopsPerLumen is the number of indivisible units in one XLM.
const StroopsPerLumen = 10_000_000

var stroopScale = decimal.New(1, 7)

// ToStroops converts a decimal XLM string to integer stroops. The
// conversion is exact; amounts with more than 7 decimal places or outside
// the int64 range are rejected.
func ToStroops(xlm string) (int64, error) {
	d, err := decimal.NewFromString(xlm)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", xlm, err)
	}

	s := d.Mul(stroopScale)
	if !s.IsInteger() {
		return 0, fmt.Errorf("amount %q has more than 7 decimal places", xlm)
	}

	if !s.BigInt().IsInt64() {
		return 0, fmt.Errorf("amount %q out of range", xlm)
	}

	return s.IntPart(), nil
}

// FromStroops renders a stroop string as XLM with fixed 7 decimal places.
// Empty input renders as "0", matching an unfunded balance read; anything
// else must parse as a number.
func FromStroops(stroops string) (string, error) {
	if stroops == "" {
		return "0", nil
	}

	d, err := decimal.NewFromString(stroops)
	if err != nil {
		return "", fmt.Errorf("invalid stroops %q: %w", stroops, err)
	}

	return d.Div(stroopScale).StringFixed(7), nil
}

// HasEnoughBalance reports whether amount can be covered by balance,
// boundary equality included.
func HasEnoughBalance(balanceStroops, amountStroops int64) bool {
	return amountStroops <= balanceStroops
}

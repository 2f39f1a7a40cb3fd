package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// AmountScale is the number of decimal places the DECIMAL(14,2) amount
// columns keep.
const AmountScale = 2

// MaxAmount is the largest value a DECIMAL(14,2) column holds.
var MaxAmount = decimal.RequireFromString("999999999999.99")

// ErrAmountOutOfRange marks an amount the amount columns cannot store as is.
var ErrAmountOutOfRange = errors.New("amount not storable")

// CheckAmount rejects amounts the store would round or refuse: zero or
// negative values, fractions of a cent and values above MaxAmount.  An
// amount that passes is stored and cached with exactly the same value.
func CheckAmount(d decimal.Decimal) error {
	switch {
	case !d.IsPositive():
		return fmt.Errorf("%w: %s must be positive", ErrAmountOutOfRange, d)
	case !d.Truncate(AmountScale).Equal(d):
		return fmt.Errorf("%w: %s has more than %d decimal places", ErrAmountOutOfRange, d, AmountScale)
	case d.GreaterThan(MaxAmount):
		return fmt.Errorf("%w: %s exceeds %s", ErrAmountOutOfRange, d, MaxAmount)
	}
	return nil
}

package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CheckAmount accepts a positive amount in whole cents. Money columns hold
// two decimal places, so anything finer is refused rather than rounded.
func CheckAmount(amount decimal.Decimal, what string) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s of %s must be positive", ErrInvalidAmount, what, amount)
	}
	if !amount.Equal(amount.Round(2)) {
		return fmt.Errorf("%w: %s of %s has fractional cents", ErrInvalidAmount, what, amount)
	}
	return nil
}

package lending

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Dan9191/farmworker-finance/internal/models"
)

// MaxDebtToIncome is the highest accepted debt-to-income ratio.
const MaxDebtToIncome = 0.4

// Decision is the outcome of an eligibility check. Reason is nil when the
// worker is eligible and otherwise wraps one of the rejection errors.
type Decision struct {
	Eligible         bool            `json:"eligible"`
	Reason           error           `json:"-"`
	Message          string          `json:"reason,omitempty"`
	ProductID        string          `json:"productId"`
	Amount           decimal.Decimal `json:"amount"`
	MonthlyPayment   decimal.Decimal `json:"monthlyPayment"`
	EmploymentMonths int             `json:"employmentMonths"`
	DebtToIncome     float64         `json:"debtToIncome"`
}

func (d Decision) reject(err error) Decision {
	d.Eligible = false
	d.Reason = err
	d.Message = err.Error()
	return d
}

// CheckEligibility evaluates the product rules in fixed order; the first
// failing rule decides. An amount that is not positive whole cents is an input error, not a
// rejection, and is returned as the error value.
func CheckEligibility(
	worker models.Worker,
	profile models.CreditProfile,
	product models.LoanProduct,
	amount decimal.Decimal,
	now time.Time,
) (Decision, error) {
	if err := models.CheckAmount(amount, "loan amount"); err != nil {
		return Decision{}, err
	}

	d := Decision{
		ProductID:        product.ID,
		Amount:           amount,
		MonthlyPayment:   MonthlyPayment(amount, product.InterestRate, product.TermMonths),
		EmploymentMonths: worker.EmploymentMonths(now),
	}

	if d.EmploymentMonths < product.MinEmploymentMonths {
		return d.reject(fmt.Errorf("%w: employed %d months, %s requires %d",
			models.ErrInsufficientTenure, d.EmploymentMonths, product.ID, product.MinEmploymentMonths)), nil
	}
	if amount.GreaterThan(product.MaxAmount) {
		return d.reject(fmt.Errorf("%w: requested %s, %s allows %s",
			models.ErrAmountExceedsLimit, amount, product.ID, product.MaxAmount)), nil
	}
	if profile.CreditScore < product.MinCreditScore {
		return d.reject(fmt.Errorf("%w: score %d, %s requires %d",
			models.ErrCreditScoreTooLow, profile.CreditScore, product.ID, product.MinCreditScore)), nil
	}

	obligations := profile.TotalDebt.Add(d.MonthlyPayment).InexactFloat64()
	if profile.AverageMonthlyIncome <= 0 {
		return d.reject(fmt.Errorf("%w: no income this month", models.ErrDebtToIncomeExceeded)), nil
	}
	d.DebtToIncome = obligations / profile.AverageMonthlyIncome
	if d.DebtToIncome > MaxDebtToIncome {
		return d.reject(fmt.Errorf("%w: ratio %.2f above %.2f",
			models.ErrDebtToIncomeExceeded, d.DebtToIncome, MaxDebtToIncome)), nil
	}

	d.Eligible = true
	return d, nil
}

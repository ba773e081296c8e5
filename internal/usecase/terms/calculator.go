package terms

import (
	"loanfund-backend/internal/domain/loan"

	"github.com/shopspring/decimal"
)

// Fund rules for repayment terms. The amortization is zero-interest: the
// schedule always sums to the loan amount exactly.
var (
	// installment base = loanAmount² / (150 · balance), i.e. RATIO ≈ 0.006667
	ratioDivisor = decimal.NewFromInt(150)
	// every installment is rounded up to a multiple of 5 currency units
	roundStep = decimal.NewFromInt(5)
	// MinInstallment is the hard floor for a scheduled payment.
	MinInstallment = decimal.NewFromInt(20)
)

// MinPeriod is the smallest implied period the fund quotes. When the
// installment floor would force fewer payments than this, the installment is
// recomputed from the period; the floor still wins if the two conflict.
const MinPeriod = 5

type Terms struct {
	Installment   decimal.Decimal   `json:"installment"`
	ImpliedPeriod int               `json:"implied_period"`
	Schedule      []decimal.Decimal `json:"schedule"`
}

// TotalScheduled is the sum of the schedule; by construction it equals the
// loan amount.
func (t *Terms) TotalScheduled() decimal.Decimal {
	total := decimal.Zero
	for _, p := range t.Schedule {
		total = total.Add(p)
	}
	return total
}

// ceilToStep rounds d up to the next multiple of roundStep.
func ceilToStep(d decimal.Decimal) decimal.Decimal {
	return d.Div(roundStep).Ceil().Mul(roundStep)
}

// Compute derives the installment amount and implied repayment period for a
// loan of loanAmount against the member's current balance. Pure and total for
// positive inputs.
func Compute(loanAmount, balance decimal.Decimal) (*Terms, error) {
	if !loanAmount.IsPositive() {
		return nil, loan.NewValidationError("loan_amount", "must be positive, got %s", loanAmount)
	}
	if !balance.IsPositive() {
		return nil, loan.NewValidationError("balance", "must be positive, got %s", balance)
	}

	base := ceilToStep(loanAmount.Mul(loanAmount).Div(ratioDivisor.Mul(balance)))
	installment := base
	if installment.LessThan(MinInstallment) {
		installment = MinInstallment
	}

	// quote at least MinPeriod payments where the installment floor allows it
	if rawPeriods(loanAmount, installment) < MinPeriod {
		stretched := ceilToStep(loanAmount.Div(decimal.NewFromInt(MinPeriod)))
		if stretched.LessThan(MinInstallment) {
			stretched = MinInstallment
		}
		installment = stretched
	}

	sched := schedule(loanAmount, installment)
	return &Terms{
		Installment:   installment,
		ImpliedPeriod: len(sched),
		Schedule:      sched,
	}, nil
}

func rawPeriods(amount, installment decimal.Decimal) int {
	return int(amount.Div(installment).Ceil().IntPart())
}

// schedule lays out the payments: full installments followed by the
// remainder. A remainder at or above the floor becomes its own final period;
// a smaller one is absorbed into the last full installment so no scheduled
// payment ever drops below the floor.
func schedule(amount, installment decimal.Decimal) []decimal.Decimal {
	full := amount.Div(installment).Floor()
	n := int(full.IntPart())
	rem := amount.Sub(installment.Mul(full))

	if n == 0 {
		// loan smaller than one installment: single payment of the whole amount
		return []decimal.Decimal{amount}
	}

	out := make([]decimal.Decimal, 0, n+1)
	for i := 0; i < n; i++ {
		out = append(out, installment)
	}
	switch {
	case rem.IsZero():
		// exact division, nothing to fold
	case rem.GreaterThanOrEqual(MinInstallment):
		out = append(out, rem)
	default:
		out[n-1] = out[n-1].Add(rem)
	}
	return out
}

package eligibility

import (
	"fmt"
	"time"

	"loanfund-backend/internal/domain/member"

	"github.com/shopspring/decimal"
)

type RuleID string

const (
	RuleNotBlocked       RuleID = "not-blocked"
	RuleJoiningFee       RuleID = "joining-fee-approved"
	RuleMinimumBalance   RuleID = "minimum-balance"
	RuleTenure           RuleID = "tenure"
	RuleNoActiveLoan     RuleID = "no-active-loan"
	RuleSubscriptionPaid RuleID = "subscription-paid"
	RuleCooldown         RuleID = "cooldown-since-closure"
)

// Fund eligibility thresholds.
var (
	MinBalance           = decimal.NewFromInt(500)
	RequiredSubscription = decimal.NewFromInt(240)
	SystemMaxLoan        = decimal.NewFromInt(10_000)
	balanceMultiplier    = decimal.NewFromInt(3)
)

const (
	TenureYears        = 1
	SubscriptionMonths = 24
	CooldownDays       = 30
)

// Snapshot bundles every fact the seven rules need, read once under the
// caller's transaction. The evaluator itself never touches storage; all
// numbers in messages come from these fields so check and message cannot
// drift apart.
type Snapshot struct {
	MemberID         string
	Balance          decimal.Decimal
	IsBlocked        bool
	JoiningFeeStatus member.FeeStatus
	RegistrationDate time.Time
	ActiveLoanCount  int64
	// accepted subscription/deposit credits within the trailing window
	SubscriptionPaid decimal.Decimal
	LastClosureDate  *time.Time
	Now              time.Time
}

type Failure struct {
	Rule    RuleID `json:"rule"`
	Message string `json:"message"`
}

type Result struct {
	Eligible      bool            `json:"eligible"`
	Failures      []Failure       `json:"failures,omitempty"`
	MaxLoanAmount decimal.Decimal `json:"max_loan_amount"`
}

func (r Result) FailedRules() []string {
	out := make([]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		out = append(out, string(f.Rule))
	}
	return out
}

func (r Result) Messages() []string {
	out := make([]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		out = append(out, f.Message)
	}
	return out
}

// MaxLoanAmount is min(3 · balance, system ceiling); reported regardless of
// eligibility and enforced as a hard cap even under admin override.
func MaxLoanAmount(balance decimal.Decimal) decimal.Decimal {
	ceiling := balance.Mul(balanceMultiplier)
	if ceiling.GreaterThan(SystemMaxLoan) {
		return SystemMaxLoan
	}
	return ceiling
}

// Evaluate runs all seven rules against the snapshot. No short-circuiting:
// the member sees every blocking reason at once.
func Evaluate(s Snapshot) Result {
	var failures []Failure
	fail := func(rule RuleID, format string, args ...any) {
		failures = append(failures, Failure{Rule: rule, Message: fmt.Sprintf(format, args...)})
	}

	if s.IsBlocked {
		fail(RuleNotBlocked, "member account is blocked")
	}

	if s.JoiningFeeStatus != member.FeeApproved {
		fail(RuleJoiningFee, "joining fee is %s, must be approved", s.JoiningFeeStatus)
	}

	if s.Balance.LessThan(MinBalance) {
		fail(RuleMinimumBalance, "balance %s is below the %s minimum (short by %s)",
			s.Balance, MinBalance, MinBalance.Sub(s.Balance))
	}

	if cutoff := s.Now.AddDate(-TenureYears, 0, 0); s.RegistrationDate.After(cutoff) {
		days := int(s.RegistrationDate.Sub(cutoff).Hours()/24) + 1
		fail(RuleTenure, "membership is younger than %d year(s), %d day(s) remaining", TenureYears, days)
	}

	if s.ActiveLoanCount > 0 {
		fail(RuleNoActiveLoan, "member already has %d active loan(s)", s.ActiveLoanCount)
	}

	if s.SubscriptionPaid.LessThan(RequiredSubscription) {
		fail(RuleSubscriptionPaid, "subscriptions of %s over the last %d months are below the required %s (short by %s)",
			s.SubscriptionPaid, SubscriptionMonths, RequiredSubscription, RequiredSubscription.Sub(s.SubscriptionPaid))
	}

	if s.LastClosureDate != nil {
		eligibleFrom := s.LastClosureDate.AddDate(0, 0, CooldownDays)
		if s.Now.Before(eligibleFrom) {
			days := int(eligibleFrom.Sub(s.Now).Hours()/24) + 1
			fail(RuleCooldown, "last loan closed on %s, %d day(s) of the %d-day cooldown remaining",
				s.LastClosureDate.Format("2006-01-02"), days, CooldownDays)
		}
	}

	return Result{
		Eligible:      len(failures) == 0,
		Failures:      failures,
		MaxLoanAmount: MaxLoanAmount(s.Balance),
	}
}

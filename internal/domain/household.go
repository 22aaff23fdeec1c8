// Package domain holds the typed input and output structures shared by the
// config loader, the plan model builder and the presentation layers.
package domain

import (
	"fmt"
	"math"
)

// TaxBracket is one marginal-rate band. Upper is +Inf for the last band.
type TaxBracket struct {
	Rate  float64
	Lower float64
	Upper float64
}

// Width returns the bracket width; +Inf for the unbounded top bracket.
func (b TaxBracket) Width() float64 { return b.Upper - b.Lower }

// TaxTable is an ordered, contiguous sequence of brackets covering [0, +Inf).
type TaxTable []TaxBracket

// Validate checks ordering, contiguity and coverage.
func (t TaxTable) Validate(label string) error {
	if len(t) == 0 {
		return fmt.Errorf("%s: empty tax table", label)
	}
	if t[0].Lower != 0 {
		return fmt.Errorf("%s: first bracket must start at 0, got %g", label, t[0].Lower)
	}
	for i, b := range t {
		if b.Rate < 0 || b.Rate >= 1 {
			return fmt.Errorf("%s: bracket %d rate %g outside [0,1)", label, i, b.Rate)
		}
		if b.Upper <= b.Lower {
			return fmt.Errorf("%s: bracket %d upper %g not above lower %g", label, i, b.Upper, b.Lower)
		}
		if i > 0 && t[i-1].Upper != b.Lower {
			return fmt.Errorf("%s: gap between bracket %d and %d", label, i-1, i)
		}
	}
	if !math.IsInf(t[len(t)-1].Upper, 1) {
		return fmt.Errorf("%s: last bracket must be unbounded", label)
	}
	return nil
}

// BrokerageAccount is the taxable account: withdrawals return basis tax-free
// and gains as capital gains, and the balance throws off an annual
// capital-gains distribution.
type BrokerageAccount struct {
	Balance float64
	// CostBasis is the original-contribution portion of Balance.
	CostBasis float64
	// DistributionYield is the annual capital-gains distribution as a
	// fraction of the year-end balance (0.015 for 1.5%).
	DistributionYield float64
}

// DeferredAccount is the pre-tax account (traditional IRA/401k): withdrawals
// and conversions are ordinary income, RMD rules apply.
type DeferredAccount struct {
	Balance float64
}

// Contribution records one tax-free-account contribution and the owner's age
// when it was made, for the five-year seasoning rule.
type Contribution struct {
	Age    int
	Amount float64
}

// TaxFreeAccount is the Roth-style account: withdrawals are never taxed but
// are capped by seasoned basis before age 59.5.
type TaxFreeAccount struct {
	Balance       float64
	Contributions []Contribution
}

// OpenedAtAge returns the owner's age when the account was first funded. With
// no recorded contributions it falls back to the given default.
func (a TaxFreeAccount) OpenedAtAge(fallback int) int {
	open := fallback
	for _, c := range a.Contributions {
		if c.Age < open {
			open = c.Age
		}
	}
	return open
}

// HealthSubsidy carries the marketplace-coverage inputs for the pre-65
// premium-subsidy model. Premium and SLCSP are monthly amounts.
type HealthSubsidy struct {
	Premium     float64
	SLCSP       float64
	PovertyLine float64
	Covered     int
}

// NoCeiling is the sentinel "no income ceiling" value; per-year ceilings at or
// above it are not emitted as constraints.
const NoCeiling = 50_000_000

// Household is the validated, year-indexed model input. It is built once by
// the config loader and never mutated afterwards; every per-year slice has
// length NumYears.
type Household struct {
	// InflationRate and GrowthRate are multiplicative factors (1.025, 1.06).
	InflationRate float64
	GrowthRate    float64

	CurrentYear int
	StartAge    int
	BirthMonth  int // 1..12
	RetireAge   int
	EndAge      int
	NumYears    int

	TaxTable          TaxTable
	StateTaxTable     TaxTable
	CapitalGainsTable TaxTable

	StandardDeduction      float64
	StateStandardDeduction float64
	NIIThreshold           float64

	StateTaxesSocialSecurity   bool
	StateTaxesRetirementIncome bool

	// Per-year external streams, in year-y nominal dollars.
	Income                   []float64
	Expenses                 []float64
	TaxedIncome              []float64
	StateTaxedIncome         []float64
	SocialSecurity           []float64
	SocialSecurityTaxed      []float64
	StateSocialSecurityTaxed []float64
	IncomeCeiling            []float64

	Brokerage BrokerageAccount
	Deferred  DeferredAccount
	TaxFree   TaxFreeAccount

	Health *HealthSubsidy

	// RMDFactors is the life-expectancy divisor table indexed from age 72,
	// injected as reference data rather than read from a package global.
	RMDFactors []float64
}

// Age returns the household age in plan year y.
func (h *Household) Age(y int) int { return h.RetireAge + y }

// BirthYear derives the birth year from the current calendar year.
func (h *Household) BirthYear() int { return h.CurrentYear - h.StartAge }

// HalfAge is the start age shifted down one year for births in July or later,
// so that HalfAge+y < 59 is exactly "under 59.5 during plan year y".
func (h *Household) HalfAge() int {
	if h.BirthMonth >= 7 {
		return h.StartAge - 1
	}
	return h.StartAge
}

// UnderEarlyWithdrawalAge reports whether the early-withdrawal penalty applies
// in plan year y.
func (h *Household) UnderEarlyWithdrawalAge(y int) bool {
	return h.HalfAge()+y < 59
}

// RMDStartAge returns the age at which mandatory distributions begin. Owners
// born before 1960 started under the age-73 rule and stay in it; everyone else
// starts at 75.
func (h *Household) RMDStartAge() int {
	if h.BirthYear() < 1960 {
		return 73
	}
	return 75
}

// RMDFactor returns the life-expectancy divisor for the given age, or 0 when
// the age is below the table's range. Ages beyond the table clamp to the last
// entry.
func (h *Household) RMDFactor(age int) float64 {
	idx := age - 72
	if idx < 0 || len(h.RMDFactors) == 0 {
		return 0
	}
	if idx >= len(h.RMDFactors) {
		idx = len(h.RMDFactors) - 1
	}
	return h.RMDFactors[idx]
}

// InflationFactor returns the cumulative inflation multiplier for plan year y.
func (h *Household) InflationFactor(y int) float64 {
	return math.Pow(h.InflationRate, float64(y))
}

// Validate enforces the structural invariants the model builder relies on.
// Violations are caller errors and are surfaced before any model is built.
func (h *Household) Validate() error {
	if h.NumYears < 0 {
		return fmt.Errorf("plan horizon is negative: retire age %d after end age %d", h.RetireAge, h.EndAge)
	}
	if h.NumYears != h.EndAge-h.RetireAge {
		return fmt.Errorf("numYears %d inconsistent with ages %d..%d", h.NumYears, h.RetireAge, h.EndAge)
	}
	if h.BirthMonth < 1 || h.BirthMonth > 12 {
		return fmt.Errorf("birth month %d outside 1..12", h.BirthMonth)
	}
	if h.InflationRate <= 0 || h.GrowthRate <= 0 {
		return fmt.Errorf("rates must be positive multipliers, got inflation %g growth %g", h.InflationRate, h.GrowthRate)
	}
	if h.Brokerage.Balance < 0 || h.Deferred.Balance < 0 || h.TaxFree.Balance < 0 {
		return fmt.Errorf("account balances must be non-negative")
	}
	if h.Brokerage.CostBasis < 0 || h.Brokerage.CostBasis > h.Brokerage.Balance {
		return fmt.Errorf("brokerage basis %g outside [0, balance %g]", h.Brokerage.CostBasis, h.Brokerage.Balance)
	}
	if h.Brokerage.DistributionYield < 0 || h.Brokerage.DistributionYield >= 1 {
		return fmt.Errorf("distribution yield %g outside [0,1)", h.Brokerage.DistributionYield)
	}
	for _, tbl := range []struct {
		label string
		t     TaxTable
	}{
		{"federal", h.TaxTable},
		{"state", h.StateTaxTable},
		{"capital gains", h.CapitalGainsTable},
	} {
		if err := tbl.t.Validate(tbl.label); err != nil {
			return err
		}
	}
	for _, s := range [][]float64{
		h.Income, h.Expenses, h.TaxedIncome, h.StateTaxedIncome,
		h.SocialSecurity, h.SocialSecurityTaxed, h.StateSocialSecurityTaxed,
		h.IncomeCeiling,
	} {
		if len(s) != h.NumYears {
			return fmt.Errorf("per-year stream length %d != horizon %d", len(s), h.NumYears)
		}
	}
	if h.Health != nil {
		if h.Health.Premium < 0 || h.Health.SLCSP < 0 || h.Health.PovertyLine < 0 {
			return fmt.Errorf("health subsidy amounts must be non-negative")
		}
	}
	return nil
}

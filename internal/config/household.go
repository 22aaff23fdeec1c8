package config

import (
	"fmt"
	"math"

	"github.com/drawplan/drawplan/internal/domain"
	"github.com/drawplan/drawplan/internal/reference"
	"github.com/drawplan/drawplan/pkg/agespan"
)

// socialSecurityStream is the reserved income-stream name with special
// treatment: always inflation-adjusted, 85% federally taxable, and prorated in
// its first year by birth month.
const socialSecurityStream = "social_security"

const ssTaxableFraction = 0.85

// BuildHousehold derives the validated year-indexed Household from a parsed
// configuration file and the reference tax tables.
func BuildHousehold(f *File, tables *reference.Tables) (*domain.Household, error) {
	fed, err := tables.Federal(f.Taxes.FilingStatus)
	if err != nil {
		return nil, err
	}

	state := reference.NoStateTax()
	if f.Taxes.State != "" {
		s, ok := tables.State(f.Taxes.State, f.Taxes.FilingStatus)
		if !ok {
			return nil, fmt.Errorf("no reference data for state %q filing status %q", f.Taxes.State, f.Taxes.FilingStatus)
		}
		state = s
	}

	retireAge := f.StartAge
	numYears := f.EndAge + 1 - retireAge

	h := &domain.Household{
		InflationRate: 1 + f.Inflation.InexactFloat64()/100,
		GrowthRate:    1 + f.Returns.InexactFloat64()/100,

		CurrentYear: f.CurrentYear,
		StartAge:    f.StartAge,
		BirthMonth:  f.BirthMonth,
		RetireAge:   retireAge,
		EndAge:      retireAge + numYears,
		NumYears:    numYears,

		TaxTable:          fed.Brackets,
		StateTaxTable:     state.Brackets,
		CapitalGainsTable: fed.CapitalGains,

		StandardDeduction:      fed.StandardDeduction,
		StateStandardDeduction: state.StandardDeduction,
		NIIThreshold:           fed.NIIThreshold,

		StateTaxesSocialSecurity:   state.TaxesSocialSecurity,
		StateTaxesRetirementIncome: state.TaxesRetirementIncome,

		Brokerage: domain.BrokerageAccount{
			Balance:           f.AfterTax.Balance.InexactFloat64(),
			CostBasis:         f.AfterTax.Basis.InexactFloat64(),
			DistributionYield: f.AfterTax.Distributions.InexactFloat64() / 100,
		},
		Deferred: domain.DeferredAccount{Balance: f.IRA.Balance.InexactFloat64()},
		TaxFree:  buildTaxFree(f.Roth),

		RMDFactors: tables.RMDFactors,
	}

	if f.ACA != nil && (f.ACA.Premium.IsPositive() || f.ACA.SLCSP.IsPositive()) {
		h.Health = &domain.HealthSubsidy{
			Premium:     f.ACA.Premium.InexactFloat64(),
			SLCSP:       f.ACA.SLCSP.InexactFloat64(),
			PovertyLine: tables.PovertyLine(f.Taxes.State, f.ACA.Covered),
			Covered:     f.ACA.Covered,
		}
	}

	if err := buildStreams(f, h); err != nil {
		return nil, err
	}
	if err := h.Validate(); err != nil {
		return nil, fmt.Errorf("derived household is invalid: %w", err)
	}
	return h, nil
}

func buildTaxFree(r *RothSection) domain.TaxFreeAccount {
	acct := domain.TaxFreeAccount{Balance: r.Balance.InexactFloat64()}
	for _, c := range r.Contributions {
		acct.Contributions = append(acct.Contributions, domain.Contribution{
			Age:    c.Age,
			Amount: c.Amount.InexactFloat64(),
		})
	}
	return acct
}

// buildStreams expands the named income and expense streams into the per-year
// nominal-dollar arrays. Inflation-adjusted streams grow from the start age,
// so a stream beginning at a later age arrives already inflated.
func buildStreams(f *File, h *domain.Household) error {
	n := h.NumYears
	h.Income = make([]float64, n)
	h.Expenses = make([]float64, n)
	h.TaxedIncome = make([]float64, n)
	h.StateTaxedIncome = make([]float64, n)
	h.SocialSecurity = make([]float64, n)
	h.SocialSecurityTaxed = make([]float64, n)
	h.StateSocialSecurityTaxed = make([]float64, n)
	h.IncomeCeiling = make([]float64, n)
	for y := range h.IncomeCeiling {
		h.IncomeCeiling[y] = domain.NoCeiling
	}

	for name, s := range f.Expense {
		ages, err := agespan.Expand(s.Age)
		if err != nil {
			return fmt.Errorf("expense %s: %w", name, err)
		}
		for _, age := range ages {
			y := age - h.RetireAge
			if y < 0 || y >= n {
				continue
			}
			amount := s.Amount.InexactFloat64()
			if s.Inflation {
				amount *= math.Pow(h.InflationRate, float64(age-h.StartAge))
			}
			h.Expenses[y] += amount
		}
	}

	for name, s := range f.Income {
		ages, err := agespan.Expand(s.Age)
		if err != nil {
			return fmt.Errorf("income %s: %w", name, err)
		}
		isSS := name == socialSecurityStream
		taxable := isSS
		if s.Taxable != nil {
			taxable = *s.Taxable
		}
		stateTaxable := taxable
		if s.StateTaxable != nil {
			stateTaxable = *s.StateTaxable
		}
		firstYear := true
		for _, age := range ages {
			y := age - h.RetireAge
			if y < 0 || y >= n {
				firstYear = false
				continue
			}
			infl := math.Pow(h.InflationRate, float64(age-h.StartAge))

			if ceil := s.Ceiling.InexactFloat64(); ceil > 0 && ceil < domain.NoCeiling {
				if s.Inflation {
					ceil *= infl
				}
				if ceil < h.IncomeCeiling[y] {
					h.IncomeCeiling[y] = ceil
				}
			}

			amount := s.Amount.InexactFloat64()
			if s.Inflation || isSS {
				amount *= infl
			}

			if isSS {
				// Benefits start mid-year; the first year only pays the
				// months from the birth month on.
				if firstYear {
					amount *= float64(13-h.BirthMonth) / 12
				}
				h.SocialSecurity[y] += amount
				h.SocialSecurityTaxed[y] += amount * ssTaxableFraction
				if h.StateTaxesSocialSecurity {
					h.StateSocialSecurityTaxed[y] += amount * ssTaxableFraction
				}
			} else {
				h.Income[y] += amount
				if taxable {
					h.TaxedIncome[y] += amount
				}
				if stateTaxable {
					h.StateTaxedIncome[y] += amount
				}
			}
			firstYear = false
		}
	}
	return nil
}

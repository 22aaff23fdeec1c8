package plan

import (
	"fmt"
	"math"

	"github.com/drawplan/drawplan/internal/domain"
	"github.com/drawplan/drawplan/internal/lp"
)

// buildFederalTaxes models ordinary federal income tax by letting the solver
// allocate each year's ordinary income across the standard deduction and the
// marginal brackets. Brackets are capacity-limited, not ordered; any optimum
// fills cheaper brackets first because the objective pays for every dollar of
// tax.
func (m *Model) buildFederalTaxes() {
	h, p := m.H, m.Prob

	for y := 0; y < h.NumYears; y++ {
		taxIMul := m.taxIMul(y)

		// Ordinary income: deferred withdrawals, conversions, taxable
		// external income and the taxable share of social security.
		p.AddEQ(fmt.Sprintf("Ordinary_Income_Calc_%d", y),
			lp.Variable(m.OrdinaryIncome[y]),
			lp.SumVars(m.WithdrawDeferred[y], m.Conversion[y]).
				PlusConst(h.TaxedIncome[y]+h.SocialSecurityTaxed[y]))

		p.AddLE(fmt.Sprintf("Max_Std_Deduction_%d", y),
			lp.Variable(m.StdDedAmount[y]), lp.Constant(h.StandardDeduction*taxIMul))

		// Ordinary income soaks up the deduction before capital gains can.
		lp.EncodeMin(p, m.StdDedIncomePortion[y],
			lp.Variable(m.StdDedAmount[y]), lp.Variable(m.OrdinaryIncome[y]),
			bigM, fmt.Sprintf("Std_Ded_Income_Portion_%d", y))
		p.AddLE(fmt.Sprintf("Std_Ded_CG_Portion_Limit_%d", y),
			lp.Variable(m.StdDedCGPortion[y]),
			lp.Variable(m.StdDedAmount[y]).Minus(lp.Variable(m.StdDedIncomePortion[y])))

		for j, b := range h.TaxTable {
			size := float64(bigM)
			if !math.IsInf(b.Upper, 1) {
				size = b.Width() * taxIMul
			}
			p.AddLE(fmt.Sprintf("Max_Tax_Bracket_%d_%d", y, j),
				lp.Variable(m.BracketAlloc.At(y, j)), lp.Constant(size))
		}

		p.AddEQ(fmt.Sprintf("Sum_Tax_Brackets_%d", y),
			lp.Variable(m.StdDedIncomePortion[y]).Plus(lp.SumVars(m.BracketAlloc.Row(y)...)),
			lp.Variable(m.OrdinaryIncome[y]))

		var ordinaryTax lp.Expr
		for j, b := range h.TaxTable {
			ordinaryTax = ordinaryTax.Plus(lp.Scaled(m.BracketAlloc.At(y, j), b.Rate))
		}
		p.AddEQ(fmt.Sprintf("Fed_Tax_Ordinary_Calc_%d", y),
			lp.Variable(m.FedTaxOrdinary[y]), ordinaryTax)

		fedTax := lp.SumVars(m.FedTaxOrdinary[y], m.FedTaxCG[y], m.FedTaxNII[y])
		if h.UnderEarlyWithdrawalAge(y) {
			p.AddEQ(fmt.Sprintf("Fed_Tax_Early_Withdrawal_Calc_%d", y),
				lp.Variable(m.FedTaxEarly[y]),
				lp.Scaled(m.WithdrawDeferred[y], earlyWithdrawalRate))
			fedTax = fedTax.Plus(lp.Variable(m.FedTaxEarly[y]))
		} else {
			p.AddEQ(fmt.Sprintf("Fed_Tax_Early_Withdrawal_Calc_%d", y),
				lp.Variable(m.FedTaxEarly[y]), lp.Constant(0))
		}
		p.AddEQ(fmt.Sprintf("Fed_Tax_Calc_%d", y), lp.Variable(m.FedTax[y]), fedTax)
	}
}

// buildStateTaxes models state tax on the state's own income base: deferred
// withdrawals only where the state taxes retirement income, conversions, the
// realized-gain share of brokerage withdrawals, distributions and the
// state-taxable external streams. States tax capital gains as ordinary income.
func (m *Model) buildStateTaxes() {
	h, p := m.H, m.Prob

	for y := 0; y < h.NumYears; y++ {
		taxIMul := m.taxIMul(y)

		base := lp.Variable(m.Conversion[y]).
			Plus(lp.Scaled(m.WithdrawBrokerage[y], m.taxableFractionOfBrokerage(y))).
			Plus(lp.Variable(m.CGD[y])).
			PlusConst(h.StateTaxedIncome[y] + h.StateSocialSecurityTaxed[y])
		if h.StateTaxesRetirementIncome {
			base = base.Plus(lp.Variable(m.WithdrawDeferred[y]))
		}
		p.AddEQ(fmt.Sprintf("State_Ordinary_Income_Calc_%d", y),
			lp.Variable(m.StateOrdinaryIncome[y]), base)

		p.AddLE(fmt.Sprintf("State_Std_Ded_Used_Cap_%d", y),
			lp.Variable(m.StateStdDedUsed[y]), lp.Variable(m.StateStdDedAmount[y]))
		p.AddLE(fmt.Sprintf("State_Std_Ded_Used_Income_%d", y),
			lp.Variable(m.StateStdDedUsed[y]), lp.Variable(m.StateOrdinaryIncome[y]))
		p.AddLE(fmt.Sprintf("Max_State_Std_Deduction_%d", y),
			lp.Variable(m.StateStdDedAmount[y]),
			lp.Constant(h.StateStandardDeduction*taxIMul))

		for j, b := range h.StateTaxTable {
			size := float64(bigM)
			if !math.IsInf(b.Upper, 1) {
				size = b.Width() * taxIMul
			}
			p.AddLE(fmt.Sprintf("Max_State_Tax_Bracket_%d_%d", y, j),
				lp.Variable(m.StateBracketAlloc.At(y, j)), lp.Constant(size))
		}

		p.AddEQ(fmt.Sprintf("Sum_State_Tax_Brackets_%d", y),
			lp.Variable(m.StateStdDedUsed[y]).Plus(lp.SumVars(m.StateBracketAlloc.Row(y)...)),
			lp.Variable(m.StateOrdinaryIncome[y]))

		var stateTax lp.Expr
		for j, b := range h.StateTaxTable {
			stateTax = stateTax.Plus(lp.Scaled(m.StateBracketAlloc.At(y, j), b.Rate))
		}
		p.AddEQ(fmt.Sprintf("State_Tax_Calc_%d", y), lp.Variable(m.StateTax[y]), stateTax)

		p.AddEQ(fmt.Sprintf("Total_Tax_Calc_%d", y),
			lp.Variable(m.TotalTax[y]), lp.SumVars(m.FedTax[y], m.StateTax[y]))

		if h.IncomeCeiling[y] < domain.NoCeiling {
			p.AddLE(fmt.Sprintf("Income_Ceiling_%d", y),
				lp.Variable(m.FedAGI[y]), lp.Constant(h.IncomeCeiling[y]))
		}
	}
}

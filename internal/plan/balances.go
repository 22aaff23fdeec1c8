package plan

import (
	"fmt"

	"github.com/drawplan/drawplan/internal/lp"
)

// buildBalances wires the account recurrences. Balance variables are
// beginning-of-year; money withdrawn or converted in a year does not earn that
// year's growth, capital-gains distributions are paid out of the brokerage
// balance at year end, and unspent excess is swept back into brokerage.
func (m *Model) buildBalances() {
	h, p := m.H, m.Prob
	r := h.GrowthRate

	for y := 0; y < h.NumYears; y++ {
		if y == 0 {
			p.AddEQ("Init_Brokerage_Balance",
				lp.Variable(m.BalBrokerage[0]), lp.Constant(h.Brokerage.Balance))
			p.AddEQ("Init_IRA_Balance",
				lp.Variable(m.BalDeferred[0]), lp.Constant(h.Deferred.Balance))
			p.AddEQ("Init_Roth_Balance",
				lp.Variable(m.BalTaxFree[0]), lp.Constant(h.TaxFree.Balance))
		} else {
			p.AddEQ(fmt.Sprintf("Brokerage_Balance_Calc_%d", y),
				lp.Variable(m.BalBrokerage[y]),
				lp.Variable(m.BalBrokerage[y-1]).Minus(lp.Variable(m.WithdrawBrokerage[y-1])).Scale(r).
					Minus(lp.Variable(m.CGD[y-1])).
					Plus(lp.Variable(m.Excess[y-1])))
			p.AddEQ(fmt.Sprintf("IRA_Balance_Calc_%d", y),
				lp.Variable(m.BalDeferred[y]),
				lp.Variable(m.BalDeferred[y-1]).
					Minus(lp.Variable(m.WithdrawDeferred[y-1])).
					Minus(lp.Variable(m.Conversion[y-1])).Scale(r))
			p.AddEQ(fmt.Sprintf("Roth_Balance_Calc_%d", y),
				lp.Variable(m.BalTaxFree[y]),
				lp.Variable(m.BalTaxFree[y-1]).
					Minus(lp.Variable(m.WithdrawTaxFree[y-1])).
					Plus(lp.Variable(m.Conversion[y-1])).Scale(r))
		}

		// The distribution is thrown off by whatever stays invested through
		// the year.
		p.AddEQ(fmt.Sprintf("CGD_Calc_%d", y),
			lp.Variable(m.CGD[y]),
			lp.Variable(m.BalBrokerage[y]).Minus(lp.Variable(m.WithdrawBrokerage[y])).
				Scale(r*h.Brokerage.DistributionYield))

		p.AddEQ(fmt.Sprintf("Brokerage_CG_Calc_%d", y),
			lp.Variable(m.BrokerageCG[y]),
			lp.Scaled(m.WithdrawBrokerage[y], m.taxableFractionOfBrokerage(y)))

		p.AddEQ(fmt.Sprintf("Total_Cap_Gains_Calc_%d", y),
			lp.Variable(m.TotalCapGains[y]),
			lp.SumVars(m.CGD[y], m.BrokerageCG[y]))
	}
}

// buildTerminal pins the end-of-plan assets and forbids any account from
// finishing the horizon overdrawn.
func (m *Model) buildTerminal() {
	h, p := m.H, m.Prob
	if h.NumYears == 0 {
		return
	}
	r := h.GrowthRate
	final := h.NumYears - 1

	// The last distribution is never spent inside the horizon, so it counts
	// toward what is left, as does the final year's unspent excess.
	eopBrokerage := lp.Variable(m.BalBrokerage[final]).
		Minus(lp.Variable(m.WithdrawBrokerage[final])).Scale(r).
		Plus(lp.Variable(m.Excess[final]))
	if final > 0 {
		eopBrokerage = eopBrokerage.Plus(lp.Variable(m.CGD[final-1]))
	}
	eopDeferred := lp.Variable(m.BalDeferred[final]).
		Minus(lp.Variable(m.WithdrawDeferred[final])).
		Minus(lp.Variable(m.Conversion[final])).Scale(r)
	eopTaxFree := lp.Variable(m.BalTaxFree[final]).
		Minus(lp.Variable(m.WithdrawTaxFree[final])).
		Plus(lp.Variable(m.Conversion[final])).Scale(r)

	p.AddGE("Final_Brokerage_NonNeg", eopBrokerage, lp.Constant(0))
	p.AddGE("Final_IRA_NonNeg", eopDeferred, lp.Constant(0))
	p.AddGE("Final_Roth_NonNeg", eopTaxFree, lp.Constant(0))

	p.AddEQ("EndOfPlan_Assets_Calc",
		lp.Variable(m.EOPAssets), lp.Sum(eopBrokerage, eopDeferred, eopTaxFree))
}

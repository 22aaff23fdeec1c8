package plan

import (
	"fmt"

	"github.com/drawplan/drawplan/internal/domain"
	"github.com/drawplan/drawplan/internal/lp"
)

// buildSpending ties each year's cash flows to the inflation-adjusted spending
// floor. A year's spendable cash is its withdrawals plus external income plus
// last year's capital-gains distribution; taxes, fixed expenses and health
// premiums come off the top, and whatever is above the floor lands in the
// excess variable (swept back into brokerage by the balance recurrence).
func (m *Model) buildSpending() {
	h, p := m.H, m.Prob

	for y := 0; y < h.NumYears; y++ {
		withdrawals := lp.SumVars(m.WithdrawBrokerage[y], m.WithdrawDeferred[y], m.WithdrawTaxFree[y]).
			PlusConst(h.Income[y] + h.SocialSecurity[y])
		if y > 0 {
			withdrawals = withdrawals.Plus(lp.Variable(m.CGD[y-1]))
		}
		outgo := lp.SumVars(m.TotalTax[y], m.HealthPayment[y]).
			Plus(lp.Scaled(m.SpendingFloor, m.iMul(y))).
			PlusConst(h.Expenses[y])

		p.AddGE(fmt.Sprintf("Min_Spend_%d", y), withdrawals, outgo)
		p.AddEQ(fmt.Sprintf("Excess_Calc_%d", y),
			lp.Variable(m.Excess[y]), withdrawals.Minus(outgo))

		// What actually got spent on living, after taxes, premiums, fixed
		// expenses and the unspent excess.
		p.AddEQ(fmt.Sprintf("True_Spending_Calc_%d", y),
			lp.Variable(m.TrueSpending[y]),
			withdrawals.
				Minus(lp.Variable(m.TotalTax[y])).
				Minus(lp.Variable(m.Excess[y])).
				Minus(lp.Variable(m.HealthPayment[y])).
				PlusConst(-h.Expenses[y]))
	}

	if m.Cfg.NoConversions {
		for y := 0; y < h.NumYears; y++ {
			p.AddEQ(fmt.Sprintf("No_Conversion_%d", y),
				lp.Variable(m.Conversion[y]), lp.Constant(0))
		}
	} else if m.Cfg.NoConversionsAfterSocSec {
		for y := 0; y < h.NumYears; y++ {
			if h.SocialSecurity[y] > 0 {
				p.AddEQ(fmt.Sprintf("No_Conversion_%d", y),
					lp.Variable(m.Conversion[y]), lp.Constant(0))
			}
		}
	}
}

// infAdjustedBurden is year y's tax-plus-healthcare outlay discounted back to
// today's dollars, the quantity the smoothing and tax objectives work on.
func (m *Model) infAdjustedBurden(y int) lp.Expr {
	return lp.SumVars(m.TotalTax[y], m.HealthPayment[y]).Scale(1 / m.iMul(y))
}

// buildSmoothing bounds each jaggedness variable below the absolute second
// difference of the discounted burden series, so the objective can penalize
// year-over-year whiplash in the tax schedule.
func (m *Model) buildSmoothing() {
	n := m.H.NumYears
	p := m.Prob
	for y := 0; y < n-2; y++ {
		jump := m.infAdjustedBurden(y + 2).Minus(m.infAdjustedBurden(y + 1)).
			Minus(m.infAdjustedBurden(y + 1).Minus(m.infAdjustedBurden(y)))
		p.AddGE(fmt.Sprintf("Jagged_Tax_Jump_%d", y), lp.Variable(m.Jagged[y]), jump)
		p.AddGE(fmt.Sprintf("Jagged_Tax_Jump_%d_Neg", y), lp.Variable(m.Jagged[y]), jump.Scale(-1))
	}
}

// buildObjectives fixes the spending floor where the objective demands one and
// records the objective expressions in priority order. The secondary
// objective, where present, prefers lower lifetime taxes and a smoother tax
// schedule among plans that tie on the primary.
func (m *Model) buildObjectives() {
	h, p := m.H, m.Prob
	n := h.NumYears
	if n == 0 {
		m.objectives = []lp.Expr{lp.Variable(m.SpendingFloor)}
		return
	}

	var totalBurden lp.Expr
	for y := 0; y < n; y++ {
		totalBurden = totalBurden.Plus(m.infAdjustedBurden(y))
	}
	smoothness := lp.SumVars(m.Jagged...).Scale(0.1)
	secondary := totalBurden.Scale(-1).Minus(smoothness)

	switch m.Cfg.Objective.Kind {
	case domain.MinTaxes:
		p.AddEQ("Set_Spending_Floor",
			lp.Variable(m.SpendingFloor), lp.Constant(m.Cfg.Objective.Value))
		m.objectives = []lp.Expr{totalBurden.Scale(-1 / float64(n))}
	case domain.MaxAssets:
		p.AddEQ("Set_Spending_Floor",
			lp.Variable(m.SpendingFloor), lp.Constant(m.Cfg.Objective.Value))
		m.objectives = []lp.Expr{lp.Variable(m.EOPAssets), secondary}
	default:
		m.objectives = []lp.Expr{lp.Variable(m.SpendingFloor), secondary}
	}
}

package plan

import (
	"fmt"
	"math"

	"github.com/drawplan/drawplan/internal/lp"
)

// buildCapitalGains stacks capital gains on top of ordinary income in the
// preferential-rate brackets. For each bracket, the solver first works out how
// much of it ordinary income already occupies (income above the bracket floor,
// capped at the bracket width); the remainder is capacity for gains at that
// bracket's rate. It also models the net-investment-income surtax on the
// gains above the MAGI threshold.
func (m *Model) buildCapitalGains() {
	h, p := m.H, m.Prob

	for y := 0; y < h.NumYears; y++ {
		taxIMul := m.taxIMul(y)

		// Ordinary income above the deduction; this is what stacks under
		// the gains.
		taxableOrdinary := lp.Variable(m.OrdinaryIncome[y]).
			Minus(lp.Variable(m.StdDedIncomePortion[y]))

		var cgTax lp.Expr
		cgAllocated := lp.Variable(m.StdDedCGPortion[y])
		for j, b := range h.CapitalGainsTable {
			lowAdj := b.Lower * taxIMul
			highAdj := float64(bigM)
			if !math.IsInf(b.Upper, 1) {
				highAdj = b.Upper * taxIMul
			}
			size := highAdj - lowAdj

			p.AddEQ(fmt.Sprintf("CG_Raw_Over_Calc_%d_%d", y, j),
				lp.Variable(m.CGRawOver.At(y, j)), taxableOrdinary.PlusConst(-lowAdj))
			p.AddGE(fmt.Sprintf("CG_Over_Floor_%d_%d", y, j),
				lp.Variable(m.CGOver.At(y, j)), lp.Variable(m.CGRawOver.At(y, j)))
			p.AddGE(fmt.Sprintf("CG_Over_NonNeg_%d_%d", y, j),
				lp.Variable(m.CGOver.At(y, j)), lp.Constant(0))

			lp.EncodeMin(p, m.CGIncomePortion.At(y, j),
				lp.Variable(m.CGOver.At(y, j)), lp.Constant(size),
				bigM, fmt.Sprintf("CG_Income_Portion_%d_%d", y, j))

			p.AddLE(fmt.Sprintf("CG_Portion_Limit_%d_%d", y, j),
				lp.Variable(m.CGPortion.At(y, j)),
				lp.Constant(size).Minus(lp.Variable(m.CGIncomePortion.At(y, j))))

			cgAllocated = cgAllocated.Plus(lp.Variable(m.CGPortion.At(y, j)))
			cgTax = cgTax.Plus(lp.Scaled(m.CGPortion.At(y, j), b.Rate))
		}

		p.AddEQ(fmt.Sprintf("Sum_CG_Portions_%d", y), cgAllocated, lp.Variable(m.TotalCapGains[y]))
		p.AddEQ(fmt.Sprintf("Fed_Tax_CG_Calc_%d", y), lp.Variable(m.FedTaxCG[y]), cgTax)

		// MAGI approximation: ordinary income components plus all gains.
		magi := lp.SumVars(m.WithdrawDeferred[y], m.Conversion[y], m.TotalCapGains[y]).
			PlusConst(h.TaxedIncome[y] + h.SocialSecurityTaxed[y])
		p.AddEQ(fmt.Sprintf("Fed_AGI_Calc_%d", y), lp.Variable(m.FedAGI[y]), magi)

		// The surtax threshold is fixed in statute, never indexed.
		p.AddEQ(fmt.Sprintf("NII_Raw_Over_Calc_%d", y),
			lp.Variable(m.NIIRawOver[y]), magi.PlusConst(-h.NIIThreshold))
		p.AddGE(fmt.Sprintf("NII_Over_Floor_%d", y),
			lp.Variable(m.NIIOver[y]), lp.Variable(m.NIIRawOver[y]))
		p.AddGE(fmt.Sprintf("NII_Over_NonNeg_%d", y),
			lp.Variable(m.NIIOver[y]), lp.Constant(0))
		lp.EncodeMin(p, m.NIICGPortion[y],
			lp.Variable(m.NIIOver[y]), lp.Variable(m.TotalCapGains[y]),
			bigM, fmt.Sprintf("NII_CG_Portion_%d", y))
		p.AddEQ(fmt.Sprintf("Fed_Tax_NII_Calc_%d", y),
			lp.Variable(m.FedTaxNII[y]), lp.Scaled(m.NIICGPortion[y], niiRate))
	}
}

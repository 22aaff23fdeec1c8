package plan

import (
	"fmt"

	"github.com/drawplan/drawplan/internal/lp"
)

// buildDistributionRules adds the statutory floors and caps on account flows:
// required minimum distributions from the deferred account and the five-year
// seasoning cap on tax-free withdrawals.
func (m *Model) buildDistributionRules() {
	h, p := m.H, m.Prob

	// Owners born before 1960 entered the RMD system at 73 and stay in it;
	// everyone else starts at 75.
	rmdStart := h.RMDStartAge()
	openedAt := h.TaxFree.OpenedAtAge(h.RetireAge)

	for y := 0; y < h.NumYears; y++ {
		age := h.Age(y)

		if factor := h.RMDFactor(age); age >= rmdStart && factor > 0 {
			// The beginning-of-year balance stands in for the prior
			// year-end balance the statute divides.
			required := lp.Scaled(m.BalDeferred[y], 1/factor)
			p.AddGE(fmt.Sprintf("RMD_Floor_%d", y),
				lp.Variable(m.WithdrawDeferred[y]), required)
			p.AddEQ(fmt.Sprintf("RMD_Amount_%d", y),
				lp.Variable(m.RequiredRMD[y]), required)
		} else {
			p.AddEQ(fmt.Sprintf("RMD_Amount_%d", y),
				lp.Variable(m.RequiredRMD[y]), lp.Constant(0))
		}

		// Before 59.5, or within five years of the account opening,
		// withdrawals are limited to seasoned basis: contributions and
		// conversions at least five years old, less what was already taken.
		if h.HalfAge()+y >= 59 && age-openedAt >= 5 {
			continue
		}
		basis := lp.Constant(0)
		for _, c := range h.TaxFree.Contributions {
			if age-c.Age >= 5 {
				basis = basis.PlusConst(c.Amount)
			}
		}
		for convY := 0; convY <= y-5; convY++ {
			basis = basis.Plus(lp.Variable(m.Conversion[convY]))
		}
		for priorY := 0; priorY < y; priorY++ {
			basis = basis.Minus(lp.Variable(m.WithdrawTaxFree[priorY]))
		}
		p.AddLE(fmt.Sprintf("Roth_Basis_Limit_%d", y),
			lp.Variable(m.WithdrawTaxFree[y]), basis)
	}
}

package plan

import (
	"fmt"

	"github.com/drawplan/drawplan/internal/lp"
)

// acaSegment is one step of the 2025 applicable-percentage schedule: above
// FPLMultiple times the poverty line, the household is expected to pay Pct of
// MAGI toward the benchmark plan.
type acaSegment struct {
	FPLMultiple float64
	Pct         float64
}

// Ordered from the highest threshold down so tighter caps are layered onto
// looser ones; below every threshold the unconditional 2% floor applies.
var acaSegments = []acaSegment{
	{3.5, 0.085},
	{3.0, 0.0725},
	{2.75, 0.06},
	{2.5, 0.05},
	{2.25, 0.04},
	{2.0, 0.03},
}

const acaBasePct = 0.02

// medicareAge ends marketplace coverage; the birthday month switches the
// household to Medicare mid-year.
const medicareAge = 65

// buildHealthcare models the marketplace premium subsidy for the pre-Medicare
// years. The monthly subsidy is the benchmark premium minus an expected
// contribution that steps up with MAGI relative to the poverty line; it is
// floored at zero and capped at the actual premium. Each threshold is a big-M
// implication: exceeding it activates the tighter contribution percentage.
func (m *Model) buildHealthcare() {
	h, p := m.H, m.Prob

	for y := 0; y < h.NumYears; y++ {
		age := h.Age(y)
		iMul := m.iMul(y)
		hcIMul := m.hcIMul(y)

		months := 12.0
		if age == medicareAge {
			months = float64(h.BirthMonth - 1)
		}

		switch {
		case age <= medicareAge && h.Health != nil && h.Health.SLCSP > 0:
			magi := lp.Variable(m.FedAGI[y])
			benchmark := h.Health.SLCSP * iMul
			for _, seg := range acaSegments {
				threshold := seg.FPLMultiple * h.Health.PovertyLine * iMul
				lp.EncodeImplication(p,
					magi.PlusConst(-threshold),
					lp.Variable(m.HelpRaw[y]).
						Minus(lp.Constant(benchmark).Minus(magi.Scale(seg.Pct/12))),
					bigM, fmt.Sprintf("FPL_%d_%d", int(seg.FPLMultiple*100), y))
			}
			p.AddLE(fmt.Sprintf("FPL_Base_%d", y),
				lp.Variable(m.HelpRaw[y]),
				lp.Constant(benchmark).Minus(magi.Scale(acaBasePct/12)))

			lp.EncodeMax(p, m.HelpNonneg[y],
				lp.Variable(m.HelpRaw[y]), lp.Constant(0),
				bigM, fmt.Sprintf("Help_Nonneg_%d", y))
			lp.EncodeMin(p, m.Help[y],
				lp.Variable(m.HelpNonneg[y]), lp.Constant(h.Health.Premium*iMul),
				bigM, fmt.Sprintf("Help_%d", y))

			p.AddEQ(fmt.Sprintf("HC_Payment_Calc_%d", y),
				lp.Variable(m.HealthPayment[y]),
				lp.Constant(h.Health.Premium*hcIMul).Minus(lp.Variable(m.Help[y])).Scale(months))

		case age <= medicareAge && h.Health != nil:
			// Premium but no benchmark data: pay full freight, no subsidy.
			p.AddEQ(fmt.Sprintf("HC_Payment_Calc_%d", y),
				lp.Variable(m.HealthPayment[y]),
				lp.Constant(h.Health.Premium*hcIMul*months))
			p.AddEQ(fmt.Sprintf("Help_Zero_%d", y),
				lp.Variable(m.Help[y]), lp.Constant(0))

		default:
			p.AddEQ(fmt.Sprintf("HC_Payment_Calc_%d", y),
				lp.Variable(m.HealthPayment[y]), lp.Constant(0))
			p.AddEQ(fmt.Sprintf("Help_Zero_%d", y),
				lp.Variable(m.Help[y]), lp.Constant(0))
		}
	}
}

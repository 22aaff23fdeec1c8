package plan

import (
	"math"

	"github.com/drawplan/drawplan/internal/domain"
	"github.com/drawplan/drawplan/internal/lp"
)

// Extract converts a solved variable vector into the year-indexed plan, with
// every amount un-discounted back to today's dollars.
//
// The solver treats a conversion paired with a same-year tax-free withdrawal
// as interchangeable with a plain deferred withdrawal once the early-
// withdrawal penalty no longer applies; the pair washes out of every balance
// and tax term. Extraction nets the pair into the deferred withdrawal so the
// reported plan is the simpler move. The input solution is never mutated, so
// extracting twice yields identical records.
func (m *Model) Extract(sol *lp.Solution, status domain.PlanStatus, tol float64) *domain.PlanResult {
	h := m.H
	n := h.NumYears

	res := &domain.PlanResult{
		Status:          status,
		Tolerance:       tol,
		SpendingFloor:   sol.Value(m.SpendingFloor),
		EndOfPlanAssets: sol.Value(m.EOPAssets) / h.InflationFactor(n),
		Years:           make([]domain.YearRecord, n),
	}

	for y := 0; y < n; y++ {
		iMul := m.iMul(y)

		deferredW := sol.Value(m.WithdrawDeferred[y])
		conversion := sol.Value(m.Conversion[y])
		taxFreeW := sol.Value(m.WithdrawTaxFree[y])
		if !h.UnderEarlyWithdrawalAge(y) {
			adjust := math.Min(conversion, taxFreeW)
			deferredW += adjust
			conversion -= adjust
			taxFreeW -= adjust
		}

		spendableCGD := 0.0
		if y > 0 {
			spendableCGD = sol.Value(m.CGD[y-1]) / iMul
		}

		rec := domain.YearRecord{
			Year: h.CurrentYear + y,
			Age:  h.Age(y),

			BrokerageBalance:  sol.Value(m.BalBrokerage[y]) / iMul,
			BrokerageWithdraw: sol.Value(m.WithdrawBrokerage[y]) / iMul,
			DeferredBalance:   sol.Value(m.BalDeferred[y]) / iMul,
			DeferredWithdraw:  deferredW / iMul,
			TaxFreeBalance:    sol.Value(m.BalTaxFree[y]) / iMul,
			TaxFreeWithdraw:   taxFreeW / iMul,
			Conversion:        conversion / iMul,

			OrdinaryIncome:      sol.Value(m.OrdinaryIncome[y]) / iMul,
			StateOrdinaryIncome: sol.Value(m.StateOrdinaryIncome[y]) / iMul,
			FederalAGI:          sol.Value(m.FedAGI[y]) / iMul,
			FederalTax:          sol.Value(m.FedTax[y]) / iMul,
			StateTax:            sol.Value(m.StateTax[y]) / iMul,
			TotalTax:            sol.Value(m.TotalTax[y]) / iMul,

			CapGainsDistribution: sol.Value(m.CGD[y]) / iMul,
			SpendableCGD:         spendableCGD,
			TotalCapGains:        sol.Value(m.TotalCapGains[y]) / iMul,

			RequiredRMD:    sol.Value(m.RequiredRMD[y]) / iMul,
			SocialSecurity: h.SocialSecurity[y] / iMul,
			HealthPayment:  sol.Value(m.HealthPayment[y]) / iMul,
			HealthSubsidy:  sol.Value(m.Help[y]) * m.subsidyMonths(y) / iMul,

			Spending: sol.Value(m.TrueSpending[y]) / iMul,
			Excess:   sol.Value(m.Excess[y]) / iMul,

			BracketAlloc:         gridRow(sol, m.BracketAlloc, y, iMul),
			StateBracketAlloc:    gridRow(sol, m.StateBracketAlloc, y, iMul),
			CapGainsBracketAlloc: gridRow(sol, m.CGPortion, y, iMul),
		}
		res.Years[y] = rec
	}
	return res
}

// subsidyMonths is how many months of year y the marketplace subsidy covers.
func (m *Model) subsidyMonths(y int) float64 {
	age := m.H.Age(y)
	switch {
	case age < medicareAge:
		return 12
	case age == medicareAge:
		return float64(m.H.BirthMonth - 1)
	default:
		return 0
	}
}

func gridRow(sol *lp.Solution, g *VarGrid, y int, iMul float64) []float64 {
	row := g.Row(y)
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = sol.Value(v) / iMul
	}
	return out
}

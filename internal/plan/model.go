// Package plan is the core of the drawdown planner: it translates a
// Household into a mixed-integer linear program, drives the external solver
// through a tolerance-relaxation retry loop, and extracts the solved plan
// back into year-indexed records.
package plan

import (
	"fmt"
	"math"

	"github.com/drawplan/drawplan/internal/domain"
	"github.com/drawplan/drawplan/internal/lp"
)

// bigM dominates every dollar magnitude a feasible plan can reach. It also
// stands in for the "infinite" width of each table's top bracket. Larger
// values would degrade the solver's numerics; smaller ones risk making the
// big-M relaxations bind.
const bigM = 100_000_000

// niiRate is the net-investment-income surtax rate.
const niiRate = 0.038

// earlyWithdrawalRate is the penalty on deferred withdrawals before age 59.5.
const earlyWithdrawalRate = 0.10

// VarGrid is a bounds-checked (year, bracket) container of variables. Lookups
// outside the allocated shape are programmer errors and panic with the grid
// name rather than silently misindexing.
type VarGrid struct {
	name string
	rows int
	cols int
	vars []*lp.Var
}

func newVarGrid(p *lp.Problem, name string, rows, cols int) *VarGrid {
	g := &VarGrid{name: name, rows: rows, cols: cols, vars: make([]*lp.Var, rows*cols)}
	for y := 0; y < rows; y++ {
		for j := 0; j < cols; j++ {
			g.vars[y*cols+j] = p.NewVar(fmt.Sprintf("%s_%d_%d", name, y, j))
		}
	}
	return g
}

// At returns the variable for (year, bracket).
func (g *VarGrid) At(y, j int) *lp.Var {
	if y < 0 || y >= g.rows || j < 0 || j >= g.cols {
		panic(fmt.Sprintf("%s: index (%d,%d) outside %dx%d", g.name, y, j, g.rows, g.cols))
	}
	return g.vars[y*g.cols+j]
}

// Row returns all bracket variables for one year.
func (g *VarGrid) Row(y int) []*lp.Var {
	if y < 0 || y >= g.rows {
		panic(fmt.Sprintf("%s: row %d outside %d rows", g.name, y, g.rows))
	}
	return g.vars[y*g.cols : (y+1)*g.cols]
}

// Cols returns the bracket count.
func (g *VarGrid) Cols() int { return g.cols }

// Model is one fully-constrained problem instance plus handles to every
// variable the results extractor needs. All variables belong to the in-flight
// Problem and are discarded with it; each solve attempt builds a fresh Model.
type Model struct {
	Prob *lp.Problem
	H    *domain.Household
	Cfg  domain.RunConfig

	SpendingFloor *lp.Var
	EOPAssets     *lp.Var

	WithdrawBrokerage []*lp.Var
	WithdrawDeferred  []*lp.Var
	WithdrawTaxFree   []*lp.Var
	Conversion        []*lp.Var

	BalBrokerage []*lp.Var
	BalDeferred  []*lp.Var
	BalTaxFree   []*lp.Var

	OrdinaryIncome      []*lp.Var
	StateOrdinaryIncome []*lp.Var
	FedAGI              []*lp.Var
	FedTax              []*lp.Var
	StateTax            []*lp.Var
	TotalTax            []*lp.Var

	CGD           []*lp.Var
	BrokerageCG   []*lp.Var
	TotalCapGains []*lp.Var

	FedTaxOrdinary []*lp.Var
	FedTaxCG       []*lp.Var
	FedTaxNII      []*lp.Var
	FedTaxEarly    []*lp.Var

	RequiredRMD  []*lp.Var
	Excess       []*lp.Var
	TrueSpending []*lp.Var

	StdDedAmount        []*lp.Var
	StdDedIncomePortion []*lp.Var
	StdDedCGPortion     []*lp.Var
	BracketAlloc        *VarGrid

	StateStdDedAmount []*lp.Var
	StateStdDedUsed   []*lp.Var
	StateBracketAlloc *VarGrid

	CGRawOver       *VarGrid
	CGOver          *VarGrid
	CGIncomePortion *VarGrid
	CGPortion       *VarGrid

	NIIRawOver   []*lp.Var
	NIIOver      []*lp.Var
	NIICGPortion []*lp.Var

	HelpRaw       []*lp.Var
	HelpNonneg    []*lp.Var
	Help          []*lp.Var
	HealthPayment []*lp.Var

	Jagged []*lp.Var

	objectives []lp.Expr
}

// Build constructs the complete constraint set and objective list for one
// solve attempt.
func Build(h *domain.Household, cfg domain.RunConfig) (*Model, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Objective.Validate(); err != nil {
		return nil, err
	}
	m := &Model{
		Prob: lp.New("drawplan", lp.Maximize),
		H:    h,
		Cfg:  cfg,
	}
	m.createVariables()
	m.buildBalances()
	m.buildSpending()
	m.buildFederalTaxes()
	m.buildCapitalGains()
	m.buildStateTaxes()
	m.buildHealthcare()
	m.buildDistributionRules()
	m.buildSmoothing()
	m.buildTerminal()
	m.buildObjectives()
	if err := m.Prob.Validate(); err != nil {
		return nil, fmt.Errorf("model is structurally broken: %w", err)
	}
	return m, nil
}

// Objectives returns the objective expressions in priority order; the solve
// driver optimizes them sequentially.
func (m *Model) Objectives() []lp.Expr { return m.objectives }

func (m *Model) createVariables() {
	n := m.H.NumYears
	p := m.Prob

	m.SpendingFloor = p.NewVar("Spending_Floor")
	m.EOPAssets = p.NewVar("EndOfPlan_Assets")

	m.WithdrawBrokerage = newVarRow(p, "Brokerage_Withdraw", n)
	m.WithdrawDeferred = newVarRow(p, "IRA_Withdraw", n)
	m.WithdrawTaxFree = newVarRow(p, "Roth_Withdraw", n)
	m.Conversion = newVarRow(p, "IRA_to_Roth", n)

	m.BalBrokerage = newVarRow(p, "Brokerage_Balance", n)
	m.BalDeferred = newVarRow(p, "IRA_Balance", n)
	m.BalTaxFree = newVarRow(p, "Roth_Balance", n)

	m.OrdinaryIncome = newVarRow(p, "Ordinary_Income", n)
	m.StateOrdinaryIncome = newVarRow(p, "State_Ordinary_Income", n)
	m.FedAGI = newVarRow(p, "Fed_AGI", n)
	m.FedTax = newVarRow(p, "Fed_Tax", n)
	m.StateTax = newVarRow(p, "State_Tax", n)
	m.TotalTax = newVarRow(p, "Total_Tax", n)

	m.CGD = newVarRow(p, "Capital_Gains_Distribution", n)
	m.BrokerageCG = newVarRow(p, "Brokerage_CG", n)
	m.TotalCapGains = newVarRow(p, "Total_Capital_Gains", n)

	m.FedTaxOrdinary = newVarRow(p, "Fed_Tax_Ordinary", n)
	m.FedTaxCG = newVarRow(p, "Fed_Tax_CG", n)
	m.FedTaxNII = newVarRow(p, "Fed_Tax_NII", n)
	m.FedTaxEarly = newVarRow(p, "Fed_Tax_Early_Withdrawal", n)

	m.RequiredRMD = newVarRow(p, "Required_RMD", n)
	m.Excess = newVarRow(p, "Excess", n)
	m.TrueSpending = newVarRow(p, "True_Spending", n)

	m.StdDedAmount = newVarRow(p, "Std_Deduction_Amount", n)
	m.StdDedIncomePortion = newVarRow(p, "Std_Deduction_Income", n)
	m.StdDedCGPortion = newVarRow(p, "Std_Deduction_CG", n)
	m.BracketAlloc = newVarGrid(p, "Tax_Bracket_Amount", n, len(m.H.TaxTable))

	m.StateStdDedAmount = newVarRow(p, "State_Std_Deduction_Amount", n)
	m.StateStdDedUsed = newVarRow(p, "State_Std_Deduction_Used", n)
	m.StateBracketAlloc = newVarGrid(p, "State_Tax_Bracket_Amount", n, len(m.H.StateTaxTable))

	ncg := len(m.H.CapitalGainsTable)
	m.CGRawOver = newFreeVarGrid(p, "CG_Raw_Over", n, ncg)
	m.CGOver = newVarGrid(p, "CG_Over", n, ncg)
	m.CGIncomePortion = newVarGrid(p, "CG_Income_Portion", n, ncg)
	m.CGPortion = newVarGrid(p, "CG_Portion", n, ncg)

	m.NIIRawOver = newFreeVarRow(p, "NII_Raw_Over", n)
	m.NIIOver = newVarRow(p, "NII_Over", n)
	m.NIICGPortion = newVarRow(p, "NII_CG_Portion", n)

	m.HelpRaw = newFreeVarRow(p, "ACA_Raw_Help", n)
	m.HelpNonneg = newFreeVarRow(p, "ACA_Nonneg_Help", n)
	m.Help = newVarRow(p, "ACA_Help", n)
	m.HealthPayment = newVarRow(p, "ACA_HC_Payment", n)

	if n > 1 {
		m.Jagged = newVarRow(p, "Jagged", n-1)
	}
}

func newVarRow(p *lp.Problem, name string, n int) []*lp.Var {
	row := make([]*lp.Var, n)
	for y := range row {
		row[y] = p.NewVar(fmt.Sprintf("%s_%d", name, y))
	}
	return row
}

func newFreeVarRow(p *lp.Problem, name string, n int) []*lp.Var {
	row := make([]*lp.Var, n)
	for y := range row {
		row[y] = p.NewFreeVar(fmt.Sprintf("%s_%d", name, y))
	}
	return row
}

func newFreeVarGrid(p *lp.Problem, name string, rows, cols int) *VarGrid {
	g := &VarGrid{name: name, rows: rows, cols: cols, vars: make([]*lp.Var, rows*cols)}
	for y := 0; y < rows; y++ {
		for j := 0; j < cols; j++ {
			g.vars[y*cols+j] = p.NewFreeVar(fmt.Sprintf("%s_%d_%d", name, y, j))
		}
	}
	return g
}

// iMul is the cumulative inflation multiplier for plan year y.
func (m *Model) iMul(y int) float64 {
	return m.H.InflationFactor(y)
}

// taxIMul is the multiplier applied to bracket bounds and deductions. Under
// pessimistic taxes the thresholds grow one point slower than inflation, so
// real tax burden creeps up over the horizon.
func (m *Model) taxIMul(y int) float64 {
	if m.Cfg.PessimisticTaxes {
		return math.Pow(m.H.InflationRate-0.01, float64(y))
	}
	return m.iMul(y)
}

// hcIMul is the multiplier applied to healthcare costs; pessimistic
// healthcare inflates them one point faster.
func (m *Model) hcIMul(y int) float64 {
	if m.Cfg.PessimisticHealthcare {
		return math.Pow(m.H.InflationRate+0.01, float64(y))
	}
	return m.iMul(y)
}

// taxableFractionOfBrokerage estimates the taxable-gain share of a brokerage
// withdrawal in year y. The remaining cost basis is assumed to stay constant
// in dollars while the balance grows at the growth rate net of distributions,
// so the basis share shrinks over time.
func (m *Model) taxableFractionOfBrokerage(y int) float64 {
	b := m.H.Brokerage
	if b.Balance <= 0 || b.CostBasis <= 0 {
		return 1
	}
	basisShare := b.CostBasis / (b.Balance * math.Pow(m.H.GrowthRate-b.DistributionYield, float64(y)))
	if basisShare > 1 {
		basisShare = 1
	}
	return 1 - basisShare
}

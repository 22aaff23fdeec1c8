package plan

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drawplan/drawplan/internal/domain"
)

// testHousehold builds a small valid household retiring at startAge with an
// n-year horizon.
func testHousehold(startAge, n int) *domain.Household {
	flat := func(n int) []float64 { return make([]float64, n) }
	ceiling := make([]float64, n)
	for i := range ceiling {
		ceiling[i] = domain.NoCeiling
	}
	factors := make([]float64, 50)
	for i := range factors {
		factors[i] = 27.4 - float64(i)*0.5
	}
	return &domain.Household{
		InflationRate: 1.025,
		GrowthRate:    1.06,
		CurrentYear:   2025,
		StartAge:      startAge,
		BirthMonth:    1,
		RetireAge:     startAge,
		EndAge:        startAge + n,
		NumYears:      n,

		TaxTable: domain.TaxTable{
			{Rate: 0.10, Lower: 0, Upper: 23850},
			{Rate: 0.22, Lower: 23850, Upper: math.Inf(1)},
		},
		StateTaxTable: domain.TaxTable{{Rate: 0.05, Lower: 0, Upper: math.Inf(1)}},
		CapitalGainsTable: domain.TaxTable{
			{Rate: 0, Lower: 0, Upper: 96700},
			{Rate: 0.15, Lower: 96700, Upper: math.Inf(1)},
		},
		StandardDeduction:      30000,
		StateStandardDeduction: 17000,
		NIIThreshold:           250000,

		StateTaxesRetirementIncome: true,

		Income:                   flat(n),
		Expenses:                 flat(n),
		TaxedIncome:              flat(n),
		StateTaxedIncome:         flat(n),
		SocialSecurity:           flat(n),
		SocialSecurityTaxed:      flat(n),
		StateSocialSecurityTaxed: flat(n),
		IncomeCeiling:            ceiling,

		Brokerage:  domain.BrokerageAccount{Balance: 400000, CostBasis: 200000, DistributionYield: 0.015},
		Deferred:   domain.DeferredAccount{Balance: 600000},
		TaxFree:    domain.TaxFreeAccount{Balance: 100000},
		RMDFactors: factors,
	}
}

func maxSpend() domain.RunConfig {
	return domain.RunConfig{Objective: domain.Objective{Kind: domain.MaxSpend}}
}

func TestBuildProducesValidModel(t *testing.T) {
	h := testHousehold(62, 5)
	m, err := Build(h, maxSpend())
	require.NoError(t, err)

	assert.Greater(t, m.Prob.NumBinaries(), 0, "min/max encodings need indicators")
	require.Len(t, m.WithdrawDeferred, 5)

	for _, name := range []string{
		"Init_Brokerage_Balance", "Init_IRA_Balance", "Init_Roth_Balance",
		"IRA_Balance_Calc_1", "Roth_Balance_Calc_4",
		"CGD_Calc_0", "Total_Cap_Gains_Calc_3",
		"Min_Spend_0", "Excess_Calc_2", "True_Spending_Calc_4",
		"Ordinary_Income_Calc_0", "Sum_Tax_Brackets_4",
		"Sum_CG_Portions_0", "Fed_AGI_Calc_0", "Fed_Tax_NII_Calc_2",
		"State_Ordinary_Income_Calc_0", "Sum_State_Tax_Brackets_3",
		"Total_Tax_Calc_4",
		"Final_Brokerage_NonNeg", "EndOfPlan_Assets_Calc",
	} {
		assert.NotNil(t, m.Prob.Constraint(name), name)
	}
}

func TestInitialBalanceConstraints(t *testing.T) {
	h := testHousehold(62, 3)
	m, err := Build(h, maxSpend())
	require.NoError(t, err)

	c := m.Prob.Constraint("Init_IRA_Balance")
	require.NotNil(t, c)
	assert.Equal(t, 600000.0, c.RHS)
	assert.Equal(t, 1.0, c.Expr.Coef(m.BalDeferred[0]))
}

func TestObjectivesPerKind(t *testing.T) {
	h := testHousehold(62, 4)

	m, err := Build(h, maxSpend())
	require.NoError(t, err)
	assert.Len(t, m.Objectives(), 2, "spending floor, then taxes and smoothness")
	assert.Nil(t, m.Prob.Constraint("Set_Spending_Floor"))

	m, err = Build(h, domain.RunConfig{Objective: domain.Objective{Kind: domain.MaxAssets, Value: 60000}})
	require.NoError(t, err)
	assert.Len(t, m.Objectives(), 2)
	c := m.Prob.Constraint("Set_Spending_Floor")
	require.NotNil(t, c)
	assert.Equal(t, 60000.0, c.RHS)

	m, err = Build(h, domain.RunConfig{Objective: domain.Objective{Kind: domain.MinTaxes, Value: 60000}})
	require.NoError(t, err)
	assert.Len(t, m.Objectives(), 1, "min-taxes has no secondary stage")
	require.NotNil(t, m.Prob.Constraint("Set_Spending_Floor"))
}

func TestBuildRejectsBadInputs(t *testing.T) {
	h := testHousehold(62, 3)
	_, err := Build(h, domain.RunConfig{Objective: domain.Objective{Kind: domain.MaxAssets}})
	assert.Error(t, err, "fixed-floor objective without a floor")

	h.Income = h.Income[:1]
	_, err = Build(h, maxSpend())
	assert.Error(t, err)
}

func TestRMDFloorOnlyInMandatoryYears(t *testing.T) {
	// Born 1953: the age-73 rule applies. Ages 72..75 over four years.
	h := testHousehold(72, 4)
	m, err := Build(h, maxSpend())
	require.NoError(t, err)

	assert.Nil(t, m.Prob.Constraint("RMD_Floor_0"), "age 72 is below the start age")
	for y := 1; y < 4; y++ {
		require.NotNil(t, m.Prob.Constraint("RMD_Floor_"+strconv.Itoa(y)), "age %d", 72+y)
	}

	// Pinned to zero before distributions start, tied to the balance after.
	c := m.Prob.Constraint("RMD_Amount_0")
	require.NotNil(t, c)
	assert.Equal(t, 0.0, c.RHS)
	assert.Zero(t, c.Expr.Coef(m.BalDeferred[0]))

	c = m.Prob.Constraint("RMD_Amount_1")
	require.NotNil(t, c)
	factor := h.RMDFactor(73)
	assert.InDelta(t, -1/factor, c.Expr.Coef(m.BalDeferred[1]), 1e-12)
}

func TestRMDStartsAt75ForLaterBirths(t *testing.T) {
	// Born 1963: the age-75 rule applies.
	h := testHousehold(62, 14)
	m, err := Build(h, maxSpend())
	require.NoError(t, err)

	assert.Nil(t, m.Prob.Constraint("RMD_Floor_11"), "age 73")
	assert.Nil(t, m.Prob.Constraint("RMD_Floor_12"), "age 74")
	assert.NotNil(t, m.Prob.Constraint("RMD_Floor_13"), "age 75")
}

func TestRothSeasoningCap(t *testing.T) {
	h := testHousehold(50, 10)
	h.TaxFree.Contributions = []domain.Contribution{{Age: 47, Amount: 25000}}
	m, err := Build(h, maxSpend())
	require.NoError(t, err)

	// A three-year-old contribution is not seasoned at age 50.
	c := m.Prob.Constraint("Roth_Basis_Limit_0")
	require.NotNil(t, c)
	assert.Equal(t, 0.0, c.RHS)

	// By age 52 it is five years old.
	c = m.Prob.Constraint("Roth_Basis_Limit_2")
	require.NotNil(t, c)
	assert.Equal(t, 25000.0, c.RHS)

	// Conversions season after five years: year 6 may draw on years 0 and 1.
	c = m.Prob.Constraint("Roth_Basis_Limit_6")
	require.NotNil(t, c)
	assert.Equal(t, -1.0, c.Expr.Coef(m.Conversion[0]))
	assert.Equal(t, -1.0, c.Expr.Coef(m.Conversion[1]))
	assert.Zero(t, c.Expr.Coef(m.Conversion[2]))
	assert.Equal(t, 1.0, c.Expr.Coef(m.WithdrawTaxFree[5]), "prior withdrawals deplete basis")
}

func TestRothUnrestrictedWhenSeasonedAndOver59(t *testing.T) {
	h := testHousehold(65, 3)
	h.TaxFree.Contributions = []domain.Contribution{{Age: 50, Amount: 1000}}
	m, err := Build(h, maxSpend())
	require.NoError(t, err)
	for y := 0; y < 3; y++ {
		assert.Nil(t, m.Prob.Constraint("Roth_Basis_Limit_"+strconv.Itoa(y)))
	}
}

func TestEarlyWithdrawalPenalty(t *testing.T) {
	h := testHousehold(55, 10)
	m, err := Build(h, maxSpend())
	require.NoError(t, err)

	// Under 59.5: the penalty tracks deferred withdrawals.
	c := m.Prob.Constraint("Fed_Tax_Early_Withdrawal_Calc_0")
	require.NotNil(t, c)
	assert.Equal(t, -earlyWithdrawalRate, c.Expr.Coef(m.WithdrawDeferred[0]))

	// From 59.5 on it is pinned to zero.
	c = m.Prob.Constraint("Fed_Tax_Early_Withdrawal_Calc_5")
	require.NotNil(t, c)
	assert.Zero(t, c.Expr.Coef(m.WithdrawDeferred[5]))
	assert.Equal(t, 0.0, c.RHS)
}

func TestNoConversionFlags(t *testing.T) {
	h := testHousehold(62, 4)
	h.SocialSecurity[2] = 40000
	h.SocialSecurity[3] = 40000

	cfg := maxSpend()
	cfg.NoConversions = true
	m, err := Build(h, cfg)
	require.NoError(t, err)
	for y := 0; y < 4; y++ {
		require.NotNil(t, m.Prob.Constraint("No_Conversion_"+strconv.Itoa(y)))
	}

	cfg = maxSpend()
	cfg.NoConversionsAfterSocSec = true
	m, err = Build(h, cfg)
	require.NoError(t, err)
	assert.Nil(t, m.Prob.Constraint("No_Conversion_0"))
	assert.Nil(t, m.Prob.Constraint("No_Conversion_1"))
	assert.NotNil(t, m.Prob.Constraint("No_Conversion_2"))
	assert.NotNil(t, m.Prob.Constraint("No_Conversion_3"))
}

func TestIncomeCeilingEmittedOnlyWhenSet(t *testing.T) {
	h := testHousehold(62, 3)
	h.IncomeCeiling[1] = 90000
	m, err := Build(h, maxSpend())
	require.NoError(t, err)

	assert.Nil(t, m.Prob.Constraint("Income_Ceiling_0"))
	c := m.Prob.Constraint("Income_Ceiling_1")
	require.NotNil(t, c)
	assert.Equal(t, 90000.0, c.RHS)
}

func TestHealthcareSubsidyConstraints(t *testing.T) {
	h := testHousehold(62, 6)
	h.BirthMonth = 4
	h.Health = &domain.HealthSubsidy{Premium: 900, SLCSP: 1000, PovertyLine: 21150, Covered: 2}
	m, err := Build(h, maxSpend())
	require.NoError(t, err)

	// Subsidy machinery in the marketplace years.
	require.NotNil(t, m.Prob.Constraint("FPL_Base_0"))
	require.NotNil(t, m.Prob.Constraint("FPL_350_0_if_upper"))
	require.NotNil(t, m.Prob.Constraint("FPL_200_2_then"))
	require.NotNil(t, m.Prob.Constraint("Help_0_min_le_a"))

	// The Medicare transition year pays only the pre-birthday months.
	c := m.Prob.Constraint("HC_Payment_Calc_3")
	require.NotNil(t, c)
	assert.Equal(t, 3.0, c.Expr.Coef(m.Help[3]), "age 65, April birthday: three months")

	// After Medicare there is no marketplace payment at all.
	c = m.Prob.Constraint("HC_Payment_Calc_4")
	require.NotNil(t, c)
	assert.Equal(t, 0.0, c.RHS)
	assert.Zero(t, c.Expr.Coef(m.Help[4]))
	assert.Nil(t, m.Prob.Constraint("FPL_Base_4"))
}

func TestHealthcareWithoutBenchmarkPaysFullPremium(t *testing.T) {
	h := testHousehold(62, 2)
	h.Health = &domain.HealthSubsidy{Premium: 900}
	m, err := Build(h, maxSpend())
	require.NoError(t, err)

	assert.Nil(t, m.Prob.Constraint("FPL_Base_0"))
	c := m.Prob.Constraint("HC_Payment_Calc_0")
	require.NotNil(t, c)
	assert.Equal(t, 900.0*12, c.RHS)
}

func TestPessimisticMultipliers(t *testing.T) {
	h := testHousehold(62, 5)

	m, err := Build(h, maxSpend())
	require.NoError(t, err)
	assert.InDelta(t, math.Pow(1.025, 3), m.taxIMul(3), 1e-12)
	assert.Equal(t, m.iMul(3), m.hcIMul(3))

	cfg := maxSpend()
	cfg.PessimisticTaxes = true
	cfg.PessimisticHealthcare = true
	m, err = Build(h, cfg)
	require.NoError(t, err)
	assert.InDelta(t, math.Pow(1.015, 3), m.taxIMul(3), 1e-12, "brackets lag inflation")
	assert.InDelta(t, math.Pow(1.035, 3), m.hcIMul(3), 1e-12, "healthcare outpaces it")

	// Pessimistic brackets shrink the year-3 standard deduction cap.
	c := m.Prob.Constraint("Max_Std_Deduction_3")
	require.NotNil(t, c)
	assert.InDelta(t, 30000*math.Pow(1.015, 3), c.RHS, 1e-6)
}

func TestTaxableFractionOfBrokerage(t *testing.T) {
	h := testHousehold(62, 5)
	m, err := Build(h, maxSpend())
	require.NoError(t, err)

	assert.InDelta(t, 0.5, m.taxableFractionOfBrokerage(0), 1e-12, "half the balance is basis")
	assert.Greater(t, m.taxableFractionOfBrokerage(4), m.taxableFractionOfBrokerage(0),
		"the basis share shrinks as the account grows")

	h.Brokerage = domain.BrokerageAccount{}
	m, err = Build(h, maxSpend())
	require.NoError(t, err)
	assert.Equal(t, 1.0, m.taxableFractionOfBrokerage(0))
}

func TestVarGridBoundsChecks(t *testing.T) {
	h := testHousehold(62, 3)
	m, err := Build(h, maxSpend())
	require.NoError(t, err)

	assert.Equal(t, len(h.TaxTable), m.BracketAlloc.Cols())
	assert.NotNil(t, m.BracketAlloc.At(2, 1))
	assert.Len(t, m.BracketAlloc.Row(0), len(h.TaxTable))
	assert.Panics(t, func() { m.BracketAlloc.At(3, 0) })
	assert.Panics(t, func() { m.BracketAlloc.At(0, len(h.TaxTable)) })
	assert.Panics(t, func() { m.BracketAlloc.Row(-1) })
}

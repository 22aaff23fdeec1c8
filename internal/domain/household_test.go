package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaxTableValidate(t *testing.T) {
	valid := TaxTable{
		{Rate: 0.10, Lower: 0, Upper: 20000},
		{Rate: 0.20, Lower: 20000, Upper: math.Inf(1)},
	}
	require.NoError(t, valid.Validate("test"))

	tests := []struct {
		name  string
		table TaxTable
	}{
		{"empty", TaxTable{}},
		{"first bracket not at zero", TaxTable{{Rate: 0.1, Lower: 5, Upper: math.Inf(1)}}},
		{"gap between brackets", TaxTable{
			{Rate: 0.1, Lower: 0, Upper: 100},
			{Rate: 0.2, Lower: 200, Upper: math.Inf(1)},
		}},
		{"bounded top bracket", TaxTable{{Rate: 0.1, Lower: 0, Upper: 100}}},
		{"rate of 100%", TaxTable{{Rate: 1.0, Lower: 0, Upper: math.Inf(1)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.table.Validate("test"))
		})
	}
}

func TestHalfAge(t *testing.T) {
	h := &Household{StartAge: 55, BirthMonth: 6}
	assert.Equal(t, 55, h.HalfAge())
	h.BirthMonth = 7
	assert.Equal(t, 54, h.HalfAge(), "July and later birthdays round the half-year down")

	assert.True(t, h.UnderEarlyWithdrawalAge(4), "54+4 < 59")
	assert.False(t, h.UnderEarlyWithdrawalAge(5))
}

func TestRMDStartAge(t *testing.T) {
	h := &Household{CurrentYear: 2025, StartAge: 66}
	assert.Equal(t, 1959, h.BirthYear())
	assert.Equal(t, 73, h.RMDStartAge(), "born before 1960 stays under the age-73 rule")

	h.StartAge = 65
	assert.Equal(t, 1960, h.BirthYear())
	assert.Equal(t, 75, h.RMDStartAge())
}

func TestRMDFactor(t *testing.T) {
	h := &Household{RMDFactors: []float64{27.4, 26.5, 25.5}}
	assert.Equal(t, 27.4, h.RMDFactor(72))
	assert.Equal(t, 26.5, h.RMDFactor(73))
	assert.Equal(t, 25.5, h.RMDFactor(90), "beyond the table clamps to the last entry")
	assert.Zero(t, h.RMDFactor(71))
}

func TestTaxFreeAccountOpenedAtAge(t *testing.T) {
	acct := TaxFreeAccount{Contributions: []Contribution{{Age: 50, Amount: 1}, {Age: 45, Amount: 2}}}
	assert.Equal(t, 45, acct.OpenedAtAge(60))
	assert.Equal(t, 60, TaxFreeAccount{}.OpenedAtAge(60))
}

func TestObjectiveValidate(t *testing.T) {
	assert.NoError(t, Objective{Kind: MaxSpend}.Validate())
	assert.NoError(t, Objective{Kind: MaxAssets, Value: 50000}.Validate())
	assert.Error(t, Objective{Kind: MaxAssets}.Validate())
	assert.Error(t, Objective{Kind: MinTaxes, Value: -1}.Validate())
	assert.Error(t, Objective{Kind: ObjectiveKind(9)}.Validate())
}

func TestHouseholdValidate(t *testing.T) {
	h := validHousehold()
	require.NoError(t, h.Validate())

	h = validHousehold()
	h.Brokerage.CostBasis = h.Brokerage.Balance + 1
	assert.Error(t, h.Validate())

	h = validHousehold()
	h.Income = h.Income[:1]
	assert.Error(t, h.Validate())

	h = validHousehold()
	h.NumYears = 5
	assert.Error(t, h.Validate())
}

func validHousehold() *Household {
	flat := func(n int) []float64 { return make([]float64, n) }
	n := 3
	ceiling := make([]float64, n)
	for i := range ceiling {
		ceiling[i] = NoCeiling
	}
	return &Household{
		InflationRate: 1.025,
		GrowthRate:    1.06,
		CurrentYear:   2025,
		StartAge:      60,
		BirthMonth:    1,
		RetireAge:     60,
		EndAge:        63,
		NumYears:      n,
		TaxTable: TaxTable{
			{Rate: 0.10, Lower: 0, Upper: 20000},
			{Rate: 0.25, Lower: 20000, Upper: math.Inf(1)},
		},
		StateTaxTable:     TaxTable{{Rate: 0, Lower: 0, Upper: math.Inf(1)}},
		CapitalGainsTable: TaxTable{{Rate: 0, Lower: 0, Upper: math.Inf(1)}},

		Income:                   flat(n),
		Expenses:                 flat(n),
		TaxedIncome:              flat(n),
		StateTaxedIncome:         flat(n),
		SocialSecurity:           flat(n),
		SocialSecurityTaxed:      flat(n),
		StateSocialSecurityTaxed: flat(n),
		IncomeCeiling:            ceiling,

		Brokerage:  BrokerageAccount{Balance: 100000, CostBasis: 50000, DistributionYield: 0.01},
		Deferred:   DeferredAccount{Balance: 200000},
		TaxFree:    TaxFreeAccount{Balance: 50000},
		RMDFactors: []float64{27.4, 26.5},
	}
}

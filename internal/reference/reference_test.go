package reference

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFederal(t *testing.T) {
	tables, err := Load()
	require.NoError(t, err)

	for _, status := range []string{"MFJ", "Single"} {
		fed, err := tables.Federal(status)
		require.NoError(t, err, status)
		assert.Greater(t, fed.StandardDeduction, 0.0)
		assert.Greater(t, fed.NIIThreshold, 0.0)
		require.NoError(t, fed.Brackets.Validate(status))
		require.NoError(t, fed.CapitalGains.Validate(status))
		assert.Zero(t, fed.CapitalGains[0].Rate, "lowest gains bracket is 0%")
	}

	mfj, _ := tables.Federal("MFJ")
	assert.Equal(t, 30000.0, mfj.StandardDeduction)
	assert.Equal(t, 250000.0, mfj.NIIThreshold)
	assert.InDelta(t, 0.10, mfj.Brackets[0].Rate, 1e-12, "rates are converted from percent")
	assert.True(t, math.IsInf(mfj.Brackets[len(mfj.Brackets)-1].Upper, 1))

	_, err = tables.Federal("HOH")
	assert.Error(t, err)
}

func TestLoadStates(t *testing.T) {
	tables, err := Load()
	require.NoError(t, err)

	va, ok := tables.State("VA", "MFJ")
	require.True(t, ok)
	assert.True(t, va.TaxesRetirementIncome)
	assert.False(t, va.TaxesSocialSecurity)
	require.NoError(t, va.Brackets.Validate("VA"))

	pa, ok := tables.State("PA", "Single")
	require.True(t, ok)
	assert.False(t, pa.TaxesRetirementIncome, "PA exempts retirement income")

	_, ok = tables.State("ZZ", "MFJ")
	assert.False(t, ok)
}

func TestNoStateTax(t *testing.T) {
	s := NoStateTax()
	require.NoError(t, s.Brackets.Validate("none"))
	assert.Zero(t, s.Brackets[0].Rate)
	assert.Zero(t, s.StandardDeduction)
}

func TestRMDFactors(t *testing.T) {
	tables, err := Load()
	require.NoError(t, err)
	require.NotEmpty(t, tables.RMDFactors)
	assert.InDelta(t, 27.4, tables.RMDFactors[0], 1e-9, "age-72 divisor")
	for i := 1; i < len(tables.RMDFactors); i++ {
		assert.LessOrEqual(t, tables.RMDFactors[i], tables.RMDFactors[i-1],
			"divisors shrink with age, plateauing at the final entry")
	}
}

func TestPovertyLine(t *testing.T) {
	tables, err := Load()
	require.NoError(t, err)

	base := tables.PovertyLine("", 1)
	assert.Greater(t, base, 0.0)
	assert.Greater(t, tables.PovertyLine("", 2), base, "larger households have higher lines")
	assert.Greater(t, tables.PovertyLine("AK", 1), base, "Alaska uses its own table")
	assert.Equal(t, tables.PovertyLine("VA", 1), base, "states without a table use the default")
	assert.Equal(t, tables.PovertyLine("", 8), tables.PovertyLine("", 30), "oversize households clamp")
	assert.Zero(t, tables.PovertyLine("", 0))
}

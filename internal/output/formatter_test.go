package output

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drawplan/drawplan/internal/domain"
)

func sampleResult() *domain.PlanResult {
	return &domain.PlanResult{
		Status:          domain.PlanOptimal,
		Tolerance:       0.9999,
		SpendingFloor:   81250.5,
		EndOfPlanAssets: 412000,
		Years: []domain.YearRecord{
			{
				Year: 2026, Age: 62,
				BrokerageBalance: 400000, BrokerageWithdraw: 30000,
				DeferredBalance: 600000, DeferredWithdraw: 20000,
				TaxFreeBalance: 100000,
				Conversion:     15000,
				FederalTax:     6500.25, StateTax: 1200, TotalTax: 7700.25,
				Spending: 81250.5,
			},
			{
				Year: 2027, Age: 63,
				BrokerageBalance: 390000, BrokerageWithdraw: 32000,
				DeferredBalance: 580000, DeferredWithdraw: 18000,
				SpendableCGD: 5400,
				FederalTax:   6000, StateTax: 1100, TotalTax: 7100,
				HealthPayment: 9600.75,
				Spending:      81250.5,
			},
		},
	}
}

func TestGetFormatterByName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"console", "console"},
		{"table", "console"},
		{" TEXT ", "console"},
		{"csv", "csv"},
		{"csv-simple", "csv"},
		{"json", "json"},
	}
	for _, tt := range tests {
		f := GetFormatterByName(tt.in)
		require.NotNil(t, f, tt.in)
		assert.Equal(t, tt.want, f.Name(), tt.in)
	}
	assert.Nil(t, GetFormatterByName("xml"))
}

func TestConsoleFormat(t *testing.T) {
	out, err := ConsoleFormatter{}.Format(sampleResult())
	require.NoError(t, err)
	s := string(out)

	assert.Contains(t, s, "Status: Optimal")
	assert.Contains(t, s, "Spending floor: 81251/yr")
	assert.Contains(t, s, "End-of-plan assets: 412000")

	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	var yearRow string
	for _, l := range lines {
		if strings.HasPrefix(l, "2026") {
			yearRow = l
		}
	}
	require.NotEmpty(t, yearRow)
	assert.Contains(t, yearRow, "30000")
	assert.Contains(t, yearRow, "15000")

	assert.Contains(t, s, "total")
	assert.Contains(t, s, "62000", "withdrawals sum across years")
	assert.Contains(t, s, "Lifetime taxes and healthcare: 24401")
}

func TestConsoleFormatInfeasibleStopsAtStatus(t *testing.T) {
	out, err := ConsoleFormatter{}.Format(&domain.PlanResult{Status: domain.PlanInfeasible})
	require.NoError(t, err)
	assert.Equal(t, "Status: Infeasible\n", string(out))
}

func TestConsoleFormatNotSolvedShowsTolerance(t *testing.T) {
	res := sampleResult()
	res.Status = domain.PlanNotSolved
	res.Tolerance = 0.99
	out, err := ConsoleFormatter{}.Format(res)
	require.NoError(t, err)
	s := string(out)
	assert.Contains(t, s, "best incumbent at tolerance 0.99")
	assert.Contains(t, s, "Spending floor:", "an incumbent still gets the full table")
}

func TestCSVFormat(t *testing.T) {
	out, err := CSVFormatter{}.Format(sampleResult())
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus one row per year")

	header := rows[0]
	assert.Equal(t, "Year", header[0])
	assert.Equal(t, "Excess", header[len(header)-1])
	for i, row := range rows[1:] {
		assert.Len(t, row, len(header), "row %d", i)
	}

	assert.Equal(t, "2026", rows[1][0])
	assert.Equal(t, "62", rows[1][1])
	assert.Equal(t, "30000.00", rows[1][3])
	assert.Equal(t, "6500.25", rows[1][15])
	assert.Equal(t, "5400.00", rows[2][4])
	assert.Equal(t, "9600.75", rows[2][18])
}

func TestJSONFormatRoundTrips(t *testing.T) {
	res := sampleResult()
	out, err := JSONFormatter{}.Format(res)
	require.NoError(t, err)

	var decoded domain.PlanResult
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, res.SpendingFloor, decoded.SpendingFloor)
	require.Len(t, decoded.Years, 2)
	assert.Equal(t, 2027, decoded.Years[1].Year)
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "1235", FormatMoney(1234.6))
	assert.Equal(t, "0", FormatMoney(0))
	assert.Equal(t, "-500", FormatMoney(-499.9))
	assert.Equal(t, "1234.60", FormatMoneyCents(1234.6))
}

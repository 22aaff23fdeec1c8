package output

import (
	"bytes"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/drawplan/drawplan/internal/domain"
)

// ConsoleFormatter renders the plan as a fixed-width table, one row per year,
// all amounts in today's dollars, with a totals row at the bottom.
type ConsoleFormatter struct{}

func (ConsoleFormatter) Name() string { return "console" }

var consoleColumns = []struct {
	header string
	value  func(domain.YearRecord) float64
}{
	{"save", func(r domain.YearRecord) float64 { return r.BrokerageWithdraw }},
	{"CGD", func(r domain.YearRecord) float64 { return r.SpendableCGD }},
	{"IRA", func(r domain.YearRecord) float64 { return r.DeferredWithdraw }},
	{"Roth", func(r domain.YearRecord) float64 { return r.TaxFreeWithdraw }},
	{"IRA2R", func(r domain.YearRecord) float64 { return r.Conversion }},
	{"RMD", func(r domain.YearRecord) float64 { return r.RequiredRMD }},
	{"SS", func(r domain.YearRecord) float64 { return r.SocialSecurity }},
	{"fedTax", func(r domain.YearRecord) float64 { return r.FederalTax }},
	{"stTax", func(r domain.YearRecord) float64 { return r.StateTax }},
	{"HC", func(r domain.YearRecord) float64 { return r.HealthPayment }},
	{"spend", func(r domain.YearRecord) float64 { return r.Spending }},
	{"excess", func(r domain.YearRecord) float64 { return r.Excess }},
}

func (ConsoleFormatter) Format(result *domain.PlanResult) ([]byte, error) {
	buf := &bytes.Buffer{}

	fmt.Fprintf(buf, "Status: %s", result.Status)
	if result.Status == domain.PlanNotSolved {
		fmt.Fprintf(buf, " (best incumbent at tolerance %g)", result.Tolerance)
	}
	fmt.Fprintln(buf)
	if result.Status != domain.PlanOptimal && result.Status != domain.PlanNotSolved {
		return buf.Bytes(), nil
	}
	fmt.Fprintf(buf, "Spending floor: %s/yr (today's dollars)\n", FormatMoney(result.SpendingFloor))
	fmt.Fprintf(buf, "End-of-plan assets: %s\n\n", FormatMoney(result.EndOfPlanAssets))

	fmt.Fprintf(buf, "%4s %3s", "year", "age")
	for _, c := range consoleColumns {
		fmt.Fprintf(buf, " %8s", c.header)
	}
	fmt.Fprintln(buf)

	totals := make([]float64, len(consoleColumns))
	for _, r := range result.Years {
		fmt.Fprintf(buf, "%4d %3d", r.Year, r.Age)
		for i, c := range consoleColumns {
			v := c.value(r)
			totals[i] += v
			fmt.Fprintf(buf, " %8s", FormatMoney(v))
		}
		fmt.Fprintln(buf)
	}

	if len(result.Years) > 0 {
		fmt.Fprintf(buf, "%8s", "total")
		for i := range consoleColumns {
			fmt.Fprintf(buf, " %8s", FormatMoney(totals[i]))
		}
		fmt.Fprintln(buf)

		taxes := make([]float64, len(result.Years))
		for i, r := range result.Years {
			taxes[i] = r.TotalTax + r.HealthPayment
		}
		fmt.Fprintf(buf, "\nLifetime taxes and healthcare: %s\n", FormatMoney(floats.Sum(taxes)))
	}
	return buf.Bytes(), nil
}

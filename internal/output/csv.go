package output

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/drawplan/drawplan/internal/domain"
)

// CSVFormatter exports one row per plan year, amounts in today's dollars with
// cents, for spreadsheet import.
type CSVFormatter struct{}

func (CSVFormatter) Name() string { return "csv" }

func (CSVFormatter) Format(result *domain.PlanResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{
		"Year", "Age",
		"BrokerageBalance", "BrokerageWithdraw", "SpendableCGD",
		"IRABalance", "IRAWithdraw", "RequiredRMD",
		"RothBalance", "RothWithdraw", "IRAtoRoth",
		"SocialSecurity", "OrdinaryIncome", "FederalAGI", "TotalCapGains",
		"FederalTax", "StateTax", "TotalTax",
		"HealthPayment", "HealthSubsidy",
		"Spending", "Excess",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range result.Years {
		row := []string{
			strconv.Itoa(r.Year),
			strconv.Itoa(r.Age),
			FormatMoneyCents(r.BrokerageBalance),
			FormatMoneyCents(r.BrokerageWithdraw),
			FormatMoneyCents(r.SpendableCGD),
			FormatMoneyCents(r.DeferredBalance),
			FormatMoneyCents(r.DeferredWithdraw),
			FormatMoneyCents(r.RequiredRMD),
			FormatMoneyCents(r.TaxFreeBalance),
			FormatMoneyCents(r.TaxFreeWithdraw),
			FormatMoneyCents(r.Conversion),
			FormatMoneyCents(r.SocialSecurity),
			FormatMoneyCents(r.OrdinaryIncome),
			FormatMoneyCents(r.FederalAGI),
			FormatMoneyCents(r.TotalCapGains),
			FormatMoneyCents(r.FederalTax),
			FormatMoneyCents(r.StateTax),
			FormatMoneyCents(r.TotalTax),
			FormatMoneyCents(r.HealthPayment),
			FormatMoneyCents(r.HealthSubsidy),
			FormatMoneyCents(r.Spending),
			FormatMoneyCents(r.Excess),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

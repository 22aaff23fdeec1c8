package output

import "github.com/shopspring/decimal"

// FormatMoney rounds a dollar amount to whole dollars for the console table.
// Kept here so it can be reused by multiple formatters and unit tested in
// isolation.
func FormatMoney(amount float64) string {
	return decimal.NewFromFloat(amount).Round(0).String()
}

// FormatMoneyCents renders a dollar amount with two decimals for CSV export.
func FormatMoneyCents(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}

package billing

import "github.com/shopspring/decimal"

// FormatMinor renders an amount in minor units as a major-unit string ("500.00").
func FormatMinor(minor int64) string {
	return decimal.New(minor, -2).StringFixed(2)
}

package utils

import "fmt"

// FormatMoney keeps consistent decimal formatting for currency fields.
func FormatMoney(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

// FormatINR renders an amount with the rupee symbol, e.g. "₹1250.00".
func FormatINR(amount float64) string {
	return "₹" + FormatMoney(amount)
}

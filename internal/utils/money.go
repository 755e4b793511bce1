package utils

import "fmt"

// FormatMoney keeps consistent decimal formatting for fare fields.
func FormatMoney(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

// FormatRupees renders a fare with the currency prefix used in chat replies.
func FormatRupees(amount float64) string {
	return "Rs. " + FormatMoney(amount)
}

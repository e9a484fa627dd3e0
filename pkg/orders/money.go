package orders

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// CurrencyDivisor converts the backend's minor currency unit into US dollars.
const CurrencyDivisor = 23000

// FormatMoney renders an order total in USD, e.g. "$1,086.96" or "-$5.00".
// Half cents round away from zero.
func FormatMoney(totalAmount int64) string {
	sign := ""
	if totalAmount < 0 {
		sign = "-"
		totalAmount = -totalAmount
	}

	cents := (totalAmount*100 + CurrencyDivisor/2) / CurrencyDivisor
	if cents == 0 {
		sign = ""
	}
	return fmt.Sprintf("%s$%s.%02d", sign, humanize.Comma(cents/100), cents%100)
}

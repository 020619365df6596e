package procurement

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Currency codes used on purchase orders and payments.
const (
	USD = "USD"
	PHP = "PHP"
)

var currencySymbols = map[string]string{
	USD: "$",
	PHP: "₱",
}

// FormatAmount renders v rounded to two decimals with thousands separators.
func FormatAmount(v decimal.Decimal) string {
	v = v.Round(2)
	neg := v.IsNegative()
	v = v.Abs()
	whole := v.Truncate(0)
	cents := v.Sub(whole).Shift(2).IntPart()
	out := printer.Sprintf("%d.%02d", whole.IntPart(), cents)
	if neg {
		return "-" + out
	}
	return out
}

// FormatCurrency prefixes FormatAmount with the currency symbol, or the code when unknown.
func FormatCurrency(v decimal.Decimal, currency string) string {
	code := strings.ToUpper(currency)
	symbol, ok := currencySymbols[code]
	amount := FormatAmount(v)
	neg := strings.HasPrefix(amount, "-")
	amount = strings.TrimPrefix(amount, "-")
	sign := ""
	if neg {
		sign = "-"
	}
	if !ok {
		return sign + code + " " + amount
	}
	return sign + symbol + amount
}

// FormatPercent renders p with two decimals and a percent sign; unset renders empty.
func FormatPercent(p Percent) string {
	if !p.IsSet() {
		return ""
	}
	return p.Decimal().StringFixed(2) + "%"
}

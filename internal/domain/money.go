package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an exact fixed-point currency amount. Arithmetic and equality
// are exact; conversion to float happens only at serialization boundaries.
type Money = decimal.Decimal

func init() {
	// Scorecard JSON carries monetary values as bare numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// MoneyFromString parses an amount such as "1234.56".
func MoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney parses an amount and panics on malformed input. Intended for
// constants and test fixtures.
func MustMoney(s string) Money {
	return decimal.RequireFromString(s)
}

// MoneyFromFloat converts a float using its shortest exact decimal form.
func MoneyFromFloat(f float64) Money {
	return decimal.NewFromFloat(f)
}

// MoneyFromInt converts a whole-dollar amount.
func MoneyFromInt(n int64) Money {
	return decimal.NewFromInt(n)
}

// FormatUSD renders an amount with comma-grouped thousands and two
// decimal places, e.g. 130000 -> "130,000.00".
func FormatUSD(m Money) string {
	s := m.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	dot := strings.IndexByte(s, '.')
	intPart, frac := s[:dot], s[dot:]
	if len(intPart) > 3 {
		var b strings.Builder
		pre := len(intPart) % 3
		if pre > 0 {
			b.WriteString(intPart[:pre])
		}
		for i := pre; i < len(intPart); i += 3 {
			if b.Len() > 0 {
				b.WriteByte(',')
			}
			b.WriteString(intPart[i : i+3])
		}
		intPart = b.String()
	}
	if neg {
		return "-" + intPart + frac
	}
	return intPart + frac
}

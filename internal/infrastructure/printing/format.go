package printing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RupeeSymbol prefixes every formatted amount
const RupeeSymbol = "₹"

// FormatINR formats an amount as rupees with Indian digit grouping and two
// decimals, e.g. 1234567.5 -> "₹12,34,567.50". Negative amounts get a
// leading minus: "-₹500.00".
func FormatINR(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	return sign + RupeeSymbol + GroupIndian(d.StringFixed(2))
}

// GroupIndian inserts separators into a plain decimal string the Indian way:
// the last three integer digits form one group and the rest go in pairs.
func GroupIndian(plain string) string {
	intPart, fracPart, hasFrac := strings.Cut(plain, ".")
	if len(intPart) > 3 {
		head := intPart[:len(intPart)-3]
		tail := intPart[len(intPart)-3:]

		var b strings.Builder
		lead := len(head) % 2
		if lead > 0 {
			b.WriteString(head[:lead])
		}
		for i := lead; i < len(head); i += 2 {
			if b.Len() > 0 {
				b.WriteByte(',')
			}
			b.WriteString(head[i : i+2])
		}
		b.WriteByte(',')
		b.WriteString(tail)
		intPart = b.String()
	}
	if hasFrac {
		return intPart + "." + fracPart
	}
	return intPart
}

// FormatRate renders a percentage rate without trailing zeros, e.g. 18 -> "18", 2.5 -> "2.5"
func FormatRate(rate decimal.Decimal) string {
	return rate.String()
}

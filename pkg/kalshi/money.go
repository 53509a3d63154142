package kalshi

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CentsToDollars converts integer cents to a decimal dollar amount.
func CentsToDollars(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100))
}

// FormatCents renders integer cents as a dollar string with thousands
// separators, e.g. 150000 -> "$1,500.00". Negative amounts render as
// "-$1,234.56".
func FormatCents(cents int64) string {
	d := CentsToDollars(cents)
	neg := d.IsNegative()
	fixed := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")
	out := "$" + groupThousands(intPart) + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}

func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	pre := n % 3
	if pre > 0 {
		b.WriteString(digits[:pre])
	}
	for i := pre; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// BalanceDollars is the cash balance in dollars.
func (b *Balance) BalanceDollars() decimal.Decimal {
	return CentsToDollars(b.Balance)
}

// PortfolioDollars is the open-position value in dollars.
func (b *Balance) PortfolioDollars() decimal.Decimal {
	return CentsToDollars(b.PortfolioValue)
}

package crypto

import (
	"fmt"
	"math"
	"strconv"

	"github.com/dustin/go-humanize"
)

// FormatPrice prints USD prices: cents with thousands separators from $1 up,
// four decimals down to a cent and eight below that.
func FormatPrice(price float64) string {
	switch {
	case price >= 1:
		return humanize.FormatFloat("#,###.##", price)
	case price >= 0.01:
		return strconv.FormatFloat(price, 'f', 4, 64)
	default:
		return strconv.FormatFloat(price, 'f', 8, 64)
	}
}

func FormatMarketCap(mcap float64) string {
	switch {
	case mcap >= 1e12:
		return fmt.Sprintf("$%.2fT", mcap/1e12)
	case mcap >= 1e9:
		return fmt.Sprintf("$%.2fB", mcap/1e9)
	case mcap >= 1e6:
		return fmt.Sprintf("$%.2fM", mcap/1e6)
	default:
		return "$" + humanize.Commaf(math.Round(mcap*1000)/1000)
	}
}

// FormatChange renders a percentage with an explicit sign.
func FormatChange(pct float64, decimals int) string {
	s := strconv.FormatFloat(pct, 'f', decimals, 64)
	if pct >= 0 {
		s = "+" + s
	}
	return s + "%"
}

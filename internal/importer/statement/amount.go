package statement

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// parseAmount parses an amount cell into cents.
// European examples: "1.234,56" -> 123456, "-588,74" -> -58874.
// US examples: "1,234.56" -> 123456, "$-47.91" -> -4791, "(12.50)" -> -1250.
func parseAmount(s string, format numberFormat) (int64, error) {
	clean := strings.TrimSpace(s)

	negative := strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")")
	if negative {
		clean = strings.TrimSuffix(strings.TrimPrefix(clean, "("), ")")
	}

	clean = strings.ReplaceAll(clean, "$", "")
	clean = strings.ReplaceAll(clean, "€", "")
	clean = strings.TrimSpace(clean)

	switch format {
	case numberEuropean:
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	case numberUS:
		clean = strings.ReplaceAll(clean, ",", "")
	default:
		return 0, fmt.Errorf("unknown number format %d", format)
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, err
	}

	if negative {
		d = d.Neg()
	}

	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart(), nil
}

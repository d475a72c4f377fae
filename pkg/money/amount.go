package money

import (
	"fmt"
	"strconv"
	"strings"
)

// SatoshiDecimals is the decimal precision of the native unit.
const SatoshiDecimals = 8

func pow10(n int) int64 {
	result := int64(1)
	for i := 0; i < n; i++ {
		result *= 10
	}
	return result
}

// FormatAmount converts satoshis to a human-readable decimal string in a unit
// with the given number of decimals. E.g. 150000000 with 8 decimals → "1.5",
// -50000 → "-0.0005". Satoshi values are signed; the sign carries through.
func FormatAmount(sats int64, decimals int) string {
	if decimals <= 0 {
		return fmt.Sprintf("%d", sats)
	}

	negative := sats < 0
	if negative {
		sats = -sats
	}

	unit := pow10(decimals)
	whole := sats / unit
	frac := sats % unit

	str := fmt.Sprintf("%d", whole)
	if frac != 0 {
		fracStr := fmt.Sprintf("%0*d", decimals, frac)
		fracStr = strings.TrimRight(fracStr, "0")
		str = str + "." + fracStr
	}

	if negative {
		str = "-" + str
	}
	return str
}

// ParseAmount converts a human-readable decimal string to satoshis for a unit
// with the given number of decimals. Uses string manipulation to avoid
// floating point precision issues: "0.0005" with 8 decimals → 50000.
func ParseAmount(amountStr string, decimals int) (int64, error) {
	if amountStr == "" {
		return 0, fmt.Errorf("amount is required")
	}

	negative := strings.HasPrefix(amountStr, "-")
	amountStr = strings.TrimPrefix(amountStr, "-")

	parts := strings.Split(amountStr, ".")
	if len(parts) > 2 {
		return 0, fmt.Errorf("invalid amount format")
	}

	intPart := parts[0]
	if intPart == "" {
		intPart = "0"
	}

	decPart := ""
	if len(parts) > 1 {
		decPart = parts[1]
	}

	// Pad or truncate decimal part to match decimals
	if len(decPart) < decimals {
		decPart = decPart + strings.Repeat("0", decimals-len(decPart))
	} else if len(decPart) > decimals {
		decPart = decPart[:decimals]
	}

	combined := strings.TrimLeft(intPart+decPart, "0")
	if combined == "" {
		combined = "0"
	}

	result, err := strconv.ParseInt(combined, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount format")
	}

	if negative {
		result = -result
	}
	return result, nil
}

package utils

import (
	"fmt"
	"strings"
)

// FormatCurrency formats an amount with thousands separators, e.g. 12,345.67.
func FormatCurrency(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	str := fmt.Sprintf("%.2f", amount)
	parts := strings.Split(str, ".")
	intPart := parts[0]
	decPart := parts[1]

	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)

	result := strings.Join(groups, ",") + "." + decPart
	if negative {
		result = "-" + result
	}
	return result
}

// FormatPercent formats a percentage with sign and two decimals.
func FormatPercent(pct float64) string {
	if pct > 0 {
		return fmt.Sprintf("+%.2f%%", pct)
	}
	return fmt.Sprintf("%.2f%%", pct)
}

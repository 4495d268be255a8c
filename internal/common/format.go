package common

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	DefaultWidth = 80
	WideWidth    = 100
)

// ANSI colors for console reports
const (
	ColorReset = "\033[0m"
	ColorRed   = "\033[31m"
	ColorGreen = "\033[32m"
	ColorGray  = "\033[90m"
)

func PrintSeparator(char string, width int) {
	fmt.Println(strings.Repeat(char, width))
}

// PrintHeader prints a title framed by "=" lines
func PrintHeader(title string, width int) {
	fmt.Println("\n" + strings.Repeat("=", width))
	fmt.Println(title)
	PrintSeparator("=", width)
}

func PrintFooter(message string, width int) {
	fmt.Println("\n" + strings.Repeat("=", width))
	fmt.Println(message)
	fmt.Println(strings.Repeat("=", width) + "\n")
}

// PrintRow prints a label padded to a fixed column followed by its value
func PrintRow(prefix, label, value string) {
	fmt.Printf("%s%-28s %s\n", prefix, label+":", value)
}

// BoxPrefix returns the tree prefix for a list item
func BoxPrefix(isLast bool) string {
	if isLast {
		return "└─ "
	}
	return "├─ "
}

// FormatTokens renders an amount with two decimals
func FormatTokens(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// FormatSignedTokens renders a ledger delta with an explicit sign
func FormatSignedTokens(amount decimal.Decimal) string {
	if amount.IsPositive() {
		return "+" + amount.StringFixed(2)
	}
	return amount.StringFixed(2)
}

// ShortId truncates an identifier for console tables
func ShortId(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

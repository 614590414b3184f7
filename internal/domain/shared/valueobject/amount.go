package valueobject

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DisplayLocale is the locale used for grouping digits in amounts shown to users
var DisplayLocale = language.Korean

// ToInteger keeps only the ASCII digits of raw, leading zeros included.
// It returns "" when raw holds no digits.
func ToInteger(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatForDisplay renders an amount string with locale digit grouping.
// Non-digit characters are ignored, so already formatted input is accepted.
func FormatForDisplay(value string) string {
	digits := ToInteger(value)
	if digits == "" {
		return ""
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || (len(digits) > 1 && digits[0] == '0') {
		// leading zeros and values beyond int64 are grouped as text
		return groupDigits(digits)
	}
	return message.NewPrinter(DisplayLocale).Sprintf("%d", n)
}

func groupDigits(digits string) string {
	var b strings.Builder
	b.Grow(len(digits) + len(digits)/3)
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FormatAmount renders an integer amount with locale digit grouping.
// Zero renders as an empty string so untouched inputs stay blank.
func FormatAmount(n int64) string {
	if n == 0 {
		return ""
	}
	return message.NewPrinter(DisplayLocale).Sprintf("%d", n)
}

// IsInteger reports whether s is a non-empty string of ASCII digits
func IsInteger(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ParseAmount parses an integer amount string, tolerating grouping separators.
// Empty input parses as zero.
func ParseAmount(s string) (int64, error) {
	digits := ToInteger(s)
	if digits == "" {
		return 0, nil
	}
	return strconv.ParseInt(digits, 10, 64)
}

// ParseDecimal parses a decimal input such as a margin percentage.
// Empty input parses as zero.
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

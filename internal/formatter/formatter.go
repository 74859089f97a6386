package formatter

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// SQLDateLayout is the layout report dates are stored with.
const SQLDateLayout = "2006-01-02"

// minusSign is the typographic minus used for negative numbers.
const minusSign = "\u2212"

// FormatNumber formats a value with at most five decimals, dropping trailing
// zeros. Negative numbers get a real minus sign and positive numbers a plus
// sign when withPlusSign is set. Zero is always "0".
func FormatNumber(value float64, withPlusSign bool) string {
	digits := strconv.FormatFloat(math.Abs(value), 'f', 5, 64)
	digits = strings.TrimRight(digits, "0")
	digits = strings.TrimSuffix(digits, ".")

	switch {
	case digits == "0" || digits == "":
		return "0"
	case value < 0:
		return minusSign + digits
	case withPlusSign:
		return "+" + digits
	default:
		return digits
	}
}

// FormatPercent formats a percentage value followed by "%"
func FormatPercent(value float64) string {
	return FormatNumber(value, false) + "%"
}

// FormatDate formats a calendar day relative to today: "Today", "Jan 2" for
// dates in the current year and "Jan 2, 2006" otherwise.
func FormatDate(day, today time.Time) string {
	y, m, d := day.Date()
	ty, tm, td := today.Date()

	if y == ty && m == tm && d == td {
		return "Today"
	}
	if y == ty {
		return day.Format("Jan 2")
	}
	return day.Format("Jan 2, 2006")
}

// FormatSQLDate formats a stored "2006-01-02" date. Values that do not parse
// are returned unchanged.
func FormatSQLDate(value string, today time.Time) string {
	day, err := time.Parse(SQLDateLayout, value)
	if err != nil {
		return value
	}
	return FormatDate(day, today)
}

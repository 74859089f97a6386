package formatter

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// TaskLine is a task row as shown by the list commands
type TaskLine struct {
	ID          int64
	Title       string
	StartValue  float64
	TargetValue *float64
	LastValue   float64
	LastDate    string
}

// FormatTaskLine renders one task with its latest value and, when the task
// has a target, the progress toward it.
func FormatTaskLine(task TaskLine, today time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "#%d %s: %s", task.ID, task.Title, FormatNumber(task.LastValue, false))

	if task.TargetValue != nil {
		fmt.Fprintf(&b, " of %s", FormatNumber(*task.TargetValue, false))
		if *task.TargetValue != task.StartValue {
			progress := 100 * (task.LastValue - task.StartValue) / (*task.TargetValue - task.StartValue)
			fmt.Fprintf(&b, " (%s)", FormatPercent(roundTenth(progress)))
		}
	}

	if task.LastDate != "" {
		fmt.Fprintf(&b, ", updated %s", FormatSQLDate(task.LastDate, today))
	}

	return b.String()
}

// FormatReportLine renders a report row. Relative reports show their delta
// with an explicit sign.
func FormatReportLine(id int64, date string, value float64, relative bool, today time.Time) string {
	text := FormatNumber(value, relative)
	if relative {
		text += " (relative)"
	}
	return fmt.Sprintf("#%d %s: %s", id, FormatSQLDate(date, today), text)
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

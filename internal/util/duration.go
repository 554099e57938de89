package util

import (
	"fmt"
	"strings"
	"time"
)

// HumanizeDuration renders a remaining wait as a short English phrase
// for lock reasons, e.g. "1 day 3 hours" or "45 minutes". Durations
// under a minute collapse to "less than a minute".
func HumanizeDuration(d time.Duration) string {
	if d < time.Minute {
		return "less than a minute"
	}

	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	parts := make([]string, 0, 3)
	if days > 0 {
		parts = append(parts, plural(days, "day"))
	}
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	// Minutes only matter when the wait is short enough to watch.
	if days == 0 && minutes > 0 {
		parts = append(parts, plural(minutes, "minute"))
	}

	return strings.Join(parts, " ")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

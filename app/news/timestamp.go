package news

import (
	"fmt"
	"time"
)

// FormatTimestamp renders ts relative to now: minutes, hours or days ago,
// or the local calendar date once a week has passed.
func FormatTimestamp(now time.Time, ts *time.Time) string {
	if ts == nil {
		return "Just now"
	}

	elapsed := now.Sub(*ts)
	if elapsed < 0 {
		elapsed = 0
	}

	if minutes := int(elapsed / time.Minute); minutes < 60 {
		return ago(minutes, "minute")
	}
	if hours := int(elapsed / time.Hour); hours < 24 {
		return ago(hours, "hour")
	}
	if days := int(elapsed / (24 * time.Hour)); days < 7 {
		return ago(days, "day")
	}

	return ts.In(time.Local).Format("1/2/2006")
}

func ago(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

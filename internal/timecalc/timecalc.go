package timecalc

import (
	"fmt"
	"strings"
	"time"
)

// DayLayout is the wire and CSV format for entry dates.
const DayLayout = "2006-01-02"

// Day truncates t to midnight UTC of its calendar day. Entry dates are stored
// at day granularity in this form.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD date.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want %s", s, DayLayout)
	}
	return t, nil
}

// ParseOptionalDay returns nil for an empty string.
func ParseOptionalDay(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := ParseDay(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// WeekRange returns the first and last day of the week containing t, with
// weeks starting on firstDay.
func WeekRange(t time.Time, firstDay time.Weekday) (time.Time, time.Time) {
	day := Day(t)
	offset := (int(day.Weekday()) - int(firstDay) + 7) % 7
	start := day.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 6)
}

// ValidPartition reports whether partition splits an hour evenly.
func ValidPartition(partition uint8) bool {
	return partition > 0 && partition <= 60 && 60%partition == 0
}

// AlignedMinutes reports whether minutes is below an hour and a multiple of
// the partition.
func AlignedMinutes(minutes, partition uint8) bool {
	if !ValidPartition(partition) {
		return false
	}
	return minutes < 60 && minutes%partition == 0
}

// FormatDuration formats hours and minutes as "1h 40m" or "45m".
func FormatDuration(hours, minutes int) string {
	hours += minutes / 60
	minutes %= 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// ParseWeekday accepts an English weekday name in any case.
func ParseWeekday(s string) (time.Weekday, bool) {
	s = strings.TrimSpace(s)
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), s) {
			return d, true
		}
	}
	return 0, false
}

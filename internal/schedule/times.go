package schedule

import (
	"fmt"
	"regexp"
)

var (
	timeRe   = regexp.MustCompile(`^([0-1]?\d|2[0-3]):([0-5]\d)$`)
	windowRe = regexp.MustCompile(`(\d{1,2}:\d{2})-(\d{1,2}:\d{2})`)
)

// MinuteOfDay parses an HH:MM string (hour 0-23, minute 0-59). The second
// return is false for anything that does not validate.
func MinuteOfDay(t string) (int, bool) {
	m := timeRe.FindStringSubmatch(t)
	if m == nil {
		return 0, false
	}
	var h, min int
	if _, err := fmt.Sscanf(m[1], "%d", &h); err != nil {
		return 0, false
	}
	if _, err := fmt.Sscanf(m[2], "%d", &min); err != nil {
		return 0, false
	}
	return h*60 + min, true
}

// NormalizeTime validates an HH:MM string and returns it zero-padded, so
// user-typed "7:05" matches the index's "07:05".
func NormalizeTime(t string) (string, bool) {
	mod, ok := MinuteOfDay(t)
	if !ok {
		return "", false
	}
	return formatMinute(mod), true
}

func formatMinute(mod int) string {
	return fmt.Sprintf("%02d:%02d", mod/60, mod%60)
}

// ExpandWindow turns an "HH:MM-HH:MM" time window into discrete departure
// times stepped by interval minutes, inclusive of both ends. Malformed
// windows yield nil; they are skipped, not reported.
func ExpandWindow(slot string, intervalMinutes int) []string {
	if intervalMinutes <= 0 {
		intervalMinutes = DefaultIntervalMinutes
	}
	m := windowRe.FindStringSubmatch(slot)
	if m == nil {
		return nil
	}
	start, ok := MinuteOfDay(m[1])
	if !ok {
		return nil
	}
	end, ok := MinuteOfDay(m[2])
	if !ok {
		return nil
	}

	var times []string
	for cur := start; cur <= end; cur += intervalMinutes {
		times = append(times, formatMinute(cur))
	}
	return times
}

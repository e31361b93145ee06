// Package timefmt converts between the HH:MM:SS duration strings used by
// Five9 CSV exports and whole seconds, and formats derived values for
// display.
package timefmt

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseDuration converts an elapsed-time string in HH:MM:SS format to whole
// seconds. Hours may exceed 23. Empty, missing, or malformed values parse
// to 0: absent telemetry means no time was recorded in that category, so
// this function never fails.
func ParseDuration(s string) int {
	secs, _ := ParseDurationStrict(s)
	return secs
}

// ParseDurationStrict is ParseDuration with a second return reporting
// whether the input was a well-formed HH:MM:SS string. Callers that track
// how many values were absorbed as zero use this variant.
func ParseDurationStrict(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, false
	}

	h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, false
	}
	m, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, false
	}
	sec, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		return 0, false
	}

	total := h*3600 + m*60 + sec
	if total < 0 {
		return 0, false
	}
	return total, true
}

// FormatDuration renders seconds as "HH:MM", truncated to the minute and
// zero-padded to at least two digits each. Hours are unbounded. Negative
// input renders as the zero duration. The truncation is deliberate: the
// display companion to ParseDuration drops sub-minute precision, so
// parse/format does not round-trip.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	return fmt.Sprintf("%02d:%02d", hours, minutes)
}

// FormatPercent renders a percentage to one decimal place with a trailing
// percent sign. NaN and infinities render as "0.0%". No clamping happens
// here; ratios are clipped during derivation.
func FormatPercent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	return fmt.Sprintf("%.1f%%", v)
}

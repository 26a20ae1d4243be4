package moderation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultMuteDuration applies when the argument is missing or malformed.
const DefaultMuteDuration = time.Hour

var muteDurationRe = regexp.MustCompile(`(?i)^(\d+)([mhd])?$`)

// ParseMuteDuration reads "30m", "2h", "1d" or a bare number of hours. Zero and
// anything unparsable fall back to DefaultMuteDuration.
func ParseMuteDuration(s string) time.Duration {
	match := muteDurationRe.FindStringSubmatch(strings.TrimSpace(s))
	if match == nil {
		return DefaultMuteDuration
	}
	n, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil || n <= 0 {
		return DefaultMuteDuration
	}

	unit := time.Hour
	switch strings.ToLower(match[2]) {
	case "m":
		unit = time.Minute
	case "d":
		unit = 24 * time.Hour
	}
	if n > int64(366*24*time.Hour/unit) {
		return DefaultMuteDuration
	}
	return time.Duration(n) * unit
}

// FormatMuteDuration renders d in its largest whole unit, rounding down.
func FormatMuteDuration(d time.Duration) string {
	seconds := int64(d / time.Second)
	switch {
	case seconds >= 86400:
		return fmt.Sprintf("%dd", seconds/86400)
	case seconds >= 3600:
		return fmt.Sprintf("%dh", seconds/3600)
	default:
		return fmt.Sprintf("%dm", seconds/60)
	}
}

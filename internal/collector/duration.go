package collector

import (
	"math"
	"regexp"
	"strconv"
)

// durationPattern matches the hour/minute/second subset of ISO 8601 at the
// start of the string.
var durationPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)

// ParseDuration converts a contentDetails.duration value such as "PT1M12S"
// into seconds. ok is false when the value is empty, does not start with the
// PT designator, or the total does not fit in an int. "PT" alone is 0 seconds.
func ParseDuration(duration string) (seconds int, ok bool) {
	m := durationPattern.FindStringSubmatch(duration)
	if m == nil {
		return 0, false
	}

	units := [...]int{3600, 60, 1}
	for i, unit := range units {
		field := m[i+1]
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil || n > (math.MaxInt-seconds)/unit {
			return 0, false
		}
		seconds += n * unit
	}
	return seconds, true
}

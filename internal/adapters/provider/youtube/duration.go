package youtube

import (
	"regexp"
	"strconv"
)

// durationPattern matches ISO-8601-like durations as reported by the
// provider, e.g. "PT1H2M3S". Each component is optional.
var durationPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// ParseDurationMinutes converts a provider duration string to minutes:
// hours*60 + minutes + seconds/60. Missing components count as zero and
// a wholly unparsable string yields zero minutes rather than an error;
// under-reporting watch time is preferred over failing a refresh.
func ParseDurationMinutes(s string) float64 {
	m := durationPattern.FindStringSubmatch(s)
	if m == nil {
		return 0
	}

	hours := atoiOrZero(m[1])
	minutes := atoiOrZero(m[2])
	seconds := atoiOrZero(m[3])

	return float64(hours)*60 + float64(minutes) + float64(seconds)/60
}

func atoiOrZero(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

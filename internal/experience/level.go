// Package experience maps free-text experience ("3 years", "0.5 yrs") onto
// the level scales the job board actors accept.
package experience

import (
	"regexp"
	"strconv"
)

var numberRegex = regexp.MustCompile(`(\d+(\.\d+)?)`)

// Indeed experience buckets.
const (
	EntryLevel  = "entryLevel"
	MidLevel    = "midLevel"
	SeniorLevel = "seniorLevel"
)

// Years returns the first number found in s and whether one was found.
func Years(s string) (float64, bool) {
	m := numberRegex.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// LinkedInLevel maps s onto LinkedIn's "1".."5" scale. The year count is
// truncated and clamped; "1" when s has no number.
func LinkedInLevel(s string) string {
	years, ok := Years(s)
	if !ok {
		return "1"
	}
	// Clamp before converting; int() of a float past the int range is undefined.
	switch {
	case years >= 5:
		return "5"
	case years < 1:
		return "1"
	}
	return strconv.Itoa(int(years))
}

// IndeedLevel maps s onto Indeed's three buckets:
// up to 2 years entry, up to 6 mid, above that senior.
func IndeedLevel(s string) string {
	years, ok := Years(s)
	if !ok {
		return EntryLevel
	}
	switch {
	case years <= 2:
		return EntryLevel
	case years <= 6:
		return MidLevel
	default:
		return SeniorLevel
	}
}

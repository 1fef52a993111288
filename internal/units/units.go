// Package units parses the unit-suffixed numeric strings found in dive-log
// exports ("22.893 m", "210.14 bar", "66:40 min", "28/10"). Every function
// degrades to zero on malformed input instead of returning an error: a
// single unreadable attribute must never abort the surrounding record.
package units

import (
	"strconv"
	"strings"
)

// ParseFloatWithUnit strips the expected unit suffix (with or without a
// separating space) and parses the remainder as a float. Returns 0 on any
// parse failure.
func ParseFloatWithUnit(s, unit string) float64 {
	s = strings.TrimSpace(s)
	if unit != "" {
		s = strings.TrimSuffix(s, unit)
		s = strings.TrimSpace(s)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// ParsePercent parses a percent-suffixed value ("32.0%").
func ParsePercent(s string) float64 {
	return ParseFloatWithUnit(s, "%")
}

// ParseDurationSeconds parses a dive-duration string into seconds. "MM:SS"
// with an optional " min" suffix is minutes and seconds ("66:40 min" is
// 4000); a bare integer is whole minutes ("90" is 5400). Malformed input
// parses to 0.
func ParseDurationSeconds(s string) int {
	s = trimMinSuffix(s)
	if strings.Contains(s, ":") {
		return parseColonTime(s)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n * 60
}

// ParseTimeSeconds parses a within-dive timestamp into seconds. Unlike
// ParseDurationSeconds, a bare integer is already seconds: sample and event
// time attributes are written either as "MM:SS min" or as raw seconds.
func ParseTimeSeconds(s string) int {
	s = trimMinSuffix(s)
	if strings.Contains(s, ":") {
		return parseColonTime(s)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// ParseRational reduces a "num/denom" string to a float. Division by zero
// and malformed parts are unparseable and yield 0.
func ParseRational(s string) float64 {
	parts := strings.SplitN(strings.TrimSpace(s), "/", 2)
	if len(parts) != 2 {
		return 0
	}
	num, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0
	}
	denom, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil || denom == 0 {
		return 0
	}
	return num / denom
}

func trimMinSuffix(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "min")
	return strings.TrimSpace(s)
}

func parseColonTime(s string) int {
	parts := strings.SplitN(s, ":", 2)
	mins, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0
	}
	secs, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0
	}
	return mins*60 + secs
}

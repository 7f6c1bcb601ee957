package style

import (
	"math"
	"strconv"
	"strings"
)

// Num formats a number for style output with at most three decimals and no
// trailing zeros. Negative zero prints as "0".
func Num(v float64) string {
	r := math.Round(v*1000) / 1000
	if r == 0 {
		return "0"
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// ParseLength splits a CSS length such as "12px", "50%", or "auto" into a
// value and a lower-case unit. "auto" parses as (0, "auto").
func ParseLength(s string) (float64, string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, "", false
	}
	if strings.EqualFold(s, "auto") {
		return 0, "auto", true
	}
	i := len(s)
	for i > 0 {
		c := s[i-1]
		if (c >= '0' && c <= '9') || c == '.' {
			break
		}
		i--
	}
	v, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		return 0, "", false
	}
	return v, strings.ToLower(s[i:]), true
}

// normUnit lower-cases a configured unit, falling back to def.
func normUnit(u, def string) string {
	if u == "" {
		return def
	}
	return strings.ToLower(u)
}

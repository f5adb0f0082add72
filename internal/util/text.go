package util

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var reSpaces = regexp.MustCompile(`\s+`)

// NormalizeCode trims, upper-cases and collapses inner whitespace of a material code.
func NormalizeCode(input string) string {
	s := strings.ToUpper(strings.TrimSpace(input))
	s = reSpaces.ReplaceAllString(s, " ")
	return s
}

// CodeKey canonicalizes a product code for joins: numeric codes compare by value
// ("0042", "42" and "42.0" are the same key), anything else by trimmed text.
func CodeKey(input string) string {
	s := strings.TrimSpace(input)
	if s == "" {
		return ""
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return s
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// HasPrefix is strings.HasPrefix over a nullable value; null never matches.
func HasPrefix(v *string, prefix string) bool {
	return v != nil && strings.HasPrefix(*v, prefix)
}

// Equals compares a nullable value; null never matches.
func Equals(v *string, want string) bool {
	return v != nil && *v == want
}

// In reports whether a nullable value is one of the given values; null never matches.
func In(v *string, set []string) bool {
	if v == nil {
		return false
	}
	for _, s := range set {
		if *v == s {
			return true
		}
	}
	return false
}

func StringPtr(v string) *string { return &v }

func FloatPtr(v float64) *float64 { return &v }

func Deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

package util

import (
	"fmt"
	"strconv"
	"strings"
)

type NumericKind int

const (
	Float NumericKind = iota
	Int
)

// ParseQty strips the literal '.' thousand separators the ERP writes and parses
// the remainder as kind. Int rejects anything with a fractional part.
func ParseQty(text string, kind NumericKind) (float64, error) {
	compact := strings.TrimSpace(strings.ReplaceAll(text, ".", ""))
	if compact == "" {
		return 0, fmt.Errorf("empty number")
	}
	switch kind {
	case Int:
		n, err := strconv.ParseInt(compact, 10, 64)
		if err != nil {
			return 0, err
		}
		return float64(n), nil
	default:
		return strconv.ParseFloat(compact, 64)
	}
}

package proposal

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is a form value that should be numeric but may arrive as text.
// Anything that does not start with a number decodes to zero.
type Number float64

// Float returns the value as float64.
func (n Number) Float() float64 { return float64(n) }

// UnmarshalJSON accepts JSON numbers, numeric strings and anything else
// (which becomes zero). It never fails.
func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number(ParseNumber(jsonScalar(data)))
	return nil
}

// Integer is the whole-number counterpart of Number.
type Integer int

// Int returns the value as int.
func (i Integer) Int() int { return int(i) }

// UnmarshalJSON behaves like Number.UnmarshalJSON and truncates fractions.
func (i *Integer) UnmarshalJSON(data []byte) error {
	*i = Integer(ParseInt(jsonScalar(data)))
	return nil
}

// ParseNumber reads the leading decimal number in s. "12.5 sqft" is 12.5,
// "abc", "" and non-finite values are 0.
func ParseNumber(s string) float64 {
	prefix := strings.TrimSuffix(numericPrefix(strings.TrimSpace(s), true), ".")
	if prefix == "" {
		return 0
	}
	v, err := strconv.ParseFloat(prefix, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// ParseInt reads the leading integer in s; "12.9" is 12, junk is 0.
func ParseInt(s string) int {
	prefix := numericPrefix(strings.TrimSpace(s), false)
	if prefix == "" {
		return 0
	}
	v, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil || v > math.MaxInt32 || v < math.MinInt32 {
		return 0
	}
	return int(v)
}

// numericPrefix returns the longest prefix of s that forms a number, or ""
// when s has no leading digits.
func numericPrefix(s string, fractional bool) string {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if fractional && i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			frac++
		}
		if digits+frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return ""
	}
	if fractional && i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		exp := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			exp++
		}
		if exp > 0 {
			i = j
		}
	}
	return s[:i]
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// jsonScalar turns a raw JSON value into the text to parse: strings are
// unquoted, numbers kept, everything else dropped.
func jsonScalar(data []byte) string {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ""
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return ""
		}
		return s
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return string(data)
	default:
		return ""
	}
}

package eph

import (
	"math"
	"strconv"
	"strings"
)

// *********** Conversions ***********

// ParseFloat converts survey text to a float. Blank or non-numeric text is not an error: ok is false and
// the caller records the value as missing. With decimalComma, "12,5" reads as 12.5.
func ParseFloat(s string, decimalComma bool) (val float64, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if decimalComma && strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}

	f, e := strconv.ParseFloat(s, 64)
	if e != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}

	return f, true
}

// ParseInt converts survey text holding a code to an int. "27" and "27.0" both read as 27; "2.5" does not convert.
func ParseInt(s string, decimalComma bool) (val int, ok bool) {
	s = strings.TrimSpace(s)
	if i, e := strconv.Atoi(s); e == nil {
		return i, true
	}

	var f float64
	if f, ok = ParseFloat(s, decimalComma); !ok || f != math.Trunc(f) {
		return 0, false
	}

	return int(f), true
}

// *********** Other ***********

func has[C comparable](needle C, haystack []C) bool {
	return position(needle, haystack) >= 0
}

func position[C comparable](needle C, haystack []C) int {
	for ind, straw := range haystack {
		if needle == straw {
			return ind
		}
	}

	return -1
}

func validName(name string) bool {
	const illegal = "!@#$%^&*()=+-;:'`/.,>< ~ " + `"`

	return name != "" && !strings.ContainsAny(name, illegal)
}

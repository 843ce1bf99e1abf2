package geo

import (
	"strconv"
)

// angleFromDigits converts the unsigned digits of a coordinate token into
// decimal degrees. The layout is chosen by the length of the integer part:
//
//	<= 3 digits  D.ddd        plain degrees
//	4-5 digits   DDMM.mmm     fraction belongs to minutes
//	> 5 digits   DDDMMSS.sss  fraction belongs to seconds
func angleFromDigits(whole, fraction string) (float64, bool) {
	frac := 0.0
	if fraction != "" {
		f, err := strconv.ParseFloat("0."+fraction, 64)
		if err != nil {
			return 0, false
		}
		frac = f
	}

	n := len(whole)
	switch {
	case n <= 3:
		deg, ok := digits(whole)
		return deg + frac, ok

	case n <= 5:
		deg, ok1 := digits(whole[:n-2])
		minutes, ok2 := digits(whole[n-2:])
		return deg + (minutes+frac)/60, ok1 && ok2

	default:
		deg, ok1 := digits(whole[:n-4])
		minutes, ok2 := digits(whole[n-4 : n-2])
		sec, ok3 := digits(whole[n-2:])
		return deg + minutes/60 + (sec+frac)/3600, ok1 && ok2 && ok3
	}
}

// digits parses an all-digit string; float parsing keeps arbitrarily long
// degree fields from overflowing.
func digits(s string) (float64, bool) {
	if s == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

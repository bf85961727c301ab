package billing

import (
	"math"
	"strconv"
	"strings"
)

const separator = "-------------------------------------"

// Render produces the archived text of a bill:
//
//	Bill No: 1700000000000
//	-------------------------------------
//	Widget  Qty:3  Price:7.5
//	-------------------------------------
//	Total: 7.5
func Render(b Bill) string {
	var sb strings.Builder

	sb.WriteString("Bill No: ")
	sb.WriteString(strconv.FormatInt(b.Number, 10))
	sb.WriteByte('\n')
	sb.WriteString(separator)
	sb.WriteByte('\n')

	for _, l := range b.Lines {
		sb.WriteString(l.Name)
		sb.WriteString("  Qty:")
		sb.WriteString(strconv.Itoa(l.Qty))
		sb.WriteString("  Price:")
		sb.WriteString(FormatAmount(l.Total))
		sb.WriteByte('\n')
	}

	sb.WriteString(separator)
	sb.WriteByte('\n')
	sb.WriteString("Total: ")
	sb.WriteString(FormatAmount(b.Total))
	sb.WriteByte('\n')

	return sb.String()
}

// FormatAmount writes a float the way bills always have: shortest digits
// that round-trip, never without a fractional part ("15.0"), and in
// scientific form ("1.0E7", "5.0E-4") outside [1e-3, 1e7).
func FormatAmount(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		if math.Signbit(v) {
			return "-0.0"
		}
		return "0.0"
	}

	if abs := math.Abs(v); abs >= 1e-3 && abs < 1e7 {
		s := strconv.FormatFloat(v, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	}

	s := strconv.FormatFloat(v, 'E', -1, 64)
	mant, exp, _ := strings.Cut(s, "E")
	if !strings.Contains(mant, ".") {
		mant += ".0"
	}
	n, _ := strconv.Atoi(exp)
	return mant + "E" + strconv.Itoa(n)
}

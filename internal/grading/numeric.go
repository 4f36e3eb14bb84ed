package grading

import (
	"math"
	"strconv"
	"strings"
)

// numericTolerance accepts fill answers that parse as numbers close enough to
// the expected one. A negative bound is disabled.
//
//	abs=0.01   |got-want| <= 0.01
//	rel=0.05   |got-want| <= 5% of |want|
type numericTolerance struct {
	abs, rel float64
}

func (t numericTolerance) enabled() bool { return t.abs >= 0 || t.rel >= 0 }

func (t numericTolerance) accepts(want, got string) bool {
	if !t.enabled() {
		return false
	}
	tv, tOK := parseFloatLoose(want)
	rv, rOK := parseFloatLoose(got)
	if !rOK || !tOK {
		return false
	}
	diff := math.Abs(rv - tv)
	if t.abs >= 0 && diff <= t.abs {
		return true
	}
	return t.rel >= 0 && diff <= t.rel*math.Abs(tv)
}

// parseFloatLoose reads a number, ignoring a trailing unit ("9.8 m/s").
func parseFloatLoose(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, true
	}
	if sp := strings.Fields(s); len(sp) > 0 {
		if v, err := strconv.ParseFloat(sp[0], 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

// ParseTolerance reads "tol=0.01" / "reltol=0.05" pairs, comma separated.
// Missing bounds come back as -1.
func ParseTolerance(s string) (absTol, relTol float64) {
	absTol, relTol = -1, -1
	for _, k := range strings.Split(s, ",") {
		k = strings.TrimSpace(strings.ToLower(k))
		if strings.HasPrefix(k, "tol=") {
			if v, err := strconv.ParseFloat(strings.TrimPrefix(k, "tol="), 64); err == nil {
				absTol = v
			}
		}
		if strings.HasPrefix(k, "reltol=") {
			if v, err := strconv.ParseFloat(strings.TrimPrefix(k, "reltol="), 64); err == nil {
				relTol = v
			}
		}
	}
	return
}

package normalizer

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jakechorley/shift-roster/pkg/core/model"
)

// parseInteger accepts integers and integral decimals such as "2.0"
func parseInteger(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	if f < math.MinInt || f >= math.MaxInt {
		return 0, fmt.Errorf("%q is out of range", s)
	}
	return int(f), nil
}

// parseCount parses a non-negative headcount
func parseCount(s string) (int, error) {
	n, err := parseInteger(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("headcount must not be negative, got %d", n)
	}
	return n, nil
}

// parseShiftRequest parses a preference cell. Empty, NaN and "-" mean no request.
func parseShiftRequest(s string) (model.ShiftType, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" || strings.EqualFold(s, "nan") {
		return 0, false, nil
	}
	n, err := parseInteger(s)
	if err != nil {
		return 0, false, fmt.Errorf("shift request %q must be one of 0, 1, 2", s)
	}
	st := model.ShiftType(n)
	if !st.IsValid() {
		return 0, false, fmt.Errorf("shift request %d must be one of 0, 1, 2", n)
	}
	return st, true, nil
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return s, false
	}
	return s[len(prefix):], true
}

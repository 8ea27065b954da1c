package handlers

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// looseValue accepts a JSON string, number or null. The web client sends
// form values as strings and numbers interchangeably.
type looseValue string

func (v *looseValue) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = looseValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*v = looseValue(n.String())
	return nil
}

func (v looseValue) String() string {
	return strings.TrimSpace(string(v))
}

// Int returns the whole number held by v, or 0 when it is not one.
func (v looseValue) Int() int {
	return parseWhole(v.String())
}

func parseWhole(raw string) int {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0
	}
	return int(f)
}

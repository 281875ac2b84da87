package design

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// numberParam reads a numeric issue parameter. Reviewers send numbers as JSON
// numbers or as strings like "48px"; both are accepted.
func numberParam(params map[string]any, key string) (float64, bool) {
	raw, ok := params[key]
	if !ok || raw == nil {
		return 0, false
	}
	var (
		f   float64
		err error
	)
	switch v := raw.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		f, err = v.Float64()
	case string:
		s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "px"))
		f, err = strconv.ParseFloat(s, 64)
	default:
		return 0, false
	}
	// NaN and Inf cannot be encoded as JSON.
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func stringParam(params map[string]any, key string) (string, bool) {
	raw, ok := params[key]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

package algorithms

import (
	"fmt"
	"strings"
)

// Parameters arrive from YAML, JSON or the CLI, so numbers are float64 but ints are tolerated.

func floatParam(params map[string]interface{}, key string, def float64) float64 {
	val, ok := params[key]
	if !ok {
		return def
	}
	switch v := val.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return def
}

func intParam(params map[string]interface{}, key string, def int) int {
	return int(floatParam(params, key, float64(def)))
}

func boolParam(params map[string]interface{}, key string, def bool) bool {
	if v, ok := params[key].(bool); ok {
		return v
	}
	return def
}

func stringParam(params map[string]interface{}, key string, def string) string {
	if v, ok := params[key].(string); ok {
		return strings.ToLower(strings.TrimSpace(v))
	}
	return def
}

// checkRange validates a numeric parameter when present
func checkRange(params map[string]interface{}, key string, min, max float64) error {
	if _, ok := params[key]; !ok {
		return nil
	}
	v := floatParam(params, key, min-1)
	if v < min || v > max {
		return fmt.Errorf("%s must be between %g and %g", key, min, max)
	}
	return nil
}

// checkOption validates an enum parameter when present
func checkOption(params map[string]interface{}, key string, options []string) error {
	val, ok := params[key]
	if !ok {
		return nil
	}
	s, ok := val.(string)
	if !ok {
		return fmt.Errorf("%s must be a string", key)
	}
	s = strings.ToLower(strings.TrimSpace(s))
	for _, option := range options {
		if s == option {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %s", key, strings.Join(options, ", "))
}

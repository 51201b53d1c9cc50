package comparison

import "encoding/json"

// reservedKeys are slot config keys consumed by the runner itself.
// Everything else passes through to the adapter untouched.
var reservedKeys = map[string]struct{}{
	"provider":      {},
	"model":         {},
	"system_prompt": {},
	"user_prompt":   {},
	"temperature":   {},
	"max_tokens":    {},
	"top_p":         {},
}

// stringValue reads a string config value. An absent key, a non-string
// value, and an empty string all count as not supplied.
func stringValue(config map[string]any, key string) (string, bool) {
	v, ok := config[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

func floatValue(config map[string]any, key string) *float64 {
	v, ok := config[key]
	if !ok {
		return nil
	}
	f, ok := toFloat(v)
	if !ok {
		return nil
	}
	return &f
}

func intValue(config map[string]any, key string) *int {
	v, ok := config[key]
	if !ok {
		return nil
	}
	f, ok := toFloat(v)
	if !ok {
		return nil
	}
	n := int(f)
	return &n
}

// toFloat accepts the numeric shapes JSON decoding produces.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func extraValues(config map[string]any) map[string]any {
	var extra map[string]any
	for k, v := range config {
		if _, reserved := reservedKeys[k]; reserved {
			continue
		}
		if v == nil {
			continue
		}
		if extra == nil {
			extra = make(map[string]any)
		}
		extra[k] = v
	}
	return extra
}

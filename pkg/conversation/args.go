package conversation

import "encoding/json"

// reservedArgs are the argument keys consumed by the operations
// themselves; everything else on a start request is a provider-specific
// passthrough extra.
var reservedArgs = map[string]struct{}{
	"mode":            {},
	"provider":        {},
	"model":           {},
	"system_prompt":   {},
	"user_prompt":     {},
	"temperature":     {},
	"max_tokens":      {},
	"top_p":           {},
	"conversation_id": {},
}

// stringArg reads a non-empty string argument.
func stringArg(args map[string]any, key string) (string, bool) {
	v, ok := args[key].(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// stringOr reads a string argument with a default. Unlike stringArg the
// empty string is a valid value here (user_prompt may be empty).
func stringOr(args map[string]any, key, fallback string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return fallback
}

// floatArg reads an optional numeric argument. JSON decoding yields
// float64; direct callers may pass int or json.Number.
func floatArg(args map[string]any, key string) *float64 {
	v, ok := args[key]
	if !ok || v == nil {
		return nil
	}
	if f, ok := toFloat(v); ok {
		return &f
	}
	return nil
}

// intArg reads an optional integer argument.
func intArg(args map[string]any, key string) *int {
	v, ok := args[key]
	if !ok || v == nil {
		return nil
	}
	if f, ok := toFloat(v); ok {
		i := int(f)
		return &i
	}
	return nil
}

// extraArgs collects the passthrough extras: every non-nil argument not
// claimed by the operation itself.
func extraArgs(args map[string]any) map[string]any {
	extra := make(map[string]any)
	for k, v := range args {
		if _, reserved := reservedArgs[k]; reserved {
			continue
		}
		if v != nil {
			extra[k] = v
		}
	}
	if len(extra) == 0 {
		return nil
	}
	return extra
}

// hyperFloat reads a stored hyperparameter back as a float. Values come
// from JSON round-trips, so float64 is the common case.
func hyperFloat(hyper map[string]any, key string) *float64 {
	if hyper == nil {
		return nil
	}
	v, ok := hyper[key]
	if !ok || v == nil {
		return nil
	}
	if f, ok := toFloat(v); ok {
		return &f
	}
	return nil
}

// hyperInt reads a stored hyperparameter back as an int.
func hyperInt(hyper map[string]any, key string) *int {
	if f := hyperFloat(hyper, key); f != nil {
		i := int(*f)
		return &i
	}
	return nil
}

// toFloat coerces the numeric types that show up in decoded argument maps.
func toFloat(v any) (float64, bool) {
	switch value := v.(type) {
	case float64:
		return value, true
	case float32:
		return float64(value), true
	case int:
		return float64(value), true
	case int64:
		return float64(value), true
	case json.Number:
		f, err := value.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

package linear_model

import (
	"math"

	"github.com/YuminosukeSato/exhaustive/pkg/errors"
)

func asFloat(key string, v interface{}) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	default:
		return 0, errors.NewValidationError(key, "expected a number", v)
	}
}

func asInt(key string, v interface{}) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case uint64:
		return int(x), nil
	case float64:
		if x != math.Trunc(x) {
			return 0, errors.NewValidationError(key, "expected an integer", v)
		}
		return int(x), nil
	default:
		return 0, errors.NewValidationError(key, "expected an integer", v)
	}
}

func asString(key string, v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", errors.NewValidationError(key, "expected a string", v)
	}
	return s, nil
}

func asBool(key string, v interface{}) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, errors.NewValidationError(key, "expected a boolean", v)
	}
	return b, nil
}

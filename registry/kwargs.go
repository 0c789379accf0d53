package registry

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/YuminosukeSato/exhaustive/pkg/errors"
)

// kwargs reads keyword arguments decoded from YAML and reports the first
// problem against field.
type kwargs struct {
	field string
	raw   map[string]any
	used  map[string]bool
	err   error
}

func newKwargs(field string, raw map[string]any) *kwargs {
	return &kwargs{field: field, raw: raw, used: make(map[string]bool)}
}

func (k *kwargs) fail(key, format string, args ...any) {
	if k.err == nil {
		k.err = errors.NewConfigurationErrorf(k.field, "%s: %s", key, fmt.Sprintf(format, args...))
	}
}

func (k *kwargs) lookup(key string) (any, bool) {
	k.used[key] = true
	v, ok := k.raw[key]
	return v, ok && v != nil
}

func (k *kwargs) Bool(key string, def bool) bool {
	v, ok := k.lookup(key)
	if !ok {
		return def
	}
	b, isBool := v.(bool)
	if !isBool {
		k.fail(key, "expected a boolean, got %v", v)
	}
	return b
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	}
	return 0, false
}

func (k *kwargs) Float(key string, def float64) float64 {
	v, ok := k.lookup(key)
	if !ok {
		return def
	}
	f, isNum := toFloat(v)
	if !isNum {
		k.fail(key, "expected a number, got %v", v)
	}
	return f
}

func (k *kwargs) Floats(key string) []float64 {
	v, ok := k.lookup(key)
	if !ok {
		return nil
	}
	list, isList := v.([]any)
	if !isList {
		k.fail(key, "expected a list of numbers, got %v", v)
		return nil
	}
	out := make([]float64, len(list))
	for i, item := range list {
		f, isNum := toFloat(item)
		if !isNum {
			k.fail(key, "element %d is not a number: %v", i, item)
			return nil
		}
		out[i] = f
	}
	return out
}

func (k *kwargs) Strings(key string) []string {
	v, ok := k.lookup(key)
	if !ok {
		return nil
	}
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, len(list))
		for i, item := range list {
			s, isStr := item.(string)
			if !isStr {
				k.fail(key, "element %d is not a string: %v", i, item)
				return nil
			}
			out[i] = s
		}
		return out
	}
	k.fail(key, "expected a list of strings, got %v", v)
	return nil
}

// Err returns the first decoding error, or an error naming the keys that
// were never read.
func (k *kwargs) Err() error {
	if k.err != nil {
		return k.err
	}
	var unknown []string
	for key := range k.raw {
		if !k.used[key] {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return errors.NewConfigurationErrorf(k.field, "unknown arguments %s", strings.Join(unknown, ", "))
	}
	return nil
}

func unknownName(field, name string, known map[string]bool) error {
	return errors.NewConfigurationErrorf(field, "unknown name %q, expected one of %s",
		name, strings.Join(slices.Sorted(maps.Keys(known)), ", "))
}

package model_selection

import (
	"fmt"
	"strings"

	"github.com/YuminosukeSato/exhaustive/pkg/errors"
)

// ParamRange is one named hyperparameter and the values to try.
type ParamRange struct {
	Name   string
	Values []any
}

// ParamGrid is the cartesian product of its ranges, kept in declaration order.
type ParamGrid []ParamRange

// Names returns the parameter names in declaration order.
func (g ParamGrid) Names() []string {
	names := make([]string, len(g))
	for i, r := range g {
		names[i] = r.Name
	}
	return names
}

// Validate rejects empty ranges and duplicate names.
func (g ParamGrid) Validate() error {
	seen := make(map[string]struct{}, len(g))
	for _, r := range g {
		if r.Name == "" {
			return errors.NewValidationError("param_grid", "empty parameter name", r.Values)
		}
		if _, dup := seen[r.Name]; dup {
			return errors.NewValidationError(r.Name, "parameter declared twice", r.Values)
		}
		if len(r.Values) == 0 {
			return errors.NewValidationError(r.Name, "no values to search", r.Values)
		}
		seen[r.Name] = struct{}{}
	}
	return nil
}

// Size is the number of combinations. An empty grid has one, the empty combination.
func (g ParamGrid) Size() int {
	n := 1
	for _, r := range g {
		n *= len(r.Values)
	}
	return n
}

// Combinations enumerates every combination with the last range varying fastest.
func (g ParamGrid) Combinations() []map[string]any {
	out := make([]map[string]any, 0, g.Size())
	idx := make([]int, len(g))
	for {
		combo := make(map[string]any, len(g))
		for i, r := range g {
			combo[r.Name] = r.Values[idx[i]]
		}
		out = append(out, combo)

		i := len(g) - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(g[i].Values) {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			return out
		}
	}
}

// FormatParams renders params in grid order, e.g. "C=0.1, max_iter=100".
func (g ParamGrid) FormatParams(params map[string]any) string {
	parts := make([]string, 0, len(g))
	for _, r := range g {
		parts = append(parts, fmt.Sprintf("%s=%v", r.Name, params[r.Name]))
	}
	return strings.Join(parts, ", ")
}

package assumption

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"finmodel/pkg/core/modelerr"
)

// FromMap converts a loosely typed document (decoded JSON, HJSON or YAML)
// into a Set. Numeric values become scalars; nested maps keyed by year become
// schedules.
func FromMap(raw map[string]any) (Set, error) {
	values := make(map[Key]float64)
	schedules := make(map[Key]Schedule)

	for name, v := range raw {
		key := Key(strings.TrimSpace(name))
		if nested, ok := asMap(v); ok {
			sch, err := scheduleFrom(key, nested)
			if err != nil {
				return Set{}, err
			}
			schedules[key] = sch
			continue
		}
		f, err := toFloat(v)
		if err != nil {
			return Set{}, modelerr.Invalid(string(key), "%v", err)
		}
		if IsSchedule(key) {
			return Set{}, modelerr.Invalid(string(key), "expected a year-keyed mapping, got a scalar")
		}
		values[key] = f
	}
	return New(values, schedules), nil
}

// ValuesFrom converts a flat numeric mapping such as opening balances.
func ValuesFrom(raw map[string]any) (map[string]float64, error) {
	out := make(map[string]float64, len(raw))
	for name, v := range raw {
		f, err := toFloat(v)
		if err != nil {
			return nil, modelerr.Invalid(name, "%v", err)
		}
		out[strings.TrimSpace(name)] = f
	}
	return out, nil
}

func scheduleFrom(key Key, nested map[string]any) (Schedule, error) {
	sch := make(Schedule, len(nested))
	for yearText, v := range nested {
		year, err := strconv.Atoi(strings.TrimSpace(yearText))
		if err != nil {
			return nil, modelerr.Invalid(string(key), "schedule year %q is not an integer", yearText)
		}
		f, err := toFloat(v)
		if err != nil {
			return nil, modelerr.Invalid(string(key), "schedule year %d: %v", year, err)
		}
		sch[year] = f
	}
	return sch, nil
}

// asMap normalises the two map shapes decoders produce. yaml.v2 yields
// map[interface{}]interface{} with int keys for bare years.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	case map[int]float64:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[strconv.Itoa(k)] = val
		}
		return out, true
	}
	return nil, false
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	case string:
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(n), "_", ""), 64)
		if err != nil {
			return 0, fmt.Errorf("value %q is not numeric", n)
		}
		return f, nil
	case nil:
		return 0, fmt.Errorf("value is null")
	}
	return 0, fmt.Errorf("unsupported value type %T", v)
}

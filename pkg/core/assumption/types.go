// Package assumption holds the effective assumption set of a model run.
//
// A Set is immutable once built: values and schedules live in unexported maps
// and every accessor hands back copies. Sets are merged with Merge, where the
// override side always wins, and read through a Reader that substitutes engine
// defaults for absent ratios and records a warning for each substitution.
package assumption

import (
	"encoding/json"
	"sort"
	"strconv"
)

// Schedule maps a forecast year to an amount. Years absent from a schedule
// contribute zero.
type Schedule map[int]float64

// At returns the scheduled amount for year, or zero.
func (s Schedule) At(year int) float64 {
	return s[year]
}

func (s Schedule) clone() Schedule {
	out := make(Schedule, len(s))
	for y, v := range s {
		out[y] = v
	}
	return out
}

// Set is a resolved mapping of assumption keys to scalars and schedules.
type Set struct {
	values    map[Key]float64
	schedules map[Key]Schedule
}

// New builds a Set from plain maps. The inputs are copied.
func New(values map[Key]float64, schedules map[Key]Schedule) Set {
	s := Set{
		values:    make(map[Key]float64, len(values)),
		schedules: make(map[Key]Schedule, len(schedules)),
	}
	for k, v := range values {
		s.values[k] = v
	}
	for k, sch := range schedules {
		s.schedules[k] = sch.clone()
	}
	return s
}

// Value returns the scalar stored for k.
func (s Set) Value(k Key) (float64, bool) {
	v, ok := s.values[k]
	return v, ok
}

// Has reports whether k is present as a scalar or a schedule.
func (s Set) Has(k Key) bool {
	if _, ok := s.values[k]; ok {
		return true
	}
	_, ok := s.schedules[k]
	return ok
}

// Schedule returns a copy of the schedule stored for k. A missing schedule is
// returned empty, never nil.
func (s Set) Schedule(k Key) Schedule {
	sch, ok := s.schedules[k]
	if !ok {
		return Schedule{}
	}
	return sch.clone()
}

// Len is the number of keys in the set.
func (s Set) Len() int { return len(s.values) + len(s.schedules) }

// Keys returns all keys in sorted order.
func (s Set) Keys() []Key {
	keys := make([]Key, 0, s.Len())
	for k := range s.values {
		keys = append(keys, k)
	}
	for k := range s.schedules {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// With returns a copy of s with k set to v.
func (s Set) With(k Key, v float64) Set {
	out := New(s.values, s.schedules)
	out.values[k] = v
	return out
}

// Merge layers overrides on top of base. Any key present in overrides
// supersedes the base value, scalars and schedules alike.
func Merge(base, overrides Set) Set {
	out := New(base.values, base.schedules)
	for k, v := range overrides.values {
		out.values[k] = v
		delete(out.schedules, k)
	}
	for k, sch := range overrides.schedules {
		out.schedules[k] = sch.clone()
		delete(out.values, k)
	}
	return out
}

// MarshalJSON renders the set as a flat object; schedules become nested
// objects keyed by year.
func (s Set) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, s.Len())
	for k, v := range s.values {
		flat[string(k)] = v
	}
	for k, sch := range s.schedules {
		years := make(map[string]float64, len(sch))
		for y, v := range sch {
			years[strconv.Itoa(y)] = v
		}
		flat[string(k)] = years
	}
	return json.Marshal(flat)
}

// UnmarshalJSON accepts the shape produced by MarshalJSON.
func (s *Set) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := FromMap(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

package assumption

import (
	"math"

	"finmodel/pkg/core/modelerr"
)

// Reader reads typed values out of a Set. Ratio lookups fall back to
// DefaultRatios and record a DataQualityWarning per substituted key; required
// lookups fail with a ConfigurationError.
type Reader struct {
	set      Set
	warnings []modelerr.DataQualityWarning
	seen     map[Key]bool
}

// NewReader wraps s.
func NewReader(s Set) *Reader {
	return &Reader{set: s, seen: make(map[Key]bool)}
}

// Ratio returns the value for k or its engine default.
func (r *Reader) Ratio(k Key) float64 {
	if v, ok := r.set.Value(k); ok {
		return v
	}
	def := DefaultRatios[k]
	r.warn(modelerr.DataQualityWarning{Key: string(k), Default: def})
	return def
}

// Optional returns the value for k without substituting a default.
func (r *Reader) Optional(k Key) (float64, bool) {
	return r.set.Value(k)
}

// Required returns the value for k or a ConfigurationError.
func (r *Reader) Required(k Key) (float64, error) {
	v, ok := r.set.Value(k)
	if !ok {
		return 0, modelerr.Missing(string(k))
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, modelerr.Invalid(string(k), "value is not finite")
	}
	return v, nil
}

// RequiredInt is Required for whole-number keys such as years.
func (r *Reader) RequiredInt(k Key) (int, error) {
	v, err := r.Required(k)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) {
		return 0, modelerr.Invalid(string(k), "expected a whole number, got %g", v)
	}
	if math.Abs(v) > math.MaxInt32 {
		return 0, modelerr.Invalid(string(k), "value %g is out of range", v)
	}
	return int(v), nil
}

// Schedule returns the schedule for k; absent schedules are empty.
func (r *Reader) Schedule(k Key) Schedule {
	return r.set.Schedule(k)
}

// Note records a warning that is not tied to a defaulted ratio.
func (r *Reader) Note(w modelerr.DataQualityWarning) {
	r.warn(w)
}

// Warnings returns the warnings collected so far, in first-seen order.
func (r *Reader) Warnings() []modelerr.DataQualityWarning {
	out := make([]modelerr.DataQualityWarning, len(r.warnings))
	copy(out, r.warnings)
	return out
}

func (r *Reader) warn(w modelerr.DataQualityWarning) {
	k := Key(w.Key)
	if r.seen[k] {
		return
	}
	r.seen[k] = true
	r.warnings = append(r.warnings, w)
}

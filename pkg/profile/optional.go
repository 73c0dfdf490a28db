package profile

import (
	"fmt"
	"math"
	"strconv"

	"github.com/ajitpratap0/tabprofile/pkg/json"
)

// Absent is how a missing statistic renders in text output.
const Absent = "n/a"

// Optional holds a statistic that may have no value. The zero Optional is
// absent, which is distinct from a present zero.
type Optional[T any] struct {
	value T
	ok    bool
}

// Some wraps a present value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, ok: true}
}

// None returns the absence value.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) { return o.value, o.ok }

// Present reports whether a value is held.
func (o Optional[T]) Present() bool { return o.ok }

// OrElse returns the value, or def when absent.
func (o Optional[T]) OrElse(def T) T {
	if !o.ok {
		return def
	}
	return o.value
}

func (o Optional[T]) String() string {
	if !o.ok {
		return Absent
	}
	return formatScalar(o.value)
}

// MarshalJSON encodes absence as null. Non-finite floats are encoded as
// strings since JSON has no literal for them.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	if f, ok := any(o.value).(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return json.Marshal(strconv.FormatFloat(f, 'g', -1, 64))
	}
	return json.Marshal(o.value)
}

// MarshalYAML encodes absence as null.
func (o Optional[T]) MarshalYAML() (interface{}, error) {
	if !o.ok {
		return nil, nil
	}
	return o.value, nil
}

// formatScalar renders a statistic for display.
func formatScalar(v interface{}) string {
	switch val := v.(type) {
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

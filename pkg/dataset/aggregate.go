package dataset

import (
	"math"
	"sort"
	"time"

	"github.com/aclements/go-moremath/stats"
)

// NullCount counts missing cells.
func NullCount(c Column) int {
	n := 0
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			n++
		}
	}
	return n
}

// NonNull returns the non-missing values in column order.
func NonNull(c Column) []interface{} {
	values := make([]interface{}, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			continue
		}
		values = append(values, c.Value(i))
	}
	return values
}

// timeKey identifies an instant over the whole time.Time range, which
// UnixNano does not cover.
type timeKey struct {
	sec  int64
	nsec int
}

type textKey struct{ s string }

// distinctKey maps a value to a comparable key. Numbers compare exactly by
// value across Go types, so int64(1) and float64(1) are the same value.
func distinctKey(v interface{}) interface{} {
	if n, ok := NumberOf(v); ok {
		return n
	}
	switch val := v.(type) {
	case bool, string:
		return val
	case time.Duration:
		return val
	case time.Time:
		return timeKey{sec: val.Unix(), nsec: val.Nanosecond()}
	case []byte:
		return textKey{string(val)}
	default:
		return textKey{Text(val)}
	}
}

// DistinctCount counts distinct values.
func DistinctCount(values []interface{}) int {
	seen := make(map[interface{}]struct{}, len(values))
	for _, v := range values {
		seen[distinctKey(v)] = struct{}{}
	}
	return len(seen)
}

// ToFloat converts numeric and boolean values to float64.
func ToFloat(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// Floats returns the non-null values of a numeric column as float64.
// Values that are not numeric are skipped.
func Floats(c Column) []float64 {
	out := make([]float64, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			continue
		}
		if f, ok := ToFloat(c.Value(i)); ok {
			out = append(out, f)
		}
	}
	return out
}

// Times returns the non-null timestamp values.
func Times(c Column) []time.Time {
	out := make([]time.Time, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		if t, ok := c.Value(i).(time.Time); ok {
			out = append(out, t)
		}
	}
	return out
}

// Durations returns the non-null duration values.
func Durations(c Column) []time.Duration {
	out := make([]time.Duration, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		if d, ok := c.Value(i).(time.Duration); ok {
			out = append(out, d)
		}
	}
	return out
}

// Sample is a sorted numeric sample.
type Sample struct {
	s stats.Sample
}

// NewSample copies and sorts values.
func NewSample(values []float64) *Sample {
	xs := make([]float64, len(values))
	copy(xs, values)
	sort.Float64s(xs)
	return &Sample{s: stats.Sample{Xs: xs, Sorted: true}}
}

// Len returns the number of observations.
func (s *Sample) Len() int { return len(s.s.Xs) }

// Min returns the smallest value, NaN when empty.
func (s *Sample) Min() float64 {
	if s.Len() == 0 {
		return math.NaN()
	}
	return s.s.Xs[0]
}

// Max returns the largest value, NaN when empty.
func (s *Sample) Max() float64 {
	if s.Len() == 0 {
		return math.NaN()
	}
	return s.s.Xs[s.Len()-1]
}

func (s *Sample) Sum() float64 { return s.s.Sum() }

// Mean returns the arithmetic mean, NaN when empty.
func (s *Sample) Mean() float64 { return s.s.Mean() }

// Variance returns the sample variance (N-1 denominator).
func (s *Sample) Variance() float64 { return s.s.Variance() }

// StdDev returns the sample standard deviation.
func (s *Sample) StdDev() float64 { return s.s.StdDev() }

// Quantile returns the p-quantile by linear interpolation between closest
// ranks (h = (n-1)p), the default method of most dataframe libraries.
func (s *Sample) Quantile(p float64) float64 {
	n := s.Len()
	if n == 0 {
		return math.NaN()
	}
	if p <= 0 {
		return s.s.Xs[0]
	}
	if p >= 1 {
		return s.s.Xs[n-1]
	}
	h := float64(n-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= n {
		return s.s.Xs[n-1]
	}
	a, b := s.s.Xs[i], s.s.Xs[i+1]
	q := a + (h-lo)*(b-a)
	// rounding must not leave the bracketing order statistics
	return math.Min(math.Max(q, a), b)
}

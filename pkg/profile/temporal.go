package profile

import (
	"time"
)

// Temporal is a datetime statistic: either a point in time or an elapsed
// duration.
type Temporal struct {
	t       time.Time
	d       time.Duration
	elapsed bool
}

// At wraps a point in time.
func At(t time.Time) Temporal { return Temporal{t: t} }

// Elapsed wraps a duration.
func Elapsed(d time.Duration) Temporal { return Temporal{d: d, elapsed: true} }

// IsDuration reports whether the value is a duration.
func (v Temporal) IsDuration() bool { return v.elapsed }

// Time returns the point in time. It is the zero time for durations.
func (v Temporal) Time() time.Time { return v.t }

// Duration returns the duration. It is zero for points in time.
func (v Temporal) Duration() time.Duration { return v.d }

func (v Temporal) String() string {
	if v.elapsed {
		return v.d.String()
	}
	return v.t.Format(time.RFC3339Nano)
}

// Equal reports whether both values are the same instant or duration.
func (v Temporal) Equal(o Temporal) bool {
	if v.elapsed != o.elapsed {
		return false
	}
	if v.elapsed {
		return v.d == o.d
	}
	return v.t.Equal(o.t)
}

// MarshalText renders times as RFC 3339 and durations in Go notation.
func (v Temporal) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

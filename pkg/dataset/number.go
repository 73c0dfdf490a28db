package dataset

import (
	"cmp"
	"math"
	"math/big"
	"strconv"

	"github.com/ajitpratap0/tabprofile/pkg/json"
)

type numberKind uint8

const (
	numberInt numberKind = iota
	numberUint
	numberFloat
)

// Number is an exact numeric cell value. Integers keep full 64-bit
// precision. A float holding an integer that fits int64 or uint64 is stored
// as that integer, so equal values are equal Numbers whatever their Go type.
type Number struct {
	kind numberKind
	i    int64
	u    uint64
	f    float64
}

// IntNumber returns the Number for v.
func IntNumber(v int64) Number { return Number{kind: numberInt, i: v} }

// UintNumber returns the Number for v.
func UintNumber(v uint64) Number {
	if v <= math.MaxInt64 {
		return IntNumber(int64(v))
	}
	return Number{kind: numberUint, u: v}
}

// FloatNumber returns the Number for v.
func FloatNumber(v float64) Number {
	if v == math.Trunc(v) {
		switch {
		case v >= -(1<<63) && v < 1<<63:
			return IntNumber(int64(v))
		case v >= 1<<63 && v < 1<<64:
			return Number{kind: numberUint, u: uint64(v)}
		}
	}
	return Number{kind: numberFloat, f: v}
}

// NumberOf converts Go numeric values. Booleans are not numbers.
func NumberOf(v interface{}) (Number, bool) {
	switch val := v.(type) {
	case int:
		return IntNumber(int64(val)), true
	case int8:
		return IntNumber(int64(val)), true
	case int16:
		return IntNumber(int64(val)), true
	case int32:
		return IntNumber(int64(val)), true
	case int64:
		return IntNumber(val), true
	case uint:
		return UintNumber(uint64(val)), true
	case uint8:
		return UintNumber(uint64(val)), true
	case uint16:
		return UintNumber(uint64(val)), true
	case uint32:
		return UintNumber(uint64(val)), true
	case uint64:
		return UintNumber(val), true
	case float32:
		return FloatNumber(float64(val)), true
	case float64:
		return FloatNumber(val), true
	}
	return Number{}, false
}

// IsInteger reports whether n holds an integer.
func (n Number) IsInteger() bool { return n.kind != numberFloat }

// Float64 returns n as the nearest float64.
func (n Number) Float64() float64 {
	switch n.kind {
	case numberInt:
		return float64(n.i)
	case numberUint:
		return float64(n.u)
	}
	return n.f
}

// Compare returns -1, 0 or +1 as n is less than, equal to or greater than o.
func (n Number) Compare(o Number) int {
	switch {
	case n.kind == numberInt && o.kind == numberInt:
		return cmp.Compare(n.i, o.i)
	case n.kind == numberUint && o.kind == numberUint:
		return cmp.Compare(n.u, o.u)
	case n.kind == numberInt && o.kind == numberUint:
		// uint Numbers are above math.MaxInt64
		return -1
	case n.kind == numberUint && o.kind == numberInt:
		return 1
	}
	// A float Number is either fractional (so below 2^52 in magnitude) or
	// beyond the integer ranges; rounding the other side cannot cross it.
	return cmp.Compare(n.Float64(), o.Float64())
}

// Sub returns n - o, exact before the final rounding to float64.
func (n Number) Sub(o Number) float64 {
	if n.IsInteger() && o.IsInteger() {
		d := new(big.Int).Sub(n.bigInt(), o.bigInt())
		f, _ := new(big.Float).SetInt(d).Float64()
		return f
	}
	return n.Float64() - o.Float64()
}

func (n Number) bigInt() *big.Int {
	if n.kind == numberUint {
		return new(big.Int).SetUint64(n.u)
	}
	return big.NewInt(n.i)
}

func (n Number) String() string {
	switch n.kind {
	case numberInt:
		return strconv.FormatInt(n.i, 10)
	case numberUint:
		return strconv.FormatUint(n.u, 10)
	}
	return strconv.FormatFloat(n.f, 'g', -1, 64)
}

// MarshalJSON writes integers with all their digits. Non-finite floats are
// written as strings.
func (n Number) MarshalJSON() ([]byte, error) {
	switch n.kind {
	case numberInt, numberUint:
		return []byte(n.String()), nil
	}
	if math.IsNaN(n.f) || math.IsInf(n.f, 0) {
		return json.Marshal(n.String())
	}
	return json.Marshal(n.f)
}

// MarshalYAML writes the underlying Go number.
func (n Number) MarshalYAML() (interface{}, error) {
	switch n.kind {
	case numberInt:
		return n.i, nil
	case numberUint:
		return n.u, nil
	}
	return n.f, nil
}

// Numbers returns the non-null numeric values of c. Booleans read as 0 and 1.
func Numbers(c Column) []Number {
	out := make([]Number, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			continue
		}
		v := c.Value(i)
		if b, ok := v.(bool); ok {
			if b {
				out = append(out, IntNumber(1))
			} else {
				out = append(out, IntNumber(0))
			}
			continue
		}
		if n, ok := NumberOf(v); ok {
			out = append(out, n)
		}
	}
	return out
}

// MinMax returns the smallest and largest of ns. ok is false when ns is
// empty.
func MinMax(ns []Number) (lo, hi Number, ok bool) {
	if len(ns) == 0 {
		return Number{}, Number{}, false
	}
	lo, hi = ns[0], ns[0]
	for _, n := range ns[1:] {
		if n.Compare(lo) < 0 {
			lo = n
		}
		if n.Compare(hi) > 0 {
			hi = n
		}
	}
	return lo, hi, true
}

package dataset

import (
	"math"
	"sort"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// Column is one named, ordered sequence of cells.
type Column interface {
	// Name is unique within a dataset
	Name() string
	// Len is the total number of cells, nulls included
	Len() int
	// Storage is the physical type of the non-null cells
	Storage() StorageType
	// IsNull reports whether cell i is missing
	IsNull(i int) bool
	// Value returns cell i as a Go value, nil when missing
	Value(i int) interface{}
}

// IsNullValue reports whether a Go value is a missing-data marker.
func IsNullValue(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	}
	return false
}

// arrowColumn exposes one or more Arrow arrays of the same type as a Column.
type arrowColumn struct {
	name    string
	dtype   arrow.DataType
	storage StorageType
	chunks  []arrow.Array
	starts  []int
	length  int
}

// NewArrowColumn wraps Arrow arrays sharing one data type. The arrays are
// retained until the owning dataset is released.
func NewArrowColumn(name string, chunks ...arrow.Array) Column {
	c := &arrowColumn{name: name, dtype: arrow.Null}
	for _, chunk := range chunks {
		if chunk == nil {
			continue
		}
		chunk.Retain()
		c.dtype = chunk.DataType()
		c.starts = append(c.starts, c.length)
		c.chunks = append(c.chunks, chunk)
		c.length += chunk.Len()
	}
	c.storage = StorageOf(c.dtype)
	return c
}

func (c *arrowColumn) Name() string         { return c.name }
func (c *arrowColumn) Len() int             { return c.length }
func (c *arrowColumn) Storage() StorageType { return c.storage }

// DataType returns the Arrow type of the column.
func (c *arrowColumn) DataType() arrow.DataType { return c.dtype }

func (c *arrowColumn) locate(i int) (arrow.Array, int) {
	k := sort.Search(len(c.starts), func(j int) bool { return c.starts[j] > i }) - 1
	return c.chunks[k], i - c.starts[k]
}

func (c *arrowColumn) IsNull(i int) bool {
	arr, j := c.locate(i)
	if arr.IsNull(j) {
		return true
	}
	switch a := arr.(type) {
	case *array.Float64:
		return math.IsNaN(a.Value(j))
	case *array.Float32:
		return math.IsNaN(float64(a.Value(j)))
	case *array.Float16:
		return math.IsNaN(float64(a.Value(j).Float32()))
	}
	return false
}

func (c *arrowColumn) Value(i int) interface{} {
	if c.IsNull(i) {
		return nil
	}
	arr, j := c.locate(i)
	return arrowValue(arr, j)
}

func (c *arrowColumn) release() {
	for _, chunk := range c.chunks {
		chunk.Release()
	}
	c.chunks = nil
}

// arrowValue converts a non-null Arrow cell to the Go value the profiler
// works with: int64, uint64, float64, bool, string, []byte, time.Time or
// time.Duration. Anything else is rendered through ValueStr.
func arrowValue(arr arrow.Array, i int) interface{} {
	switch a := arr.(type) {
	case *array.Int8:
		return int64(a.Value(i))
	case *array.Int16:
		return int64(a.Value(i))
	case *array.Int32:
		return int64(a.Value(i))
	case *array.Int64:
		return a.Value(i)
	case *array.Uint8:
		return uint64(a.Value(i))
	case *array.Uint16:
		return uint64(a.Value(i))
	case *array.Uint32:
		return uint64(a.Value(i))
	case *array.Uint64:
		return a.Value(i)
	case *array.Float16:
		return float64(a.Value(i).Float32())
	case *array.Float32:
		return float64(a.Value(i))
	case *array.Float64:
		return a.Value(i)
	case *array.Boolean:
		return a.Value(i)
	case *array.String:
		return a.Value(i)
	case *array.LargeString:
		return a.Value(i)
	case *array.Binary:
		return a.Value(i)
	case *array.LargeBinary:
		return a.Value(i)
	case *array.FixedSizeBinary:
		return a.Value(i)
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return a.Value(i).ToTime(unit)
	case *array.Date32:
		return a.Value(i).ToTime()
	case *array.Date64:
		return a.Value(i).ToTime()
	case *array.Duration:
		unit := a.DataType().(*arrow.DurationType).Unit
		return time.Duration(a.Value(i)) * unit.Multiplier()
	default:
		return arr.ValueStr(i)
	}
}

// valueColumn holds plain Go values, used for heterogeneous inputs that have
// no Arrow representation.
type valueColumn struct {
	name    string
	values  []interface{}
	storage StorageType
}

// NewValueColumn builds a column from Go values. nil and NaN are missing.
// The storage type is detected from the non-null values.
func NewValueColumn(name string, values []interface{}) Column {
	return &valueColumn{
		name:    name,
		values:  values,
		storage: DetectStorage(values),
	}
}

func (c *valueColumn) Name() string         { return c.name }
func (c *valueColumn) Len() int             { return len(c.values) }
func (c *valueColumn) Storage() StorageType { return c.storage }
func (c *valueColumn) IsNull(i int) bool    { return IsNullValue(c.values[i]) }

func (c *valueColumn) Value(i int) interface{} {
	v := c.values[i]
	if IsNullValue(v) {
		return nil
	}
	return v
}

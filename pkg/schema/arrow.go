package schema

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/ajitpratap0/tabprofile/pkg/dataset"
	"github.com/ajitpratap0/tabprofile/pkg/errors"
)

var (
	timestampType = &arrow.TimestampType{Unit: arrow.Nanosecond, TimeZone: "UTC"}
	durationType  = &arrow.DurationType{Unit: arrow.Nanosecond}
)

// ArrowType returns the Arrow type used to materialize a storage type.
// ok is false for storage that has no Arrow form (object).
func ArrowType(storage dataset.StorageType) (arrow.DataType, bool) {
	switch storage {
	case dataset.StorageNull:
		return arrow.Null, true
	case dataset.StorageInt:
		return arrow.PrimitiveTypes.Int64, true
	case dataset.StorageUint:
		return arrow.PrimitiveTypes.Uint64, true
	case dataset.StorageFloat:
		return arrow.PrimitiveTypes.Float64, true
	case dataset.StorageBool:
		return arrow.FixedWidthTypes.Boolean, true
	case dataset.StorageString:
		return arrow.BinaryTypes.String, true
	case dataset.StorageBinary:
		return arrow.BinaryTypes.Binary, true
	case dataset.StorageTimestamp:
		return timestampType, true
	case dataset.StorageDuration:
		return durationType, true
	}
	return nil, false
}

// TextArray infers the storage of text cells and builds the matching Arrow
// array. A nil valid slice means every cell is valid. The caller owns the
// returned array.
func (e *TypeInferenceEngine) TextArray(mem memory.Allocator, cells []string, valid []bool) (arrow.Array, InferredType, error) {
	inferred := e.InferType(cells, valid)
	if inferred.Storage == dataset.StorageNull {
		return array.NewNull(len(cells)), inferred, nil
	}

	dt, _ := ArrowType(inferred.Storage)
	b := array.NewBuilder(mem, dt)
	defer b.Release()
	b.Reserve(len(cells))

	for i, raw := range cells {
		if valid != nil && !valid[i] {
			b.AppendNull()
			continue
		}
		if err := e.appendText(b, inferred.Storage, raw); err != nil {
			return nil, inferred, errors.Wrap(err, errors.ErrorTypeData, "failed to convert cell").
				WithDetail("row", i).
				WithDetail("storage", inferred.Storage.String())
		}
	}
	return b.NewArray(), inferred, nil
}

func (e *TypeInferenceEngine) appendText(b array.Builder, storage dataset.StorageType, raw string) error {
	s := strings.TrimSpace(raw)
	switch storage {
	case dataset.StorageInt:
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}
		b.(*array.Int64Builder).Append(v)
	case dataset.StorageFloat:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		b.(*array.Float64Builder).Append(v)
	case dataset.StorageBool:
		v, ok := parseBool(s)
		if !ok {
			return errors.Newf(errors.ErrorTypeData, "invalid boolean %q", raw)
		}
		b.(*array.BooleanBuilder).Append(v)
	case dataset.StorageTimestamp:
		t, ok := e.ParseTimestamp(s)
		if !ok {
			return errors.Newf(errors.ErrorTypeData, "invalid timestamp %q", raw)
		}
		b.(*array.TimestampBuilder).Append(arrow.Timestamp(t.UnixNano()))
	case dataset.StorageDuration:
		d, ok := e.ParseDuration(s)
		if !ok {
			return errors.Newf(errors.ErrorTypeData, "invalid duration %q", raw)
		}
		b.(*array.DurationBuilder).Append(arrow.Duration(d))
	default:
		// strings keep their original spacing
		b.(*array.StringBuilder).Append(raw)
	}
	return nil
}

// ValuesArray builds an Arrow array from Go values that share one storage
// type. ok is false when the values are heterogeneous or of a type Arrow
// cannot hold; callers then keep them as a value column.
func ValuesArray(mem memory.Allocator, storage dataset.StorageType, values []interface{}) (arrow.Array, bool) {
	if storage == dataset.StorageNull {
		return array.NewNull(len(values)), true
	}
	dt, ok := ArrowType(storage)
	if !ok {
		return nil, false
	}

	b := array.NewBuilder(mem, dt)
	defer b.Release()
	b.Reserve(len(values))

	for _, v := range values {
		if dataset.IsNullValue(v) {
			b.AppendNull()
			continue
		}
		if !appendValue(b, storage, v) {
			return nil, false
		}
	}
	return b.NewArray(), true
}

func appendValue(b array.Builder, storage dataset.StorageType, v interface{}) bool {
	switch storage {
	case dataset.StorageInt:
		i, ok := toInt64(v)
		if ok {
			b.(*array.Int64Builder).Append(i)
		}
		return ok
	case dataset.StorageUint:
		u, ok := toUint64(v)
		if ok {
			b.(*array.Uint64Builder).Append(u)
		}
		return ok
	case dataset.StorageFloat:
		f, ok := dataset.ToFloat(v)
		if _, isBool := v.(bool); ok && !isBool {
			b.(*array.Float64Builder).Append(f)
			return true
		}
		return false
	case dataset.StorageBool:
		x, ok := v.(bool)
		if ok {
			b.(*array.BooleanBuilder).Append(x)
		}
		return ok
	case dataset.StorageString:
		s, ok := v.(string)
		if ok {
			b.(*array.StringBuilder).Append(s)
		}
		return ok
	case dataset.StorageBinary:
		x, ok := v.([]byte)
		if ok {
			b.(*array.BinaryBuilder).Append(x)
		}
		return ok
	case dataset.StorageTimestamp:
		t, ok := v.(time.Time)
		if ok {
			b.(*array.TimestampBuilder).Append(arrow.Timestamp(t.UnixNano()))
		}
		return ok
	case dataset.StorageDuration:
		d, ok := v.(time.Duration)
		if ok {
			b.(*array.DurationBuilder).Append(arrow.Duration(d))
		}
		return ok
	}
	return false
}

func toInt64(v interface{}) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	}
	return 0, false
}

func toUint64(v interface{}) (uint64, bool) {
	switch x := v.(type) {
	case uint:
		return uint64(x), true
	case uint8:
		return uint64(x), true
	case uint16:
		return uint64(x), true
	case uint32:
		return uint64(x), true
	case uint64:
		return x, true
	}
	return 0, false
}

// Column builds a dataset column from Go values, preferring Arrow storage.
// Byte slices holding valid UTF-8 are read as text. With reinfer set, text
// columns are run through text inference so that numbers, booleans and
// dates delivered as strings get their natural storage.
func (e *TypeInferenceEngine) Column(mem memory.Allocator, name string, values []interface{}, reinfer bool) (dataset.Column, error) {
	normalized := make([]interface{}, len(values))
	for i, v := range values {
		if b, ok := v.([]byte); ok && utf8.Valid(b) {
			normalized[i] = string(b)
			continue
		}
		normalized[i] = v
	}

	storage := dataset.DetectStorage(normalized)
	if reinfer && storage == dataset.StorageString {
		cells := make([]string, len(normalized))
		valid := make([]bool, len(normalized))
		for i, v := range normalized {
			if s, ok := v.(string); ok {
				cells[i], valid[i] = s, true
			}
		}
		arr, _, err := e.TextArray(mem, cells, valid)
		if err != nil {
			return nil, err
		}
		defer arr.Release()
		return dataset.NewArrowColumn(name, arr), nil
	}

	if arr, ok := ValuesArray(mem, storage, normalized); ok {
		defer arr.Release()
		return dataset.NewArrowColumn(name, arr), nil
	}
	return dataset.NewValueColumn(name, normalized), nil
}

package dataset

import (
	"time"

	"github.com/apache/arrow-go/v18/arrow"
)

// StorageType is the physical type a column's values are stored as.
type StorageType int

const (
	// StorageNull holds no typed values (empty or entirely missing columns)
	StorageNull StorageType = iota
	StorageInt
	StorageUint
	StorageFloat
	StorageBool
	StorageString
	StorageBinary
	StorageTimestamp
	StorageDuration
	// StorageObject holds heterogeneous or otherwise untyped values
	StorageObject
)

func (s StorageType) String() string {
	switch s {
	case StorageNull:
		return "null"
	case StorageInt:
		return "int"
	case StorageUint:
		return "uint"
	case StorageFloat:
		return "float"
	case StorageBool:
		return "bool"
	case StorageString:
		return "string"
	case StorageBinary:
		return "binary"
	case StorageTimestamp:
		return "timestamp"
	case StorageDuration:
		return "duration"
	case StorageObject:
		return "object"
	}
	return "unknown"
}

// IsNumeric reports whether values are stored as numbers.
func (s StorageType) IsNumeric() bool {
	return s == StorageInt || s == StorageUint || s == StorageFloat
}

// IsTemporal reports whether values are points in time or durations.
func (s StorageType) IsTemporal() bool {
	return s == StorageTimestamp || s == StorageDuration
}

// StorageOf maps an Arrow data type to its storage type.
func StorageOf(dt arrow.DataType) StorageType {
	switch dt.ID() {
	case arrow.NULL:
		return StorageNull
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64:
		return StorageInt
	case arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return StorageUint
	case arrow.FLOAT16, arrow.FLOAT32, arrow.FLOAT64:
		return StorageFloat
	case arrow.BOOL:
		return StorageBool
	case arrow.STRING, arrow.LARGE_STRING:
		return StorageString
	case arrow.BINARY, arrow.LARGE_BINARY, arrow.FIXED_SIZE_BINARY:
		return StorageBinary
	case arrow.TIMESTAMP, arrow.DATE32, arrow.DATE64:
		return StorageTimestamp
	case arrow.DURATION:
		return StorageDuration
	case arrow.DICTIONARY:
		dict := dt.(*arrow.DictionaryType)
		if StorageOf(dict.ValueType) == StorageString {
			return StorageString
		}
		return StorageObject
	default:
		return StorageObject
	}
}

// storageOfValue classifies a single Go value.
func storageOfValue(v interface{}) StorageType {
	switch v.(type) {
	case int, int8, int16, int32, int64:
		return StorageInt
	case uint, uint8, uint16, uint32, uint64:
		return StorageUint
	case float32, float64:
		return StorageFloat
	case bool:
		return StorageBool
	case string:
		return StorageString
	case []byte:
		return StorageBinary
	case time.Time:
		return StorageTimestamp
	case time.Duration:
		return StorageDuration
	default:
		return StorageObject
	}
}

// DetectStorage returns the storage type shared by all non-null values.
// Mixed integer and float values widen to float; any other mix is object.
func DetectStorage(values []interface{}) StorageType {
	storage := StorageNull
	for _, v := range values {
		if IsNullValue(v) {
			continue
		}
		s := storageOfValue(v)
		switch {
		case storage == StorageNull:
			storage = s
		case storage == s:
		case storage.IsNumeric() && s.IsNumeric():
			storage = StorageFloat
		default:
			return StorageObject
		}
	}
	return storage
}

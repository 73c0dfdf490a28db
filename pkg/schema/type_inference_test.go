package schema

import (
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/tabprofile/pkg/dataset"
)

func newEngine(t *testing.T, opts ...Option) *TypeInferenceEngine {
	t.Helper()
	return NewTypeInferenceEngine(zaptest.NewLogger(t),
		append([]Option{WithNullTokens([]string{"", "NA", "null"})}, opts...)...)
}

func TestInferType(t *testing.T) {
	e := newEngine(t)

	tests := []struct {
		name  string
		cells []string
		want  dataset.StorageType
	}{
		{"integers", []string{"1", "2", "-3"}, dataset.StorageInt},
		{"floats", []string{"1", "2.5", "1e3"}, dataset.StorageFloat},
		{"booleans", []string{"true", "False", "TRUE"}, dataset.StorageBool},
		{"dates", []string{"2024-01-01", "2024-02-29"}, dataset.StorageTimestamp},
		{"timestamps", []string{"2024-01-01T10:00:00Z", "2024-01-01 11:30:00"}, dataset.StorageTimestamp},
		{"durations", []string{"1h", "30m", "1h30m15s"}, dataset.StorageDuration},
		{"text", []string{"Alice", "Bob"}, dataset.StorageString},
		{"mixed numbers and text", []string{"1", "two"}, dataset.StorageString},
		{"nulls ignored", []string{"NA", "4", "", "null"}, dataset.StorageInt},
		{"all null", []string{"NA", ""}, dataset.StorageNull},
		{"padded integers", []string{" 1", "2 "}, dataset.StorageInt},
		{"yes no stays text", []string{"yes", "no"}, dataset.StorageString},
		{"invalid date", []string{"2024-13-45"}, dataset.StorageString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.InferType(tt.cells, e.Valid(tt.cells))
			assert.Equal(t, tt.want, got.Storage)
		})
	}
}

func TestInferTypeWithoutDates(t *testing.T) {
	e := newEngine(t, WithParseDates(false))

	got := e.InferType([]string{"2024-01-01", "1h"}, nil)
	assert.Equal(t, dataset.StorageString, got.Storage)
}

func TestTextArray(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	e := newEngine(t)

	t.Run("integers with nulls", func(t *testing.T) {
		cells := []string{"1", "NA", "3"}
		arr, inferred, err := e.TextArray(mem, cells, e.Valid(cells))
		require.NoError(t, err)
		defer arr.Release()

		assert.Equal(t, 1, inferred.NullCount)
		assert.Equal(t, 2, inferred.Candidates)
		ints := arr.(*array.Int64)
		assert.Equal(t, int64(3), ints.Value(2))
		assert.True(t, ints.IsNull(1))
	})

	t.Run("timestamps", func(t *testing.T) {
		arr, _, err := e.TextArray(mem, []string{"2024-01-01", "2024-01-02T00:00:00Z"}, nil)
		require.NoError(t, err)
		defer arr.Release()

		ts := arr.(*array.Timestamp)
		want := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
		assert.True(t, want.Equal(ts.Value(1).ToTime(arrow.Nanosecond)))
	})

	t.Run("strings keep spacing", func(t *testing.T) {
		arr, _, err := e.TextArray(mem, []string{" a", "b "}, nil)
		require.NoError(t, err)
		defer arr.Release()

		assert.Equal(t, " a", arr.(*array.String).Value(0))
	})

	t.Run("all null", func(t *testing.T) {
		arr, inferred, err := e.TextArray(mem, []string{"", "NA"}, e.Valid([]string{"", "NA"}))
		require.NoError(t, err)
		defer arr.Release()

		assert.Equal(t, dataset.StorageNull, inferred.Storage)
		assert.Equal(t, 2, arr.NullN())
	})
}

func TestColumn(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	e := newEngine(t)

	tests := []struct {
		name    string
		values  []interface{}
		reinfer bool
		want    dataset.StorageType
	}{
		{"typed ints", []interface{}{int64(1), nil, int32(3)}, false, dataset.StorageInt},
		{"bytes as text", []interface{}{[]byte("a"), []byte("b")}, false, dataset.StorageString},
		{"decimal text reinferred", []interface{}{[]byte("12.50"), "3"}, true, dataset.StorageFloat},
		{"text not reinferred", []interface{}{"12", "3"}, false, dataset.StorageString},
		{"times", []interface{}{time.Now(), nil}, false, dataset.StorageTimestamp},
		{"heterogeneous", []interface{}{"a", int64(1)}, false, dataset.StorageObject},
		{"empty", []interface{}{nil, nil}, true, dataset.StorageNull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col, err := e.Column(mem, "c", tt.values, tt.reinfer)
			require.NoError(t, err)
			defer dataset.New(col).Release()

			assert.Equal(t, tt.want, col.Storage())
			assert.Equal(t, len(tt.values), col.Len())
		})
	}
}

package profile

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ajitpratap0/tabprofile/pkg/dataset"
)

func col(name string, values ...interface{}) dataset.Column {
	return dataset.NewValueColumn(name, values)
}

func TestClassify(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		column dataset.Column
		want   Kind
	}{
		{"empty", col("c"), KindString},
		{"all null", col("c", nil, nil, math.NaN()), KindString},
		{"integers", col("c", 1, 2, 3), KindNumeric},
		{"zero one two", col("c", 0, 1, 2), KindNumeric},
		{"zero one", col("c", 0, 1, nil, 1), KindBoolean},
		{"zero one floats", col("c", 0.0, 1.0, math.NaN()), KindBoolean},
		{"constant zero", col("c", 0, 0, 0), KindBoolean},
		{"constant one", col("c", uint64(1)), KindBoolean},
		{"bools", col("c", true, false, nil), KindBoolean},
		{"timestamps", col("c", t0, nil, t0.Add(time.Hour)), KindDatetime},
		{"durations", col("c", time.Second, time.Minute), KindDatetime},
		{"strings", col("c", "a", "b"), KindString},
		{"numeric strings", col("c", "1", "2"), KindString},
		{"mixed", col("c", "a", 1, true), KindString},
		{"bytes", col("c", []byte("a")), KindString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.column))
			// classification is a pure function of the column
			assert.Equal(t, tt.want, Classify(tt.column))
		})
	}
}

func TestKindText(t *testing.T) {
	for _, k := range Kinds() {
		text, err := k.MarshalText()
		assert.NoError(t, err)

		var parsed Kind
		assert.NoError(t, parsed.UnmarshalText(text))
		assert.Equal(t, k, parsed)
	}

	_, err := ParseKind("complex")
	assert.Error(t, err)
	assert.Equal(t, "Kind(9)", Kind(9).String())
}

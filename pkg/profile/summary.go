package profile

import (
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/tabprofile/pkg/dataset"
	"github.com/ajitpratap0/tabprofile/pkg/json"
)

// Summary is the fixed-schema record computed for one column. The set of
// implementations is closed: NumericSummary, BooleanSummary, StringSummary
// and DatetimeSummary.
type Summary interface {
	// Kind is the column's kind
	Kind() Kind
	// Common returns the fields shared by every kind
	Common() Base
	// Fields lists the metrics in display order, the kind tag excluded
	Fields() []Field
	summary()
}

// Field is one named metric of a summary.
type Field struct {
	Key   string
	Value interface{}
}

// Base holds the statistics every kind reports with identical meaning.
type Base struct {
	Type           Kind    `json:"type" yaml:"type"`
	TotalCount     int     `json:"total_count" yaml:"total_count"`
	Count          int     `json:"count" yaml:"count"`
	NullCount      int     `json:"null_count" yaml:"null_count"`
	NullPercentage float64 `json:"null_percentage" yaml:"null_percentage"`
	UniqueCount    int     `json:"unique_count" yaml:"unique_count"`
	DuplicateCount int     `json:"duplicate_count" yaml:"duplicate_count"`
}

func (b Base) Kind() Kind   { return b.Type }
func (b Base) Common() Base { return b }

func (b Base) fields() []Field {
	return []Field{
		{"total_count", b.TotalCount},
		{"count", b.Count},
		{"null_count", b.NullCount},
		{"null_percentage", b.NullPercentage},
	}
}

func (b Base) distinctFields() []Field {
	return []Field{
		{"unique_count", b.UniqueCount},
		{"duplicate_count", b.DuplicateCount},
	}
}

// NumericSummary describes a numeric column. Every statistic is absent for
// a column without values; Range, Std and Variance are also absent for a
// single value.
type NumericSummary struct {
	Base     `yaml:",inline"`
	Min      Optional[dataset.Number] `json:"min" yaml:"min"`
	Max      Optional[dataset.Number] `json:"max" yaml:"max"`
	Mean     Optional[float64]        `json:"mean" yaml:"mean"`
	Median   Optional[float64]        `json:"median" yaml:"median"`
	Std      Optional[float64]        `json:"std" yaml:"std"`
	Variance Optional[float64]        `json:"variance" yaml:"variance"`
	Q1       Optional[float64]        `json:"q1" yaml:"q1"`
	Q3       Optional[float64]        `json:"q3" yaml:"q3"`
	IQR      Optional[float64]        `json:"iqr" yaml:"iqr"`
	Sum      Optional[float64]        `json:"sum" yaml:"sum"`
	Range    Optional[float64]        `json:"range" yaml:"range"`
}

func (NumericSummary) summary() {}

func (s NumericSummary) Fields() []Field {
	return append(append(s.Base.fields(), s.Base.distinctFields()...),
		Field{"min", s.Min},
		Field{"max", s.Max},
		Field{"mean", s.Mean},
		Field{"median", s.Median},
		Field{"std", s.Std},
		Field{"variance", s.Variance},
		Field{"q1", s.Q1},
		Field{"q3", s.Q3},
		Field{"iqr", s.IQR},
		Field{"sum", s.Sum},
		Field{"range", s.Range},
	)
}

// BooleanSummary describes a boolean column. Percentages are zero, not
// absent, when there are no values.
type BooleanSummary struct {
	Base            `yaml:",inline"`
	TrueCount       int     `json:"true_count" yaml:"true_count"`
	FalseCount      int     `json:"false_count" yaml:"false_count"`
	TruePercentage  float64 `json:"true_percentage" yaml:"true_percentage"`
	FalsePercentage float64 `json:"false_percentage" yaml:"false_percentage"`
}

func (BooleanSummary) summary() {}

func (s BooleanSummary) Fields() []Field {
	return append(append(s.Base.fields(), s.Base.distinctFields()...),
		Field{"true_count", s.TrueCount},
		Field{"false_count", s.FalseCount},
		Field{"true_percentage", s.TruePercentage},
		Field{"false_percentage", s.FalsePercentage},
	)
}

// StringSummary describes a textual column. Lengths count characters of the
// textual form of each value.
type StringSummary struct {
	Base           `yaml:",inline"`
	EmptyCount     int               `json:"empty_count" yaml:"empty_count"`
	MinLength      Optional[int]     `json:"min_length" yaml:"min_length"`
	MaxLength      Optional[int]     `json:"max_length" yaml:"max_length"`
	MeanLength     Optional[float64] `json:"mean_length" yaml:"mean_length"`
	TopFrequencies Frequencies       `json:"top_frequencies" yaml:"top_frequencies"`
}

func (StringSummary) summary() {}

func (s StringSummary) Fields() []Field {
	return append(append(append(s.Base.fields(),
		Field{"empty_count", s.EmptyCount}),
		s.Base.distinctFields()...),
		Field{"min_length", s.MinLength},
		Field{"max_length", s.MaxLength},
		Field{"mean_length", s.MeanLength},
		Field{"top_frequencies", s.TopFrequencies},
	)
}

// DatetimeSummary describes a column of timestamps or durations. Mean and
// Median are set only for duration columns with at least one value.
type DatetimeSummary struct {
	Base    `yaml:",inline"`
	Elapsed bool               `json:"elapsed" yaml:"elapsed"`
	Min     Optional[Temporal] `json:"min" yaml:"min"`
	Max     Optional[Temporal] `json:"max" yaml:"max"`
	Range   Optional[Temporal] `json:"range" yaml:"range"`
	Mean    *Temporal          `json:"mean,omitempty" yaml:"mean,omitempty"`
	Median  *Temporal          `json:"median,omitempty" yaml:"median,omitempty"`
}

func (DatetimeSummary) summary() {}

func (s DatetimeSummary) Fields() []Field {
	fields := append(append(s.Base.fields(), s.Base.distinctFields()...),
		Field{"elapsed", s.Elapsed},
		Field{"min", s.Min},
		Field{"max", s.Max},
		Field{"range", s.Range},
	)
	if s.Mean != nil {
		fields = append(fields, Field{"mean", *s.Mean})
	}
	if s.Median != nil {
		fields = append(fields, Field{"median", *s.Median})
	}
	return fields
}

// Frequency is one entry of a frequency table.
type Frequency struct {
	Value string
	Count int
}

// Frequencies is an ordered frequency table, most frequent first. It
// encodes as a JSON object or YAML mapping that keeps its order.
type Frequencies []Frequency

// MarshalJSON writes the entries as an ordered object.
func (f Frequencies) MarshalJSON() ([]byte, error) {
	buf := json.GetBuffer()
	defer json.PutBuffer(buf)

	buf.WriteByte('{')
	for i, e := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(e.Count))
	}
	buf.WriteByte('}')

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// MarshalYAML writes the entries as an ordered mapping.
func (f Frequencies) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range f {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Value},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(e.Count)},
		)
	}
	return node, nil
}

package profile

import (
	"math"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/ajitpratap0/tabprofile/pkg/dataset"
)

// TopN is the size of the string frequency table.
const TopN = 5

type summarizer func(c dataset.Column) Summary

// summarizers dispatches on the classified kind.
var summarizers = [numKinds]summarizer{
	KindNumeric:  summarizeNumeric,
	KindBoolean:  summarizeBoolean,
	KindString:   summarizeString,
	KindDatetime: summarizeDatetime,
}

// Summarize computes the record for a column of the given kind.
func Summarize(c dataset.Column, kind Kind) Summary {
	if kind < 0 || kind >= numKinds {
		kind = KindString
	}
	return summarizers[kind](c)
}

// newBase fills the shared counts. values are the non-null cells after any
// kind-specific coercion; distinct values are counted on them.
func newBase(kind Kind, total int, values []interface{}) Base {
	b := Base{
		Type:       kind,
		TotalCount: total,
		Count:      len(values),
		NullCount:  total - len(values),
	}
	if total > 0 {
		b.NullPercentage = float64(b.NullCount) / float64(total) * 100
	}
	b.UniqueCount = dataset.DistinctCount(values)
	b.DuplicateCount = b.Count - b.UniqueCount
	return b
}

func summarizeNumeric(c dataset.Column) Summary {
	values := dataset.NonNull(c)
	s := NumericSummary{Base: newBase(KindNumeric, c.Len(), values)}

	xs := dataset.Floats(c)
	if len(xs) == 0 {
		return s
	}

	sample := dataset.NewSample(xs)
	lo, hi, _ := dataset.MinMax(dataset.Numbers(c))
	s.Min = Some(lo)
	s.Max = Some(hi)
	s.Mean = Some(sample.Mean())
	s.Sum = Some(sample.Sum())

	q1, median, q3 := sample.Quantile(0.25), sample.Quantile(0.5), sample.Quantile(0.75)
	s.Median = Some(median)
	s.Q1 = Some(q1)
	s.Q3 = Some(q3)
	s.IQR = Some(q3 - q1)

	if sample.Len() > 1 {
		s.Std = Some(sample.StdDev())
		s.Variance = Some(sample.Variance())
		s.Range = Some(hi.Sub(lo))
	}
	return s
}

func summarizeBoolean(c dataset.Column) Summary {
	raw := dataset.NonNull(c)
	values := make([]interface{}, len(raw))
	trues := 0
	for i, v := range raw {
		b := truthy(v)
		if b {
			trues++
		}
		values[i] = b
	}

	s := BooleanSummary{
		Base:       newBase(KindBoolean, c.Len(), values),
		TrueCount:  trues,
		FalseCount: len(values) - trues,
	}
	if n := len(values); n > 0 {
		s.TruePercentage = float64(s.TrueCount) / float64(n) * 100
		s.FalsePercentage = float64(s.FalseCount) / float64(n) * 100
	}
	return s
}

// truthy coerces a cell to bool; numbers are true when non-zero.
func truthy(v interface{}) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	if f, ok := dataset.ToFloat(v); ok {
		return f != 0
	}
	return dataset.Text(v) != ""
}

func summarizeString(c dataset.Column) Summary {
	raw := dataset.NonNull(c)
	texts := make([]string, len(raw))
	values := make([]interface{}, len(raw))
	for i, v := range raw {
		texts[i] = dataset.Text(v)
		values[i] = texts[i]
	}

	s := StringSummary{
		Base:           newBase(KindString, c.Len(), values),
		TopFrequencies: topFrequencies(texts, TopN),
	}
	for _, t := range texts {
		if t == "" {
			s.EmptyCount++
		}
	}
	s.MinLength, s.MaxLength, s.MeanLength = lengthStats(texts)
	return s
}

// lengthStats measures character lengths. A failure while measuring makes
// all three statistics absent.
func lengthStats(texts []string) (minLen, maxLen Optional[int], meanLen Optional[float64]) {
	if len(texts) == 0 {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			minLen, maxLen, meanLen = None[int](), None[int](), None[float64]()
		}
	}()

	lo, hi, total := math.MaxInt, 0, 0
	for _, t := range texts {
		n := utf8.RuneCountInString(t)
		lo = min(lo, n)
		hi = max(hi, n)
		total += n
	}
	return Some(lo), Some(hi), Some(float64(total) / float64(len(texts)))
}

// topFrequencies counts values and keeps the n most frequent. Equal counts
// keep the order in which values were first seen.
func topFrequencies(texts []string, n int) Frequencies {
	index := make(map[string]int, len(texts))
	table := Frequencies{}
	for _, t := range texts {
		if i, ok := index[t]; ok {
			table[i].Count++
			continue
		}
		index[t] = len(table)
		table = append(table, Frequency{Value: t, Count: 1})
	}

	sort.SliceStable(table, func(i, j int) bool {
		return table[i].Count > table[j].Count
	})
	if len(table) > n {
		table = table[:n]
	}
	return table
}

func summarizeDatetime(c dataset.Column) Summary {
	values := dataset.NonNull(c)
	s := DatetimeSummary{
		Base:    newBase(KindDatetime, c.Len(), values),
		Elapsed: c.Storage() == dataset.StorageDuration,
	}

	if s.Elapsed {
		summarizeDurations(&s, dataset.Durations(c))
	} else {
		summarizeTimes(&s, dataset.Times(c))
	}
	return s
}

func summarizeTimes(s *DatetimeSummary, times []time.Time) {
	if len(times) == 0 {
		return
	}
	lo, hi := times[0], times[0]
	for _, t := range times[1:] {
		if t.Before(lo) {
			lo = t
		}
		if t.After(hi) {
			hi = t
		}
	}
	s.Min = Some(At(lo))
	s.Max = Some(At(hi))
	// Sub saturates past ~292 years; such a span has no Duration
	if span := hi.Sub(lo); len(times) > 1 && lo.Add(span).Equal(hi) {
		s.Range = Some(Elapsed(span))
	}
}

func summarizeDurations(s *DatetimeSummary, durations []time.Duration) {
	if len(durations) == 0 {
		return
	}
	sorted := make([]time.Duration, len(durations))
	copy(sorted, durations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	lo, hi := sorted[0], sorted[len(sorted)-1]
	s.Min = Some(Elapsed(lo))
	s.Max = Some(Elapsed(hi))
	// a negative difference means the subtraction overflowed
	if span := hi - lo; len(sorted) > 1 && span >= 0 {
		s.Range = Some(Elapsed(span))
	}

	ns := make([]float64, len(sorted))
	for i, d := range sorted {
		ns[i] = float64(d)
	}
	sample := dataset.NewSample(ns)
	mean := Elapsed(time.Duration(math.Round(sample.Mean())))
	s.Mean = &mean

	// the middle pair is averaged in integer space to stay exact
	mid := len(sorted) / 2
	median := sorted[mid]
	if len(sorted)%2 == 0 {
		a, b := sorted[mid-1], sorted[mid]
		if diff := b - a; diff >= 0 {
			median = a + diff/2
		} else {
			median = a/2 + b/2
		}
	}
	med := Elapsed(median)
	s.Median = &med
}

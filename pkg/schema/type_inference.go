// Package schema infers storage types for columns whose cells arrive as
// text (CSV fields, untyped database results) and materializes them as
// Arrow arrays.
package schema

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/tabprofile/pkg/dataset"
)

// DefaultTimestampLayouts are tried in order when parsing temporal cells.
var DefaultTimestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006",
}

// TypeInferenceEngine decides the storage type of text columns.
type TypeInferenceEngine struct {
	logger *zap.Logger

	nullTokens map[string]struct{}
	parseDates bool
	layouts    []string

	// cheap shape checks run before any layout is tried
	datePatterns      []*regexp.Regexp
	timestampPatterns []*regexp.Regexp
	durationPattern   *regexp.Regexp
}

// InferredType is the result of inferring one column.
type InferredType struct {
	Storage   dataset.StorageType
	NullCount int
	// Candidates is how many non-null cells were examined
	Candidates int
}

// Option configures a TypeInferenceEngine.
type Option func(*TypeInferenceEngine)

// WithNullTokens sets the cell texts read as missing values.
func WithNullTokens(tokens []string) Option {
	return func(e *TypeInferenceEngine) {
		e.nullTokens = make(map[string]struct{}, len(tokens))
		for _, t := range tokens {
			e.nullTokens[t] = struct{}{}
		}
	}
}

// WithParseDates enables or disables timestamp and duration detection.
func WithParseDates(enabled bool) Option {
	return func(e *TypeInferenceEngine) { e.parseDates = enabled }
}

// WithLayouts replaces the timestamp layouts.
func WithLayouts(layouts []string) Option {
	return func(e *TypeInferenceEngine) { e.layouts = layouts }
}

// NewTypeInferenceEngine creates an engine. By default only the empty cell
// is missing and dates are parsed.
func NewTypeInferenceEngine(logger *zap.Logger, opts ...Option) *TypeInferenceEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &TypeInferenceEngine{
		logger:     logger,
		nullTokens: map[string]struct{}{"": {}},
		parseDates: true,
		layouts:    DefaultTimestampLayouts,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.initializePatterns()
	return e
}

// IsNullToken reports whether a cell text denotes a missing value.
func (e *TypeInferenceEngine) IsNullToken(cell string) bool {
	_, ok := e.nullTokens[cell]
	return ok
}

// Valid marks the cells that are not null tokens.
func (e *TypeInferenceEngine) Valid(cells []string) []bool {
	valid := make([]bool, len(cells))
	for i, c := range cells {
		valid[i] = !e.IsNullToken(c)
	}
	return valid
}

type candidate uint8

const (
	candInt candidate = 1 << iota
	candFloat
	candBool
	candTimestamp
	candDuration

	candAll = candInt | candFloat | candBool | candTimestamp | candDuration
)

// InferType picks the narrowest storage every valid cell parses as, trying
// int, float, bool, timestamp and duration before falling back to string.
// A nil valid slice means every cell is valid.
func (e *TypeInferenceEngine) InferType(cells []string, valid []bool) InferredType {
	inferred := InferredType{}
	remaining := candAll
	if !e.parseDates {
		remaining &^= candTimestamp | candDuration
	}

	for i, cell := range cells {
		if valid != nil && !valid[i] {
			inferred.NullCount++
			continue
		}
		inferred.Candidates++
		remaining &= e.detectCellType(strings.TrimSpace(cell), remaining)
		if remaining == 0 {
			break
		}
	}

	switch {
	case inferred.Candidates == 0:
		inferred.Storage = dataset.StorageNull
	case remaining&candInt != 0:
		inferred.Storage = dataset.StorageInt
	case remaining&candFloat != 0:
		inferred.Storage = dataset.StorageFloat
	case remaining&candBool != 0:
		inferred.Storage = dataset.StorageBool
	case remaining&candTimestamp != 0:
		inferred.Storage = dataset.StorageTimestamp
	case remaining&candDuration != 0:
		inferred.Storage = dataset.StorageDuration
	default:
		inferred.Storage = dataset.StorageString
	}
	return inferred
}

// detectCellType returns which of the still-possible candidates the cell
// parses as.
func (e *TypeInferenceEngine) detectCellType(s string, possible candidate) candidate {
	var out candidate
	if s == "" {
		return 0
	}
	if possible&candInt != 0 && e.isInteger(s) {
		out |= candInt
	}
	if possible&candFloat != 0 && e.isFloat(s) {
		out |= candFloat
	}
	if possible&candBool != 0 && e.isBoolean(s) {
		out |= candBool
	}
	if possible&candTimestamp != 0 {
		if _, ok := e.ParseTimestamp(s); ok {
			out |= candTimestamp
		}
	}
	if possible&candDuration != 0 {
		if _, ok := e.ParseDuration(s); ok {
			out |= candDuration
		}
	}
	return out
}

func (e *TypeInferenceEngine) isBoolean(s string) bool {
	_, ok := parseBool(s)
	return ok
}

func (e *TypeInferenceEngine) isInteger(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

func (e *TypeInferenceEngine) isFloat(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// parseBool accepts true and false in any letter case.
func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// ParseTimestamp parses a cell with the configured layouts.
func (e *TypeInferenceEngine) ParseTimestamp(s string) (time.Time, bool) {
	if !e.looksTemporal(s) {
		return time.Time{}, false
	}
	for _, layout := range e.layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseDuration parses Go duration notation such as 1h30m or 250ms. A unit
// is required, so bare numbers are never durations.
func (e *TypeInferenceEngine) ParseDuration(s string) (time.Duration, bool) {
	if !e.durationPattern.MatchString(s) {
		return 0, false
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, false
	}
	return d, true
}

func (e *TypeInferenceEngine) looksTemporal(s string) bool {
	for _, pattern := range e.timestampPatterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	for _, pattern := range e.datePatterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	return false
}

// initializePatterns initializes regex patterns for format detection
func (e *TypeInferenceEngine) initializePatterns() {
	e.datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`), // YYYY-MM-DD
		regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`), // MM/DD/YYYY
		regexp.MustCompile(`^\d{4}/\d{2}/\d{2}$`), // YYYY/MM/DD
	}

	e.timestampPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}`), // ISO 8601 and SQL
		regexp.MustCompile(`^\d{4}/\d{2}/\d{2} \d{2}:\d{2}`),
		regexp.MustCompile(`^\d{2}/\d{2}/\d{4} \d{2}:\d{2}`),
	}

	e.durationPattern = regexp.MustCompile(`^[-+]?(\d+(\.\d*)?(ns|us|µs|ms|s|m|h))+$`)
}

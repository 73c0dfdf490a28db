// Package report renders profiles for people and for other programs.
//
// Lines is a pure function from a profile to display lines. WriteText,
// WriteJSON and WriteYAML write a whole profile to a stream.
package report

import (
	"bufio"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/tabprofile/pkg/errors"
	"github.com/ajitpratap0/tabprofile/pkg/json"
	"github.com/ajitpratap0/tabprofile/pkg/profile"
)

// Format is a report format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses a report format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "":
		return FormatText, nil
	}
	return "", errors.Newf(errors.ErrorTypeConfig, "unsupported report format %q", name)
}

// MaxSequence is how many elements of a sequence are shown before the rest
// is elided.
const MaxSequence = 5

var rule = strings.Repeat("=", 50)

// Lines renders every column as a block: a blank line, the column name and
// kind between two rules, then one metric per line. Nested mappings are
// indented one more level.
func Lines(p *profile.Profile) []string {
	var lines []string
	for _, col := range p.Columns() {
		lines = append(lines,
			"",
			rule,
			fmt.Sprintf("Column: %s (Type: %s)", col.Name, col.Kind),
			rule,
		)
		for _, f := range col.Summary.Fields() {
			lines = append(lines, fieldLines(f)...)
		}
	}
	return lines
}

func fieldLines(f profile.Field) []string {
	switch v := f.Value.(type) {
	case profile.Frequencies:
		lines := []string{fmt.Sprintf("  %s:", f.Key)}
		for _, e := range v {
			lines = append(lines, fmt.Sprintf("    %s: %d", e.Value, e.Count))
		}
		return lines
	case fmt.Stringer:
		return []string{fmt.Sprintf("  %s: %s", f.Key, v.String())}
	}

	rv := reflect.ValueOf(f.Value)
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() != reflect.Uint8 {
		return []string{fmt.Sprintf("  %s: %s", f.Key, sequence(rv))}
	}
	return []string{fmt.Sprintf("  %s: %s", f.Key, scalar(f.Value))}
}

// sequence formats a slice, keeping at most MaxSequence elements.
func sequence(rv reflect.Value) string {
	n := rv.Len()
	shown := n
	if shown > MaxSequence {
		shown = MaxSequence
	}
	parts := make([]string, shown)
	for i := 0; i < shown; i++ {
		parts[i] = scalar(rv.Index(i).Interface())
	}
	out := "[" + strings.Join(parts, ", ") + "]"
	if n > MaxSequence {
		out += " ... (truncated)"
	}
	return out
}

func scalar(v interface{}) string {
	switch val := v.(type) {
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// WriteText writes Lines to w.
func WriteText(w io.Writer, p *profile.Profile) error {
	bw := bufio.NewWriter(w)
	for _, line := range Lines(p) {
		if _, err := bw.WriteString(line); err != nil {
			return errors.Wrap(err, errors.ErrorTypeFile, "failed to write report")
		}
		if err := bw.WriteByte('\n'); err != nil {
			return errors.Wrap(err, errors.ErrorTypeFile, "failed to write report")
		}
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write report")
	}
	return nil
}

// WriteJSON writes the profile as one JSON object keyed by column name.
func WriteJSON(w io.Writer, p *profile.Profile, indent string) error {
	if err := json.Write(w, p, indent); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write JSON report")
	}
	return nil
}

// WriteYAML writes the profile as one YAML mapping keyed by column name.
func WriteYAML(w io.Writer, p *profile.Profile) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write YAML report")
	}
	if err := enc.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write YAML report")
	}
	return nil
}

// Write writes p in the given format.
func Write(w io.Writer, p *profile.Profile, format Format, indent string) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, p, indent)
	case FormatYAML:
		return WriteYAML(w, p)
	default:
		return WriteText(w, p)
	}
}

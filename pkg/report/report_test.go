package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/tabprofile/pkg/dataset"
	"github.com/ajitpratap0/tabprofile/pkg/errors"
	"github.com/ajitpratap0/tabprofile/pkg/json"
	"github.com/ajitpratap0/tabprofile/pkg/profile"
)

func sampleProfile(t *testing.T) *profile.Profile {
	t.Helper()
	p, err := profile.Compute(dataset.New(
		dataset.NewValueColumn("id", []interface{}{1, 2, 3, 4, 5, nil, 7, 8, 8, 10}),
		dataset.NewValueColumn("name", []interface{}{"Alice", "Bob", "Alice", nil}),
		dataset.NewValueColumn("empty", []interface{}{nil, nil}),
	))
	require.NoError(t, err)
	return p
}

func TestLines(t *testing.T) {
	lines := Lines(sampleProfile(t))

	rule := strings.Repeat("=", 50)
	require.GreaterOrEqual(t, len(lines), 4)
	assert.Equal(t, []string{"", rule, "Column: id (Type: numeric)", rule}, lines[:4])

	assert.Contains(t, lines, "  total_count: 10")
	assert.Contains(t, lines, "  null_count: 1")
	assert.Contains(t, lines, "  unique_count: 8")
	assert.Contains(t, lines, "  min: 1")
	assert.Contains(t, lines, "  max: 10")
	assert.Contains(t, lines, "Column: name (Type: string)")
	assert.Contains(t, lines, "Column: empty (Type: string)")
	assert.Contains(t, lines, "  min_length: n/a")

	// the type is in the header only
	for _, line := range lines {
		assert.False(t, strings.HasPrefix(line, "  type:"), line)
	}
}

func TestLinesNestedFrequencies(t *testing.T) {
	lines := Lines(sampleProfile(t))

	idx := -1
	for i, line := range lines {
		if line == "  top_frequencies:" {
			idx = i
			break
		}
	}
	require.NotEqual(t, -1, idx)
	assert.Equal(t, "    Alice: 2", lines[idx+1])
	assert.Equal(t, "    Bob: 1", lines[idx+2])
}

func TestLinesEmptyProfile(t *testing.T) {
	p, err := profile.Compute(dataset.New())
	require.NoError(t, err)
	assert.Empty(t, Lines(p))
}

func TestFieldLinesSequences(t *testing.T) {
	long := fieldLines(profile.Field{Key: "values", Value: []int{1, 2, 3, 4, 5, 6, 7}})
	assert.Equal(t, []string{"  values: [1, 2, 3, 4, 5] ... (truncated)"}, long)

	short := fieldLines(profile.Field{Key: "values", Value: []string{"a", "b"}})
	assert.Equal(t, []string{"  values: [a, b]"}, short)

	f := fieldLines(profile.Field{Key: "null_percentage", Value: 12.5})
	assert.Equal(t, []string{"  null_percentage: 12.5"}, f)
}

func TestWriteText(t *testing.T) {
	p := sampleProfile(t)

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, p))
	assert.Equal(t, strings.Join(Lines(p), "\n")+"\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleProfile(t), "  "))

	var decoded map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "numeric", decoded["id"]["type"])
	assert.Nil(t, decoded["empty"]["max_length"])
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, sampleProfile(t)))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "id:\n"))

	var decoded map[string]map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "string", decoded["name"]["type"])
}

func TestParseFormat(t *testing.T) {
	for name, want := range map[string]Format{
		"":     FormatText,
		"TEXT": FormatText,
		"json": FormatJSON,
		"yml":  FormatYAML,
	} {
		got, err := ParseFormat(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("html")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestWriteDispatch(t *testing.T) {
	p := sampleProfile(t)
	for _, format := range []Format{FormatText, FormatJSON, FormatYAML} {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, p, format, ""))
		assert.NotEmpty(t, buf.String(), format)
	}
}

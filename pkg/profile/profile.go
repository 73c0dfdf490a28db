package profile

import (
	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/tabprofile/pkg/json"
)

// ColumnProfile is the result for one column.
type ColumnProfile struct {
	Name    string
	Kind    Kind
	Summary Summary
}

// Profile maps column names to summaries in dataset column order. It is a
// point-in-time result and is never updated after it is built.
type Profile struct {
	columns []ColumnProfile
	index   map[string]int
}

func newProfile(columns []ColumnProfile) *Profile {
	p := &Profile{
		columns: columns,
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		p.index[c.Name] = i
	}
	return p
}

// Len returns the number of profiled columns.
func (p *Profile) Len() int { return len(p.columns) }

// Columns returns a copy of the column results in order.
func (p *Profile) Columns() []ColumnProfile {
	out := make([]ColumnProfile, len(p.columns))
	copy(out, p.columns)
	return out
}

// Names returns the column names in order.
func (p *Profile) Names() []string {
	names := make([]string, len(p.columns))
	for i, c := range p.columns {
		names[i] = c.Name
	}
	return names
}

// Get looks up a column summary by name.
func (p *Profile) Get(name string) (Summary, bool) {
	i, ok := p.index[name]
	if !ok {
		return nil, false
	}
	return p.columns[i].Summary, true
}

// MarshalJSON writes the profile as an object keyed by column name, in
// column order.
func (p *Profile) MarshalJSON() ([]byte, error) {
	buf := json.GetBuffer()
	defer json.PutBuffer(buf)

	buf.WriteByte('{')
	for i, c := range p.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(c.Summary)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// MarshalYAML writes the profile as a mapping keyed by column name, in
// column order.
func (p *Profile) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, c := range p.columns {
		value := &yaml.Node{}
		if err := value.Encode(c.Summary); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: c.Name},
			value,
		)
	}
	return node, nil
}

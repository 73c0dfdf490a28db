package source

import (
	"bufio"
	"io"
	"strings"

	"github.com/ajitpratap0/tabprofile/pkg/dataset"
	"github.com/ajitpratap0/tabprofile/pkg/errors"
	"github.com/ajitpratap0/tabprofile/pkg/json"
)

// record is one decoded JSON object with its keys in document order.
type record struct {
	keys   []string
	values map[string]interface{}
}

// readJSON reads a top-level array of objects or a stream of objects
// (NDJSON). Column order is cfg.Columns when set, otherwise the order in
// which keys first appear.
func (l *Loader) readJSON(r io.Reader) (*dataset.Dataset, error) {
	br := bufio.NewReader(r)
	array, err := startsWithArray(br)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(br)
	if array {
		if _, err := dec.Token(); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "invalid JSON array")
		}
	}

	var records []record
	for {
		if array && !dec.More() {
			break
		}
		rec, err := decodeObject(dec)
		if err == io.EOF && !array {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "invalid JSON record").
				WithDetail("record", len(records)+1)
		}
		records = append(records, rec)
	}
	return l.recordsDataset(records)
}

// startsWithArray peeks at the first non-space byte.
func startsWithArray(br *bufio.Reader) (bool, error) {
	for {
		b, err := br.Peek(1)
		if err == io.EOF {
			return false, nil
		}
		if err != nil {
			return false, errors.Wrap(err, errors.ErrorTypeFile, "failed to read JSON input")
		}
		switch b[0] {
		case ' ', '\t', '\r', '\n', 0xEF, 0xBB, 0xBF: // whitespace and BOM
			if _, err := br.ReadByte(); err != nil {
				return false, err
			}
		default:
			return b[0] == '[', nil
		}
	}
}

// decodeObject reads one object token by token so that key order survives.
func decodeObject(dec *json.Decoder) (record, error) {
	rec := record{values: make(map[string]interface{})}

	tok, err := dec.Token()
	if err != nil {
		return rec, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return rec, errors.Newf(errors.ErrorTypeData, "expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return rec, err
		}
		key, ok := tok.(string)
		if !ok {
			return rec, errors.Newf(errors.ErrorTypeData, "expected object key, got %v", tok)
		}
		var v interface{}
		if err := dec.Decode(&v); err != nil {
			return rec, err
		}
		if _, dup := rec.values[key]; !dup {
			rec.keys = append(rec.keys, key)
		}
		rec.values[key] = normalizeJSON(v)
	}
	if _, err := dec.Token(); err != nil { // closing brace
		return rec, err
	}
	return rec, nil
}

// normalizeJSON turns numbers into int64 when integral and float64
// otherwise. Nested objects and arrays are left as is.
func normalizeJSON(v interface{}) interface{} {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := n.Int64(); err == nil {
			return i
		}
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return s
}

// recordsDataset pivots records into columns.
func (l *Loader) recordsDataset(records []record) (*dataset.Dataset, error) {
	names := l.cfg.Columns
	if len(names) == 0 {
		seen := make(map[string]struct{})
		for _, rec := range records {
			for _, k := range rec.keys {
				if _, ok := seen[k]; !ok {
					seen[k] = struct{}{}
					names = append(names, k)
				}
			}
		}
	}

	columns := make([]dataset.Column, len(names))
	for j, name := range names {
		values := make([]interface{}, len(records))
		for i, rec := range records {
			values[i] = rec.values[name]
		}
		col, err := l.infer.Column(l.mem, name, values, false)
		if err != nil {
			releaseColumns(columns[:j])
			return nil, err
		}
		columns[j] = col
	}
	return dataset.New(columns...), nil
}

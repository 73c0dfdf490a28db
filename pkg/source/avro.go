package source

import (
	"io"
	"math/big"

	"github.com/linkedin/goavro/v2"

	"github.com/ajitpratap0/tabprofile/pkg/dataset"
	"github.com/ajitpratap0/tabprofile/pkg/errors"
	"github.com/ajitpratap0/tabprofile/pkg/json"
)

type avroSchema struct {
	Type   interface{} `json:"type"`
	Fields []struct {
		Name string      `json:"name"`
		Type interface{} `json:"type"`
	} `json:"fields"`
}

// readAvro reads an Avro object container file. Columns follow the writer
// schema's field order; nullable unions are unwrapped to their value.
func (l *Loader) readAvro(r io.Reader) (*dataset.Dataset, error) {
	ocf, err := goavro.NewOCFReader(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to create Avro reader")
	}

	var sc avroSchema
	if err := json.Unmarshal([]byte(ocf.Codec().Schema()), &sc); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "invalid Avro schema")
	}
	if sc.Type != "record" {
		return nil, errors.Newf(errors.ErrorTypeCapability, "Avro schema must be a record, got %v", sc.Type)
	}

	records := make([]record, 0)
	for ocf.Scan() {
		datum, err := ocf.Read()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to read Avro record").
				WithDetail("record", len(records)+1)
		}
		native, ok := datum.(map[string]interface{})
		if !ok {
			return nil, errors.Newf(errors.ErrorTypeData, "unexpected Avro datum %T", datum)
		}

		rec := record{values: make(map[string]interface{}, len(sc.Fields))}
		for _, f := range sc.Fields {
			rec.keys = append(rec.keys, f.Name)
			v := native[f.Name]
			if _, union := f.Type.([]interface{}); union {
				v = unwrapUnion(v)
			}
			rec.values[f.Name] = normalizeAvro(v)
		}
		records = append(records, rec)
	}
	if err := ocf.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to scan Avro file")
	}

	ds, err := l.recordsDataset(records)
	if err != nil {
		return nil, err
	}
	// an empty file still has the schema's columns
	if len(records) == 0 && len(l.cfg.Columns) == 0 {
		ds.Release()
		columns := make([]dataset.Column, len(sc.Fields))
		for j, f := range sc.Fields {
			columns[j] = dataset.NewValueColumn(f.Name, nil)
		}
		return dataset.New(columns...), nil
	}
	return ds, nil
}

// unwrapUnion turns goavro's {"type": value} union encoding into value.
func unwrapUnion(v interface{}) interface{} {
	m, ok := v.(map[string]interface{})
	if !ok || len(m) != 1 {
		return v
	}
	for _, inner := range m {
		return inner
	}
	return v
}

func normalizeAvro(v interface{}) interface{} {
	switch x := v.(type) {
	case *big.Rat:
		f, _ := x.Float64()
		return f
	case int32:
		return int64(x)
	case float32:
		return float64(x)
	}
	return v
}

package source

import (
	"bytes"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/linkedin/goavro/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tabprofile/pkg/compression"
	"github.com/ajitpratap0/tabprofile/pkg/config"
	"github.com/ajitpratap0/tabprofile/pkg/dataset"
	"github.com/ajitpratap0/tabprofile/pkg/errors"
	"github.com/ajitpratap0/tabprofile/pkg/profile"
	"github.com/ajitpratap0/tabprofile/pkg/testutil"
)

func sourceConfig(path string) config.SourceConfig {
	cfg := config.Default().Source
	cfg.Path = path
	return cfg
}

func load(t *testing.T, cfg config.SourceConfig, opts ...Option) *dataset.Dataset {
	t.Helper()
	ds, err := NewLoader(cfg, append([]Option{WithLogger(testutil.TestLogger(t))}, opts...)...).
		Load(testutil.TestContext(t))
	require.NoError(t, err)
	t.Cleanup(ds.Release)
	return ds
}

// kinds classifies every column of ds by name.
func kinds(ds *dataset.Dataset) map[string]profile.Kind {
	out := make(map[string]profile.Kind, ds.NumColumns())
	for _, c := range ds.Columns() {
		out[c.Name()] = profile.Classify(c)
	}
	return out
}

const peopleCSV = `id,name,score,active,joined,wait
1,Alice,9.5,true,2024-01-01,1h
2,Bob,NA,false,2024-01-02,30m
3,,7.25,TRUE,,45s
`

func TestLoadCSV(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	ds, err := NewLoader(sourceConfig(testutil.WriteFile(t, "people.csv", []byte(peopleCSV))),
		WithAllocator(mem)).Load(testutil.TestContext(t))
	require.NoError(t, err)
	defer ds.Release()

	assert.Equal(t, []string{"id", "name", "score", "active", "joined", "wait"}, ds.Names())
	assert.Equal(t, 3, ds.NumRows())

	storages := make(map[string]dataset.StorageType)
	for _, c := range ds.Columns() {
		storages[c.Name()] = c.Storage()
	}
	assert.Equal(t, dataset.StorageInt, storages["id"])
	assert.Equal(t, dataset.StorageString, storages["name"])
	assert.Equal(t, dataset.StorageFloat, storages["score"])
	assert.Equal(t, dataset.StorageBool, storages["active"])
	assert.Equal(t, dataset.StorageTimestamp, storages["joined"])
	assert.Equal(t, dataset.StorageDuration, storages["wait"])

	score, _ := ds.ColumnByName("score")
	assert.Equal(t, 1, dataset.NullCount(score))
	name, _ := ds.ColumnByName("name")
	assert.True(t, name.IsNull(2))
}

func TestLoadCSVNoHeaderRagged(t *testing.T) {
	cfg := sourceConfig(testutil.WriteFile(t, "rows.csv", []byte("1;a\n2;b;x\n3\n")))
	cfg.NoHeader = true
	cfg.Delimiter = ";"

	ds := load(t, cfg)
	assert.Equal(t, []string{"column_1", "column_2", "column_3"}, ds.Names())
	assert.Equal(t, 3, ds.NumRows())

	third, _ := ds.ColumnByName("column_3")
	assert.Equal(t, 2, dataset.NullCount(third))
	assert.Equal(t, "x", third.Value(1))
}

func TestLoadCSVCustomNulls(t *testing.T) {
	cfg := sourceConfig(testutil.WriteFile(t, "nulls.csv", []byte("v\n-\n4\n5\n")))
	cfg.NullValues = []string{"-"}

	ds := load(t, cfg)
	assert.Equal(t, dataset.StorageInt, ds.Column(0).Storage())
	assert.Equal(t, 1, dataset.NullCount(ds.Column(0)))
}

func TestLoadTSVByExtension(t *testing.T) {
	ds := load(t, sourceConfig(testutil.WriteFile(t, "data.tsv", []byte("a\tb\n1\tx\n"))))
	assert.Equal(t, []string{"a", "b"}, ds.Names())
}

func TestLoadCompressedCSV(t *testing.T) {
	for _, alg := range []compression.Algorithm{compression.Gzip, compression.Zstd, compression.LZ4} {
		t.Run(string(alg), func(t *testing.T) {
			var buf bytes.Buffer
			w, err := compression.NewWriter(&buf, alg, compression.Default)
			require.NoError(t, err)
			_, err = w.Write([]byte(peopleCSV))
			require.NoError(t, err)
			require.NoError(t, w.Close())

			ds := load(t, sourceConfig(testutil.WriteFile(t, "people.csv"+compression.Extension(alg), buf.Bytes())))
			assert.Equal(t, 3, ds.NumRows())
			assert.Equal(t, profile.KindNumeric, kinds(ds)["id"])
		})
	}
}

func TestLoadJSON(t *testing.T) {
	tests := []struct {
		name string
		file string
		data string
	}{
		{"array", "rows.json", `[{"id": 1, "tag": "a", "ok": true}, {"tag": "b", "id": 2, "extra": 1.5}]`},
		{"ndjson", "rows.ndjson", "{\"id\": 1, \"tag\": \"a\", \"ok\": true}\n{\"tag\": \"b\", \"id\": 2, \"extra\": 1.5}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := load(t, sourceConfig(testutil.WriteFile(t, tt.file, []byte(tt.data))))
			assert.Equal(t, []string{"id", "tag", "ok", "extra"}, ds.Names())
			assert.Equal(t, 2, ds.NumRows())

			id, _ := ds.ColumnByName("id")
			assert.Equal(t, dataset.StorageInt, id.Storage())
			ok, _ := ds.ColumnByName("ok")
			assert.True(t, ok.IsNull(1))
			extra, _ := ds.ColumnByName("extra")
			assert.Equal(t, dataset.StorageFloat, extra.Storage())
		})
	}
}

func TestLoadJSONExplicitColumnsAndObjects(t *testing.T) {
	cfg := sourceConfig(testutil.WriteFile(t, "rows.json",
		[]byte(`[{"a": 1, "b": {"x": 1}, "c": "z"}, {"a": 2, "b": [1, 2], "c": "y"}]`)))
	cfg.Columns = []string{"c", "b"}

	ds := load(t, cfg)
	assert.Equal(t, []string{"c", "b"}, ds.Names())
	b, _ := ds.ColumnByName("b")
	assert.Equal(t, dataset.StorageObject, b.Storage())
	assert.Equal(t, profile.KindString, profile.Classify(b))
}

func TestLoadJSONInvalid(t *testing.T) {
	_, err := NewLoader(sourceConfig(testutil.WriteFile(t, "bad.json", []byte(`[{"a": 1}, 3]`)))).
		Load(testutil.TestContext(t))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeData))
}

func sampleRecord(mem memory.Allocator) arrow.Record {
	sc := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "score", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: "name", Type: arrow.BinaryTypes.String},
		{Name: "flag", Type: arrow.FixedWidthTypes.Boolean},
		{Name: "at", Type: &arrow.TimestampType{Unit: arrow.Millisecond, TimeZone: "UTC"}},
	}, nil)

	b := array.NewRecordBuilder(mem, sc)
	defer b.Release()
	b.Field(0).(*array.Int64Builder).AppendValues([]int64{1, 2, 3}, nil)
	b.Field(1).(*array.Float64Builder).AppendValues([]float64{1.5, 0, 2.5}, []bool{true, false, true})
	b.Field(2).(*array.StringBuilder).AppendValues([]string{"a", "b", "a"}, nil)
	b.Field(3).(*array.BooleanBuilder).AppendValues([]bool{true, false, true}, nil)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		b.Field(4).(*array.TimestampBuilder).Append(arrow.Timestamp(start.Add(time.Duration(i) * time.Hour).UnixMilli()))
	}
	return b.NewRecord()
}

var sampleKinds = map[string]profile.Kind{
	"id":    profile.KindNumeric,
	"score": profile.KindNumeric,
	"name":  profile.KindString,
	"flag":  profile.KindBoolean,
	"at":    profile.KindDatetime,
}

func TestLoadParquet(t *testing.T) {
	mem := memory.NewGoAllocator()
	rec := sampleRecord(mem)
	defer rec.Release()
	tbl := array.NewTableFromRecords(rec.Schema(), []arrow.Record{rec})
	defer tbl.Release()

	var buf bytes.Buffer
	require.NoError(t, pqarrow.WriteTable(tbl, &buf, 1024,
		parquet.NewWriterProperties(), pqarrow.DefaultWriterProps()))

	ds := load(t, sourceConfig(testutil.WriteFile(t, "sample.parquet", buf.Bytes())))
	assert.Equal(t, 3, ds.NumRows())
	assert.Equal(t, sampleKinds, kinds(ds))

	score, _ := ds.ColumnByName("score")
	assert.Equal(t, 1, dataset.NullCount(score))
}

func TestLoadCompressedParquet(t *testing.T) {
	mem := memory.NewGoAllocator()
	rec := sampleRecord(mem)
	defer rec.Release()
	tbl := array.NewTableFromRecords(rec.Schema(), []arrow.Record{rec})
	defer tbl.Release()

	var raw bytes.Buffer
	require.NoError(t, pqarrow.WriteTable(tbl, &raw, 1024,
		parquet.NewWriterProperties(), pqarrow.DefaultWriterProps()))

	var buf bytes.Buffer
	w, err := compression.NewWriter(&buf, compression.Zstd, compression.Default)
	require.NoError(t, err)
	_, err = w.Write(raw.Bytes())
	require.NoError(t, err)
	require.NoError(t, w.Close())

	ds := load(t, sourceConfig(testutil.WriteFile(t, "sample.parquet"+compression.Extension(compression.Zstd), buf.Bytes())))
	assert.Equal(t, 3, ds.NumRows())
	assert.Equal(t, sampleKinds, kinds(ds))
}

func TestLoadEmptyParquet(t *testing.T) {
	_, err := NewLoader(sourceConfig(testutil.WriteFile(t, "empty.parquet", nil))).
		Load(testutil.TestContext(t))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeData))
}

func TestLoadArrowIPC(t *testing.T) {
	mem := memory.NewGoAllocator()
	rec := sampleRecord(mem)
	defer rec.Release()

	var buf bytes.Buffer
	w, err := ipc.NewFileWriter(&buf, ipc.WithSchema(rec.Schema()), ipc.WithAllocator(mem))
	require.NoError(t, err)
	require.NoError(t, w.Write(rec))
	require.NoError(t, w.Write(rec))
	require.NoError(t, w.Close())

	ds := load(t, sourceConfig(testutil.WriteFile(t, "sample.arrow", buf.Bytes())))
	assert.Equal(t, 6, ds.NumRows())
	assert.Equal(t, sampleKinds, kinds(ds))
}

func TestLoadArrowStream(t *testing.T) {
	mem := memory.NewGoAllocator()
	rec := sampleRecord(mem)
	defer rec.Release()

	var buf bytes.Buffer
	w := ipc.NewWriter(&buf, ipc.WithSchema(rec.Schema()), ipc.WithAllocator(mem))
	require.NoError(t, w.Write(rec))
	require.NoError(t, w.Close())

	ds := load(t, sourceConfig(testutil.WriteFile(t, "sample.ipc", buf.Bytes())))
	assert.Equal(t, 3, ds.NumRows())
}

func TestLoadAvro(t *testing.T) {
	schemaJSON := `{
		"type": "record",
		"name": "person",
		"fields": [
			{"name": "id", "type": "long"},
			{"name": "name", "type": ["null", "string"]},
			{"name": "score", "type": "double"},
			{"name": "member", "type": "boolean"}
		]
	}`

	var buf bytes.Buffer
	w, err := goavro.NewOCFWriter(goavro.OCFConfig{W: &buf, Schema: schemaJSON})
	require.NoError(t, err)
	require.NoError(t, w.Append([]interface{}{
		map[string]interface{}{"id": int64(1), "name": goavro.Union("string", "Alice"), "score": 9.5, "member": true},
		map[string]interface{}{"id": int64(2), "name": nil, "score": 7.0, "member": false},
		map[string]interface{}{"id": int64(3), "name": goavro.Union("string", "Bob"), "score": 8.0, "member": true},
	}))

	ds := load(t, sourceConfig(testutil.WriteFile(t, "people.avro", buf.Bytes())))
	assert.Equal(t, []string{"id", "name", "score", "member"}, ds.Names())

	name, _ := ds.ColumnByName("name")
	assert.Equal(t, dataset.StorageString, name.Storage())
	assert.Equal(t, "Alice", name.Value(0))
	assert.True(t, name.IsNull(1))

	assert.Equal(t, map[string]profile.Kind{
		"id":     profile.KindNumeric,
		"name":   profile.KindString,
		"score":  profile.KindNumeric,
		"member": profile.KindBoolean,
	}, kinds(ds))
}

func TestLoadSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "people.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE people (
		id INTEGER, name TEXT, code TEXT, score REAL, active BOOLEAN, joined DATETIME)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO people VALUES
		(1, 'Alice', '001', 9.5, 1, '2024-01-01 10:00:00'),
		(2, 'Bob', '002', NULL, 0, '2024-01-02 10:00:00'),
		(3, 'Carol', '003', 7.25, 1, NULL),
		(4, 'Dan', '004', 6.0, 0, '2024-01-04 10:00:00')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	cfg := sourceConfig("")
	cfg.Driver = "sqlite"
	cfg.DSN = path
	cfg.Query = "SELECT id, name, code, score, active, joined, score * 2 AS doubled FROM people ORDER BY id"
	cfg.Limit = 3

	ds := load(t, cfg)
	assert.Equal(t, 3, ds.NumRows())
	assert.Equal(t, map[string]profile.Kind{
		"id":      profile.KindNumeric,
		"name":    profile.KindString,
		"code":    profile.KindString,
		"score":   profile.KindNumeric,
		"active":  profile.KindBoolean,
		"joined":  profile.KindDatetime,
		"doubled": profile.KindNumeric,
	}, kinds(ds))

	code, _ := ds.ColumnByName("code")
	assert.Equal(t, "001", code.Value(0))
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.SourceConfig
		want errors.ErrorType
	}{
		{"missing file", sourceConfig(filepath.Join(t.TempDir(), "nope.csv")), errors.ErrorTypeNotFound},
		{"bzip2", sourceConfig("data.csv.bz2"), errors.ErrorTypeCapability},
		{"unknown extension", sourceConfig("data.xlsx"), errors.ErrorTypeCapability},
		{"bad driver", config.SourceConfig{Driver: "oracle", DSN: "x", Query: "y"}, errors.ErrorTypeCapability},
		{"bad s3 uri", sourceConfig("s3://bucket-only.csv"), errors.ErrorTypeConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader(tt.cfg).Load(testutil.TestContext(t))
			require.Error(t, err)
			assert.Equal(t, tt.want, errors.TypeOf(err))
		})
	}
}

func TestFormats(t *testing.T) {
	f, err := ParseFormat("NDJSON")
	require.NoError(t, err)
	assert.Equal(t, FormatNDJSON, f)

	f, err = DetectFormat("dir/events.feather")
	require.NoError(t, err)
	assert.Equal(t, FormatArrow, f)

	assert.Equal(t, "parquet", NewLoader(sourceConfig("x.parquet.zst")).Label())
	assert.Equal(t, "sql", NewLoader(config.SourceConfig{Driver: "pgx"}).Label())
	assert.Equal(t, "mongodb", NewLoader(config.SourceConfig{MongoURI: "mongodb://localhost"}).Label())
}

func TestSplitURI(t *testing.T) {
	bucket, key, err := SplitURI("s3://data/raw/2024/people.csv.gz")
	require.NoError(t, err)
	assert.Equal(t, "data", bucket)
	assert.Equal(t, "raw/2024/people.csv.gz", key)

	_, _, err = SplitURI("gs://bucket")
	assert.Error(t, err)
	_, _, err = SplitURI("bucket/key")
	assert.Error(t, err)
}

func TestIsTextType(t *testing.T) {
	assert.True(t, isTextType("VARCHAR"))
	assert.True(t, isTextType("text"))
	assert.True(t, isTextType("NVARCHAR2"))
	assert.False(t, isTextType("DECIMAL"))
	assert.False(t, isTextType(""))
}

func TestBSONValue(t *testing.T) {
	doc := documentRecord(nil)
	assert.Empty(t, doc.keys)

	assert.Equal(t, int64(7), bsonValue(int32(7)))
	assert.Nil(t, bsonValue(nil))
}

package runner

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ajitpratap0/tabprofile/pkg/compression"
	"github.com/ajitpratap0/tabprofile/pkg/config"
	"github.com/ajitpratap0/tabprofile/pkg/errors"
	"github.com/ajitpratap0/tabprofile/pkg/json"
	"github.com/ajitpratap0/tabprofile/pkg/profile"
	"github.com/ajitpratap0/tabprofile/pkg/testutil"
)

const peopleCSV = `id,name,active,joined
1,Alice,true,2024-01-01
2,Bob,false,2024-01-02
3,Alice,true,
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Source.Path = testutil.WriteFile(t, "people.csv", []byte(peopleCSV))
	return cfg
}

func TestRunTextToStdout(t *testing.T) {
	cfg := testConfig(t)

	var out bytes.Buffer
	p, err := New(cfg, WithLogger(testutil.TestLogger(t)), WithStdout(&out)).Run(testutil.TestContext(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name", "active", "joined"}, p.Names())
	assert.Contains(t, out.String(), "Column: active (Type: boolean)")
	assert.Contains(t, out.String(), "Column: joined (Type: datetime)")
}

func TestRunCompressedJSONWithMetrics(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	cfg.Output.Format = "json"
	cfg.Output.Path = filepath.Join(dir, "report.json.gz")
	cfg.Profiling.Workers = 4
	cfg.Metrics.Enabled = true
	cfg.Metrics.TextfilePath = filepath.Join(dir, "tabprofile.prom")

	_, err := Run(testutil.TestContext(t), cfg, testutil.TestLogger(t))
	require.NoError(t, err)

	f, err := os.Open(cfg.Output.Path)
	require.NoError(t, err)
	defer f.Close()
	r, err := compression.NewReader(f, compression.Gzip)
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)

	var decoded map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "numeric", decoded["id"]["type"])
	assert.Equal(t, "string", decoded["name"]["type"])

	prom, err := os.ReadFile(cfg.Metrics.TextfilePath)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `tabprofile_columns_profiled_total{kind="boolean"} 1`)
	assert.Contains(t, string(prom), `tabprofile_datasets_loaded_total{format="csv",status="success"} 1`)
}

func TestRunWithTracing(t *testing.T) {
	cfg := testConfig(t)
	cfg.Tracing.Enabled = true

	var spans bytes.Buffer
	_, err := New(cfg, WithStdout(io.Discard), WithTraceWriter(&spans), WithVersion("test")).
		Run(testutil.TestContext(t))
	require.NoError(t, err)

	out := spans.String()
	assert.True(t, strings.Contains(out, "source.Load"))
	assert.True(t, strings.Contains(out, "profile.Column"))
}

func TestRunMissingSource(t *testing.T) {
	cfg := config.Default()
	cfg.Source.Path = filepath.Join(t.TempDir(), "missing.csv")

	_, err := New(cfg, WithStdout(io.Discard)).Run(testutil.TestContext(t))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
}

func TestRunDuplicateColumns(t *testing.T) {
	cfg := config.Default()
	cfg.Source.Path = testutil.WriteFile(t, "dup.csv", []byte("a,a\n1,2\n"))

	_, err := New(cfg, WithStdout(io.Discard)).Run(testutil.TestContext(t))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestRunYAMLFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.Format = "yaml"
	cfg.Output.Path = filepath.Join(t.TempDir(), "report.yaml")

	p, err := New(cfg).Run(testutil.TestContext(t))
	require.NoError(t, err)

	data, err := os.ReadFile(cfg.Output.Path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "id:\n"))

	summary, ok := p.Get("active")
	require.True(t, ok)
	assert.Equal(t, profile.KindBoolean, summary.Kind())
}

func TestResourceMonitor(t *testing.T) {
	usage := NewResourceMonitor().Usage()
	assert.Greater(t, usage.GoroutineCount, 0)
	assert.Greater(t, usage.HeapAlloc, uint64(0))
	assert.Len(t, usage.Fields(), 5)
}

func TestRunLogsCarryRunContext(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	_, err := New(testConfig(t), WithLogger(zap.New(core)), WithStdout(io.Discard)).
		Run(testutil.TestContext(t))
	require.NoError(t, err)

	loaded := logs.FilterMessage("dataset loaded").All()
	require.Len(t, loaded, 1)
	fields := loaded[0].ContextMap()
	assert.Equal(t, "csv", fields["source"])
	runID, ok := fields["run_id"].(string)
	require.True(t, ok)
	assert.NotEmpty(t, runID)

	completed := logs.FilterMessage("run completed").All()
	require.Len(t, completed, 1)
	assert.Equal(t, runID, completed[0].ContextMap()["run_id"])
}

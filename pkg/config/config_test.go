package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tabprofile/pkg/errors"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"path source", func(c *Config) { c.Source.Path = "a.csv" }, true},
		{"missing source", func(c *Config) {}, false},
		{"sql without query", func(c *Config) { c.Source.Driver = "pgx"; c.Source.DSN = "postgres://x" }, false},
		{"sql source", func(c *Config) {
			c.Source.Driver = "sqlite3"
			c.Source.DSN = ":memory:"
			c.Source.Query = "SELECT 1"
		}, true},
		{"mongo without collection", func(c *Config) { c.Source.MongoURI = "mongodb://localhost"; c.Source.Database = "db" }, false},
		{"bad output format", func(c *Config) { c.Source.Path = "a.csv"; c.Output.Format = "xml" }, false},
		{"tab delimiter", func(c *Config) { c.Source.Path = "a.tsv"; c.Source.Delimiter = `\t` }, true},
		{"long delimiter", func(c *Config) { c.Source.Path = "a.csv"; c.Source.Delimiter = "::" }, false},
		{"negative workers", func(c *Config) { c.Source.Path = "a.csv"; c.Profiling.Workers = -1 }, false},
		{"bad sample rate", func(c *Config) { c.Source.Path = "a.csv"; c.Tracing.SampleRate = 2 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
		})
	}
}

func TestLoadFileSubstitutesEnv(t *testing.T) {
	t.Setenv("TABPROFILE_TEST_DSN", "file:test.db")

	path := filepath.Join(t.TempDir(), "profile.yaml")
	content := `
source:
  driver: sqlite3
  dsn: ${TABPROFILE_TEST_DSN}
  query: SELECT * FROM people
profiling:
  workers: 4
output:
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "file:test.db", cfg.Source.DSN)
	assert.Equal(t, 4, cfg.Profiling.Workers)
	assert.Equal(t, "json", cfg.Output.Format)
	// untouched sections keep defaults
	assert.Equal(t, ",", cfg.Source.Delimiter)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestOverlay(t *testing.T) {
	t.Setenv("TABPROFILE_WORKERS", "8")

	v := NewViper()
	v.Set("format", "yaml")
	v.Set("metrics-textfile", "/tmp/tabprofile.prom")

	cfg := Default()
	cfg.Source.Path = "a.csv"
	cfg.Overlay(v)

	assert.Equal(t, 8, cfg.Profiling.Workers)
	assert.Equal(t, "yaml", cfg.Output.Format)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "a.csv", cfg.Source.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestDelimiterRune(t *testing.T) {
	s := SourceConfig{Delimiter: `\t`}
	assert.Equal(t, '\t', s.DelimiterRune())
	s.Delimiter = ";"
	assert.Equal(t, ';', s.DelimiterRune())
	s.Delimiter = ""
	assert.Equal(t, ',', s.DelimiterRune())
}

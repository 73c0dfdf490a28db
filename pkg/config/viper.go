package config

import (
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. TABPROFILE_WORKERS.
const EnvPrefix = "TABPROFILE"

// NewViper returns a viper instance reading TABPROFILE_* variables, with
// dashes in keys mapped to underscores.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// Overlay copies every key explicitly set in v (by flag or environment) onto
// the configuration. Unset keys leave file or default values untouched.
func (c *Config) Overlay(v *viper.Viper) {
	str := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	boolean := func(key string, dst *bool) {
		if v.IsSet(key) {
			*dst = v.GetBool(key)
		}
	}
	list := func(key string, dst *[]string) {
		if v.IsSet(key) {
			*dst = v.GetStringSlice(key)
		}
	}

	str("log-level", &c.Logging.Level)
	str("log-encoding", &c.Logging.Encoding)

	str("source-format", &c.Source.Format)
	str("compression", &c.Source.Compression)
	str("delimiter", &c.Source.Delimiter)
	boolean("no-header", &c.Source.NoHeader)
	list("null-values", &c.Source.NullValues)
	boolean("parse-dates", &c.Source.ParseDates)
	list("columns", &c.Source.Columns)
	str("driver", &c.Source.Driver)
	str("dsn", &c.Source.DSN)
	str("query", &c.Source.Query)
	str("mongo-uri", &c.Source.MongoURI)
	str("database", &c.Source.Database)
	str("collection", &c.Source.Collection)
	str("region", &c.Source.Region)
	str("endpoint", &c.Source.Endpoint)
	str("credentials-file", &c.Source.CredentialsFile)
	if v.IsSet("limit") {
		c.Source.Limit = v.GetInt64("limit")
	}
	if v.IsSet("timeout") {
		c.Source.Timeout = v.GetDuration("timeout")
	}

	if v.IsSet("workers") {
		c.Profiling.Workers = v.GetInt("workers")
	}

	str("format", &c.Output.Format)
	str("output", &c.Output.Path)
	str("output-compression", &c.Output.Compression)

	boolean("metrics", &c.Metrics.Enabled)
	str("metrics-textfile", &c.Metrics.TextfilePath)
	if c.Metrics.TextfilePath != "" {
		c.Metrics.Enabled = true
	}

	boolean("trace", &c.Tracing.Enabled)
}

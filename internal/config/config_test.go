package config

import (
	"os"
	"path/filepath"
	"testing"

	_ "github.com/leapstack-labs/sqllineage/pkg/dialects" // register dialects
	"github.com/leapstack-labs/sqllineage/pkg/lineage"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("dialect", "", "")
	fs.String("default-db", "", "")
	fs.String("env", "", "")
	fs.Int("workers", 0, "")
	fs.String("output", "", "")
	fs.String("catalog", "", "")
	fs.StringSlice("catalog-schema", nil, "")
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Empty(t, cfg.File)
	assert.Equal(t, DefaultDialect, cfg.Dialect)
	assert.Equal(t, lineage.DefaultEnvironment, cfg.Environment)
	assert.Equal(t, lineage.DefaultNamespace, cfg.Namespace)
	assert.Equal(t, OutputAuto, cfg.Output)
	assert.Equal(t, lineage.DefaultPenalties(), cfg.Penalties)
	assert.False(t, cfg.Catalog.Enabled())
}

func TestLoad_FileDiscovered(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir, "sqllineage.yml", `
dialect: snowflake
default_db: analytics
default_schema: public
penalties:
  unresolved_wildcard_penalty: 0.5
catalog:
  file: schema.yaml
`)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "sqllineage.yml", cfg.File)
	assert.Equal(t, "snowflake", cfg.Dialect)
	assert.Equal(t, "analytics", cfg.DefaultDB)
	assert.Equal(t, "public", cfg.DefaultSchema)
	assert.InDelta(t, 0.5, cfg.Penalties.UnresolvedWildcard, 1e-9)
	assert.InDelta(t, 0.8, cfg.Penalties.EmptyUpstream, 1e-9)
	assert.Equal(t, "schema.yaml", cfg.Catalog.File)
	assert.True(t, cfg.Catalog.Enabled())

	opts := cfg.LineageOptions()
	assert.Equal(t, "snowflake", opts.Dialect)
	assert.Equal(t, "analytics", opts.DefaultDB)
	assert.InDelta(t, 0.5, opts.Penalties.UnresolvedWildcard, 1e-9)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := writeFile(t, dir, "custom.yaml", `
dialect: postgres
default_db: from_file
workers: 2
output: json
`)
	t.Setenv("SQLLINEAGE_DEFAULT_DB", "from_env")
	t.Setenv("SQLLINEAGE_WORKERS", "3")
	t.Setenv("SQLLINEAGE_PENALTIES__AMBIGUOUS_COLUMN_PENALTY", "0.05")
	t.Setenv("SQLLINEAGE_CATALOG__SCHEMAS", "public,staging")

	flags := testFlags()
	require.NoError(t, flags.Parse([]string{"--workers", "8", "--env", "dev"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.File)
	assert.Equal(t, "postgres", cfg.Dialect)   // file
	assert.Equal(t, "from_env", cfg.DefaultDB) // env over file
	assert.Equal(t, 8, cfg.Workers)            // flag over env
	assert.Equal(t, "dev", cfg.Environment)    // --env maps to environment
	assert.Equal(t, OutputJSON, cfg.Output)
	assert.InDelta(t, 0.05, cfg.Penalties.AmbiguousColumn, 1e-9)
	assert.Equal(t, []string{"public", "staging"}, cfg.Catalog.Schemas)
}

func TestLoad_UnchangedFlagsIgnored(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir, "sqllineage.yaml", "dialect: duckdb\n")

	flags := testFlags()
	require.NoError(t, flags.Parse([]string{"--catalog", "cols.yaml"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "duckdb", cfg.Dialect)
	assert.Equal(t, "cols.yaml", cfg.Catalog.File)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	_, err := Load(filepath.Join(dir, "missing.yaml"), nil)
	assert.ErrorContains(t, err, "config file")

	bad := writeFile(t, dir, "bad.yaml", "dialect: [unclosed\n")
	_, err = Load(bad, nil)
	assert.ErrorContains(t, err, "error reading config file")

	unknown := writeFile(t, dir, "unknown.yaml", "dialect: cobol\n")
	_, err = Load(unknown, nil)
	assert.ErrorContains(t, err, `unknown dialect "cobol"`)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{Dialect: "ansi", Output: OutputAuto, Penalties: lineage.DefaultPenalties()}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "no dialect", mutate: func(c *Config) { c.Dialect = "" }, wantErr: "dialect is required"},
		{name: "negative workers", mutate: func(c *Config) { c.Workers = -1 }, wantErr: "workers must not be negative"},
		{name: "penalty above one", mutate: func(c *Config) { c.Penalties.EmptyUpstream = 1.5 }, wantErr: "penalties.empty_upstream_penalty"},
		{name: "negative penalty", mutate: func(c *Config) { c.Penalties.UnsupportedConstruct = -0.1 }, wantErr: "penalties.unsupported_construct_penalty"},
		{name: "output", mutate: func(c *Config) { c.Output = "xml" }, wantErr: `unknown output format "xml"`},
		{name: "catalog file and driver", mutate: func(c *Config) {
			c.Catalog = CatalogConfig{File: "a.yaml", Driver: "sqlite", DSN: "x.db"}
		}, wantErr: "mutually exclusive"},
		{name: "catalog driver", mutate: func(c *Config) {
			c.Catalog = CatalogConfig{Driver: "oracle", DSN: "x"}
		}, wantErr: `unknown catalog driver "oracle"`},
		{name: "catalog dsn", mutate: func(c *Config) {
			c.Catalog = CatalogConfig{Driver: "postgres"}
		}, wantErr: "catalog.dsn is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

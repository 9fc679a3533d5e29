package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
env: "prod"
http_server:
  address: ":9000"
audit:
  sink: "sqlite"
  path: "audit.db"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, SinkSQLite, cfg.Audit.Sink)
	assert.Equal(t, "audit.db", cfg.Audit.Path)
	assert.Equal(t, "students:audit", cfg.Audit.RedisKey)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "localhost:8082", cfg.HTTPServer.Addr)
	assert.Equal(t, SinkCSV, cfg.Audit.Sink)
	assert.Equal(t, "students.csv", cfg.Audit.Path)
	assert.Equal(t, "Students", cfg.Audit.Sheet)
}

func TestLoad_DefaultPathPerSink(t *testing.T) {
	tests := []struct {
		sink string
		want string
	}{
		{SinkCSV, "students.csv"},
		{SinkXLSX, "students.xlsx"},
		{SinkSQLite, "students.db"},
		{SinkNone, ""},
	}

	for _, tt := range tests {
		t.Run(tt.sink, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, "audit:\n  sink: "+tt.sink+"\n"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Audit.Path)
		})
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("AUDIT_SINK", "none")
	t.Setenv("HTTP_SERVER_ADDR", "127.0.0.1:1234")

	cfg, err := Load(writeConfig(t, "env: dev\n"))
	require.NoError(t, err)
	assert.Equal(t, SinkNone, cfg.Audit.Sink)
	assert.Equal(t, "127.0.0.1:1234", cfg.Addr)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown env", "env: qa\n"},
		{"unknown sink", "audit:\n  sink: kafka\n"},
		{"postgres without dsn", "audit:\n  sink: postgres\n"},
		{"redis without addr", "audit:\n  sink: redis\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "does not exist")
}

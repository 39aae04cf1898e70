package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetters(t *testing.T) {
	env := map[string]string{
		"STR":   "value",
		"EMPTY": "",
		"INT":   "42",
		"NAN":   "forty-two",
		"BOOL":  "true",
		"LIST":  " a, b ,,c ",
	}

	assert.Equal(t, "value", GetString(env, "STR", "def"))
	assert.Equal(t, "def", GetString(env, "EMPTY", "def"))
	assert.Equal(t, "def", GetString(nil, "STR", "def"))
	assert.Equal(t, 42, GetInt(env, "INT", 1))
	assert.Equal(t, 1, GetInt(env, "NAN", 1))
	assert.Equal(t, 1, GetInt(env, "MISSING", 1))
	assert.True(t, GetBool(env, "BOOL", false))
	assert.False(t, GetBool(env, "STR", false))
	assert.Equal(t, []string{"a", "b", "c"}, GetList(env, "LIST", nil))
	assert.Equal(t, []string{"x"}, GetList(env, "MISSING", []string{"x"}))
}

func TestSplit(t *testing.T) {
	k, v := split("KEY=a=b")
	assert.Equal(t, "KEY", k)
	assert.Equal(t, "a=b", v)

	k, v = split("KEY")
	assert.Equal(t, "KEY", k)
	assert.Empty(t, v)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	cfg.ApplyEnv(map[string]string{
		"PORT":             "9090",
		"DB_TYPE":          "POSTGRES",
		"DB_HOST":          "db.local",
		"DB_USER":          "blogs",
		"DB_NAME":          "blogs",
		"DB_REPLICA_DSNS":  "host=r1,host=r2",
		"ACCEPTED_ORIGINS": "http://localhost:3000",
		"LOG_LEVEL":        "debug",
		"LOG_JSON":         "1",
	})

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "0.0.0.0:9090", cfg.Address())
	assert.Equal(t, DBTypePostgres, cfg.Database.Type)
	assert.Equal(t, []string{"host=r1", "host=r2"}, cfg.Database.ReplicaDSNs)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AcceptedOrigins)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.JSON)
	assert.Equal(t,
		"host=db.local user=blogs password= dbname=blogs port=5432 sslmode=disable",
		cfg.Database.PostgresDSN(),
	)
}

func TestValidate(t *testing.T) {
	for name, tc := range map[string]struct {
		mutate  func(c *Config)
		wantErr bool
	}{
		"defaults": {
			mutate: func(c *Config) {},
		},
		"bad port": {
			mutate:  func(c *Config) { c.Port = 0 },
			wantErr: true,
		},
		"unknown db type": {
			mutate:  func(c *Config) { c.Database.Type = "oracle" },
			wantErr: true,
		},
		"postgres without host": {
			mutate:  func(c *Config) { c.Database.Type = DBTypePostgres },
			wantErr: true,
		},
		"postgres with dsn": {
			mutate: func(c *Config) {
				c.Database.Type = DBTypePostgres
				c.Database.DSN = "postgres://localhost/blogs"
			},
		},
		"sqlite without path": {
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: true,
		},
	} {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blogs.toml")
	content := `
port = 7070
accepted_origins = ["https://example.com"]

[database]
type = "sqlite"
path = "/tmp/file.db"

[log]
level = "warn"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("DB_PATH", "/tmp/env.db")
	for _, key := range []string{"PORT", "DB_TYPE", "DB_DSN", "LOG_LEVEL", "ACCEPTED_ORIGINS", "READ_TIMEOUT_SECONDS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, []string{"https://example.com"}, cfg.AcceptedOrigins)
	// environment wins over the file
	assert.Equal(t, "/tmp/env.db", cfg.Database.Path)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 180, cfg.ReadTimeoutSeconds)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

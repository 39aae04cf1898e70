package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DBTypePostgres = "postgres"
	DBTypeSQLite   = "sqlite"
)

type Config struct {
	Host                string   `toml:"host"`
	Port                int      `toml:"port"`
	ReadTimeoutSeconds  int      `toml:"read_timeout_seconds"`
	WriteTimeoutSeconds int      `toml:"write_timeout_seconds"`
	IdleTimeoutSeconds  int      `toml:"idle_timeout_seconds"`
	AcceptedOrigins     []string `toml:"accepted_origins"`

	Database Database `toml:"database"`
	Log      Log      `toml:"log"`
}

type Database struct {
	Type     string `toml:"type"`
	DSN      string `toml:"dsn"`
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Name     string `toml:"name"`
	SSLMode  string `toml:"sslmode"`
	// sqlite only
	Path string `toml:"path"`

	ReplicaDSNs     []string `toml:"replica_dsns"`
	SlowThresholdMs int      `toml:"slow_threshold_ms"`
}

type Log struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	JSON       bool   `toml:"json"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// Default returns the configuration used when neither a file nor the
// environment says otherwise.
func Default() *Config {
	return &Config{
		Host:                "0.0.0.0",
		Port:                8080,
		ReadTimeoutSeconds:  180,
		WriteTimeoutSeconds: 180,
		IdleTimeoutSeconds:  180,
		Database: Database{
			Type:            DBTypeSQLite,
			Port:            "5432",
			SSLMode:         "disable",
			Path:            "./blogs.db",
			SlowThresholdMs: 200,
		},
		Log: Log{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
	}
}

// Load builds the configuration from defaults, then the optional TOML file
// at path, then the process environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("decode config file %s: %w", path, err)
		}
	}

	cfg.ApplyEnv(New())

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with whatever keys env carries.
func (c *Config) ApplyEnv(env map[string]string) {
	c.Host = GetString(env, "HOST", c.Host)
	c.Port = GetInt(env, "PORT", c.Port)
	c.ReadTimeoutSeconds = GetInt(env, "READ_TIMEOUT_SECONDS", c.ReadTimeoutSeconds)
	c.WriteTimeoutSeconds = GetInt(env, "WRITE_TIMEOUT_SECONDS", c.WriteTimeoutSeconds)
	c.IdleTimeoutSeconds = GetInt(env, "IDLE_TIMEOUT_SECONDS", c.IdleTimeoutSeconds)
	c.AcceptedOrigins = GetList(env, "ACCEPTED_ORIGINS", c.AcceptedOrigins)

	db := &c.Database
	db.Type = strings.ToLower(GetString(env, "DB_TYPE", db.Type))
	db.DSN = GetString(env, "DB_DSN", db.DSN)
	db.Host = GetString(env, "DB_HOST", db.Host)
	db.Port = GetString(env, "DB_PORT", db.Port)
	db.User = GetString(env, "DB_USER", db.User)
	db.Password = GetString(env, "DB_PASSWORD", db.Password)
	db.Name = GetString(env, "DB_NAME", db.Name)
	db.SSLMode = GetString(env, "DB_SSLMODE", db.SSLMode)
	db.Path = GetString(env, "DB_PATH", db.Path)
	db.ReplicaDSNs = GetList(env, "DB_REPLICA_DSNS", db.ReplicaDSNs)
	db.SlowThresholdMs = GetInt(env, "DB_SLOW_THRESHOLD_MS", db.SlowThresholdMs)

	l := &c.Log
	l.Level = GetString(env, "LOG_LEVEL", l.Level)
	l.File = GetString(env, "LOG_FILE", l.File)
	l.JSON = GetBool(env, "LOG_JSON", l.JSON)
	l.MaxSizeMB = GetInt(env, "LOG_MAX_SIZE_MB", l.MaxSizeMB)
	l.MaxBackups = GetInt(env, "LOG_MAX_BACKUPS", l.MaxBackups)
	l.MaxAgeDays = GetInt(env, "LOG_MAX_AGE_DAYS", l.MaxAgeDays)
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	switch c.Database.Type {
	case DBTypePostgres:
		if c.Database.DSN == "" && c.Database.Host == "" {
			return errors.New("postgres requires DB_DSN or DB_HOST")
		}
	case DBTypeSQLite:
		if c.Database.DSN == "" && c.Database.Path == "" {
			return errors.New("sqlite requires DB_DSN or DB_PATH")
		}
	default:
		return fmt.Errorf("unsupported DB_TYPE %q", c.Database.Type)
	}
	return nil
}

// Address is the listen address of the HTTP server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// PostgresDSN returns DSN when set, otherwise a key/value DSN built from the parts.
func (d Database) PostgresDSN() string {
	if d.DSN != "" {
		return d.DSN
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode)
}

func New() map[string]string {
	environ := os.Environ()
	envAsMap := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry != "" {
			key, value := split(entry)
			envAsMap[key] = value
		}
	}
	return envAsMap
}

// assumes entry is not the empty string
func split(entry string) (key, value string) {
	parts := strings.SplitN(entry, "=", 2)
	if len(parts) < 2 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

func GetString(config map[string]string, key string, defaultValue string) string {
	if config == nil {
		return defaultValue
	}

	if val, ok := config[key]; ok && val != "" {
		return val
	}
	return defaultValue
}

func GetInt(config map[string]string, key string, defaultValue int) int {
	if config == nil {
		return defaultValue
	}

	s, ok := config[key]
	if !ok {
		return defaultValue
	}

	asInt, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}

	return asInt
}

func GetBool(config map[string]string, key string, defaultValue bool) bool {
	s, ok := config[key]
	if !ok {
		return defaultValue
	}

	asBool, err := strconv.ParseBool(s)
	if err != nil {
		return defaultValue
	}

	return asBool
}

// GetList splits a comma separated value, dropping blank entries.
func GetList(config map[string]string, key string, defaultValue []string) []string {
	s, ok := config[key]
	if !ok || strings.TrimSpace(s) == "" {
		return defaultValue
	}

	var list []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			list = append(list, part)
		}
	}
	return list
}

package logging

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm/logger"

	"github.com/rpupo63/blogs-service/config"
)

const timeFormat = "2006-01-02 15:04:05"

// Setup sets the global log level and output writers (console or JSON on
// stdout, plus a rotating file when cfg.File is set).
func Setup(cfg config.Log) {
	zerolog.SetGlobalLevel(ParseLevel(cfg.Level))
	log.Logger = zerolog.New(writer(cfg, os.Stdout)).With().Timestamp().Logger()
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func writer(cfg config.Log, stdout io.Writer) io.Writer {
	var console io.Writer = stdout
	if !cfg.JSON {
		console = zerolog.ConsoleWriter{Out: stdout, TimeFormat: timeFormat}
	}

	if cfg.File == "" {
		return console
	}

	if err := ensureLogDir(cfg.File); err != nil {
		log.Error().Err(err).Str("path", cfg.File).Msg("Failed to prepare log directory; logging to console only")
		return console
	}

	var file io.Writer = &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
	if !cfg.JSON {
		file = zerolog.ConsoleWriter{Out: file, TimeFormat: timeFormat, NoColor: true}
	}

	return zerolog.MultiLevelWriter(console, file)
}

func ensureLogDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// gormLogger sends gorm's SQL logging through zerolog: failed statements at
// error level, slow ones at warn level and everything else at trace level.
type gormLogger struct {
	l             zerolog.Logger
	level         logger.LogLevel
	slowThreshold time.Duration
}

// NewGormLogger derives gorm's verbosity from the global zerolog level.
// Statements slower than slowThreshold are logged as warnings.
func NewGormLogger(l zerolog.Logger, slowThreshold time.Duration) logger.Interface {
	return &gormLogger{
		l:             l,
		level:         gormLevel(zerolog.GlobalLevel()),
		slowThreshold: slowThreshold,
	}
}

func gormLevel(level zerolog.Level) logger.LogLevel {
	switch {
	case level <= zerolog.TraceLevel:
		return logger.Info
	case level <= zerolog.WarnLevel:
		return logger.Warn
	case level <= zerolog.ErrorLevel:
		return logger.Error
	default:
		return logger.Silent
	}
}

func (g *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *g
	clone.level = level
	return &clone
}

func (g *gormLogger) Info(_ context.Context, msg string, data ...any) {
	if g.level >= logger.Info {
		g.l.Info().Msgf(msg, data...)
	}
}

func (g *gormLogger) Warn(_ context.Context, msg string, data ...any) {
	if g.level >= logger.Warn {
		g.l.Warn().Msgf(msg, data...)
	}
}

func (g *gormLogger) Error(_ context.Context, msg string, data ...any) {
	if g.level >= logger.Error {
		g.l.Error().Msgf(msg, data...)
	}
}

func (g *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && g.level >= logger.Error && !errors.Is(err, logger.ErrRecordNotFound):
		sql, rows := fc()
		g.l.Error().Err(err).Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("Query failed")
	case g.slowThreshold > 0 && elapsed > g.slowThreshold && g.level >= logger.Warn:
		sql, rows := fc()
		g.l.Warn().Dur("elapsed", elapsed).Dur("threshold", g.slowThreshold).Int64("rows", rows).Str("sql", sql).Msg("Slow query")
	case g.level >= logger.Info:
		sql, rows := fc()
		g.l.Trace().Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("Query")
	}
}

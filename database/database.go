package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
	_ "modernc.org/sqlite"

	"github.com/rpupo63/blogs-service/config"
	"github.com/rpupo63/blogs-service/logging"
	"github.com/rpupo63/blogs-service/models"
)

// sqliteDriverName is the database/sql driver registered by modernc.org/sqlite.
const sqliteDriverName = "sqlite"

// Database is the process-wide persistence handle. Build it once with Open
// and hand it to whoever needs a Session.
type Database struct {
	db *gorm.DB
}

// New wraps an already opened gorm handle.
func New(db *gorm.DB) Database {
	return Database{db: db}
}

// Open connects to the database described by cfg.
func Open(cfg config.Database) (Database, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return Database{}, err
	}

	slowThreshold := time.Duration(cfg.SlowThresholdMs) * time.Millisecond
	db, err := gorm.Open(dialector, &gorm.Config{
		PrepareStmt: false,
		Logger:      logging.NewGormLogger(log.With().Str("component", "gorm").Logger(), slowThreshold),
	})
	if err != nil {
		return Database{}, fmt.Errorf("connect to %s database: %w", cfg.Type, err)
	}

	if len(cfg.ReplicaDSNs) > 0 {
		if err := registerReplicas(db, cfg); err != nil {
			return Database{}, err
		}
	}

	log.Debug().
		Str("type", cfg.Type).
		Int("replicas", len(cfg.ReplicaDSNs)).
		Msg("Database connection established")

	return New(db), nil
}

func dialectorFor(cfg config.Database) (gorm.Dialector, error) {
	switch cfg.Type {
	case config.DBTypePostgres:
		return postgres.New(postgres.Config{
			DSN:                  cfg.PostgresDSN(),
			PreferSimpleProtocol: true,
		}), nil
	case config.DBTypeSQLite:
		dsn := cfg.DSN
		if dsn == "" {
			dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", cfg.Path)
		}
		return sqlite.New(sqlite.Config{
			DriverName: sqliteDriverName,
			DSN:        dsn,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.Type)
	}
}

// registerReplicas sends reads to the replicas and everything else to the
// primary. Only postgres replicas are supported.
func registerReplicas(db *gorm.DB, cfg config.Database) error {
	if cfg.Type != config.DBTypePostgres {
		return fmt.Errorf("read replicas are not supported for %s", cfg.Type)
	}

	replicas := make([]gorm.Dialector, 0, len(cfg.ReplicaDSNs))
	for _, dsn := range cfg.ReplicaDSNs {
		replicas = append(replicas, postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}))
	}

	if err := db.Use(dbresolver.Register(dbresolver.Config{
		Replicas: replicas,
		Policy:   dbresolver.RandomPolicy{},
	})); err != nil {
		return fmt.Errorf("register read replicas: %w", err)
	}
	return nil
}

// Session is a request-scoped view of the database pinned to one connection.
type Session struct {
	blogRepo *BlogRepo
}

func (s Session) BlogRepo() *BlogRepo {
	return s.blogRepo
}

// WithSession pins one pooled connection for the duration of fn and
// releases it when fn returns, on every path.
func (d Database) WithSession(ctx context.Context, fn func(Session) error) error {
	return d.db.WithContext(ctx).Connection(func(conn *gorm.DB) error {
		// each statement on the pinned connection starts from a clean chain
		return fn(Session{blogRepo: NewBlogRepo(conn.Session(&gorm.Session{}))})
	})
}

// Migrate creates the tables that do not exist yet.
func (d Database) Migrate() error {
	return models.AutoMigrate(d.db)
}

// ColumnReport compares the live schema against the models.
func (d Database) ColumnReport() ([]models.TableReport, error) {
	return models.GenerateColumnMismatchReport(d.db)
}

func (d Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Stats exposes the pool counters, mostly for tests.
func (d Database) Stats() (open, inUse int, err error) {
	sqlDB, err := d.db.DB()
	if err != nil {
		return 0, 0, err
	}
	stats := sqlDB.Stats()
	return stats.OpenConnections, stats.InUse, nil
}

func (d Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

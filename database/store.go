package database

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/yeremiapane/food-listing-dashboard/apperror"
	"github.com/yeremiapane/food-listing-dashboard/config"
	"github.com/yeremiapane/food-listing-dashboard/utils"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store owns the handle to the configured backend. The handle is opened on
// first use; a failed open is reported to the caller and retried on the next
// call so the process keeps serving while the database is down.
type Store struct {
	cfg  config.DatabaseConfig
	open func(gorm.Dialector, ...gorm.Option) (*gorm.DB, error)

	mu sync.Mutex
	db *gorm.DB
}

func NewStore(cfg config.DatabaseConfig) *Store {
	return &Store{cfg: cfg, open: gorm.Open}
}

// Driver names the backend the store talks to.
func (s *Store) Driver() string {
	return s.cfg.Driver
}

// Conn returns a ready handle scoped to ctx. The first successful call also
// brings the schema up to date and seeds sample data when configured.
func (s *Store) Conn(ctx context.Context) (*gorm.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		db, err := s.connect(ctx)
		if err != nil {
			return nil, err
		}
		s.db = db
	}
	return s.db.WithContext(ctx), nil
}

func (s *Store) connect(ctx context.Context) (*gorm.DB, error) {
	dialector, err := s.dialector()
	if err != nil {
		return nil, apperror.ConnectionFailed(err)
	}

	db, err := s.open(dialector, &gorm.Config{
		Logger: logger.New(utils.InfoLogger, logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, apperror.ConnectionFailed(err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, apperror.ConnectionFailed(err)
	}
	if s.inMemory() {
		// an in-memory database lives exactly as long as its connection
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
	} else {
		sqlDB.SetMaxIdleConns(s.cfg.MaxIdleConns)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, apperror.ConnectionFailed(err)
	}

	db = db.WithContext(ctx)
	if err := EnsureSchema(db); err != nil {
		sqlDB.Close()
		return nil, apperror.ConnectionFailed(err)
	}
	if s.cfg.Seed {
		n, err := SeedIfEmpty(db)
		if err != nil {
			sqlDB.Close()
			return nil, apperror.ConnectionFailed(err)
		}
		if n > 0 {
			utils.InfoLogger.Infof("seeded %d sample food listings", n)
		}
	}

	utils.InfoLogger.WithField("driver", s.cfg.Driver).Info("database connection established")
	return db.WithContext(context.Background()), nil
}

func (s *Store) dialector() (gorm.Dialector, error) {
	c := s.cfg
	switch c.Driver {
	case config.DriverSQLite:
		if c.Path == "" {
			return nil, errors.New("SQLITE_PATH is empty")
		}
		return sqlite.Open(sqliteDSN(c.Path)), nil
	case config.DriverMySQL:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC&clientFoundRows=true",
			c.User, c.Password, c.Host, c.Port, c.Name)
		return mysql.Open(dsn), nil
	case config.DriverPostgres:
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
			c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
		return postgres.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", c.Driver)
}

// sqliteDSN turns on foreign keys so claims follow their listing on delete.
func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + url.Values{"_foreign_keys": {"on"}}.Encode()
}

func (s *Store) inMemory() bool {
	return s.cfg.Driver == config.DriverSQLite && strings.Contains(s.cfg.Path, ":memory:")
}

// Ping reports whether the backend is reachable right now.
func (s *Store) Ping(ctx context.Context) error {
	db, err := s.Conn(ctx)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return apperror.ConnectionFailed(err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return apperror.ConnectionFailed(err)
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	s.db = nil
	return sqlDB.Close()
}

package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/invoicer/backend/internal/infrastructure/config"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database holds the database connection and provides methods for database operations
type Database struct {
	DB *gorm.DB
}

// NewDatabase connects to Postgres and waits for it to answer a ping.
// Pings are retried with exponential backoff up to cfg.ConnectRetries times.
func NewDatabase(ctx context.Context, cfg *config.DatabaseConfig, gormLog logger.Interface, log *zap.Logger) (*Database, error) {
	return openDatabase(ctx, postgres.Open(cfg.DSN()), cfg, gormLog, log, backoff.NewExponentialBackOff())
}

func openDatabase(
	ctx context.Context,
	dialector gorm.Dialector,
	cfg *config.DatabaseConfig,
	gormLog logger.Interface,
	log *zap.Logger,
	retry backoff.BackOff,
) (*Database, error) {
	if gormLog == nil {
		gormLog = logger.Default.LogMode(logger.Silent)
	}
	if log == nil {
		log = zap.NewNop()
	}

	// the first ping happens below, under the retry policy
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gormLog,
		SkipDefaultTransaction: true,
		TranslateError:         true,
		DisableAutomaticPing:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	policy := backoff.WithContext(
		backoff.WithMaxRetries(retry, uint64(max(cfg.ConnectRetries, 0))),
		ctx,
	)
	ping := func() error {
		return sqlDB.PingContext(ctx)
	}
	notify := func(err error, wait time.Duration) {
		log.Warn("Database not ready, retrying",
			zap.String("host", cfg.Host),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}
	if err := backoff.RetryNotify(ping, policy, notify); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{DB: db}, nil
}

// NewDatabaseFromGorm wraps an existing connection, e.g. sqlite in tests
func NewDatabaseFromGorm(db *gorm.DB) *Database {
	return &Database{DB: db}
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

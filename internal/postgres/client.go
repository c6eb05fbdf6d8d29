package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/loopreach/loopreach/internal/config"
	"github.com/loopreach/loopreach/internal/logger"
	"github.com/loopreach/loopreach/internal/types"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// IClient defines the interface for postgres client operations
type IClient interface {
	// WithTx wraps the given function in a transaction
	WithTx(ctx context.Context, fn func(context.Context) error) error

	// TxFromContext returns the transaction from context if it exists
	TxFromContext(ctx context.Context) *gorm.DB

	// Querier returns the current transaction handle if in a transaction, or the regular handle
	Querier(ctx context.Context) *gorm.DB
}

// Client wraps gorm.DB to provide transaction management
type Client struct {
	db     *gorm.DB
	logger *logger.Logger
}

// NewGormDB creates a new gorm database handle
func NewGormDB(config *config.Configuration) (*gorm.DB, error) {
	dsn := config.Postgres.GetDSN()

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}

	sqlDB.SetMaxOpenConns(config.Postgres.MaxOpenConns)
	sqlDB.SetMaxIdleConns(config.Postgres.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(config.Postgres.ConnMaxLifetimeMinutes) * time.Minute)

	return db, nil
}

// NewClient creates a new gorm client wrapper with transaction management
func NewClient(db *gorm.DB, logger *logger.Logger) IClient {
	return &Client{
		db:     db,
		logger: logger,
	}
}

// WithTx wraps the given function in a transaction
func (c *Client) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	// If we're already in a transaction, reuse it and do not start a new one or commit it
	if tx := c.TxFromContext(ctx); tx != nil {
		return fn(ctx)
	}

	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := context.WithValue(ctx, types.CtxDBTransaction, tx)
		if err := fn(txCtx); err != nil {
			c.logger.Errorw("rolling back transaction due to error",
				"error", err,
			)
			return err
		}
		return nil
	})
}

// TxFromContext returns the transaction from context if it exists
func (c *Client) TxFromContext(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(types.CtxDBTransaction).(*gorm.DB); ok {
		return tx
	}
	return nil
}

// Querier returns the current transaction handle if in a transaction, or the regular handle
func (c *Client) Querier(ctx context.Context) *gorm.DB {
	if tx := c.TxFromContext(ctx); tx != nil {
		return tx
	}
	return c.db.WithContext(ctx)
}

// Package db is the persistence sink for the bridge: participants in,
// daily statistics, trade history, and market candles out. Backed by
// GORM over sqlite (local runs) or postgres (hosted store).
package db

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Params struct {
	Type            string // sqlite or postgres
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogLevel        string // silent, error, warn, info
}

type DB struct {
	gorm *gorm.DB
}

func Open(p Params) (*DB, error) {
	var dialector gorm.Dialector
	switch p.Type {
	case "sqlite":
		dialector = sqlite.Open(p.DSN)
	case "postgres", "postgresql":
		dialector = postgres.Open(p.DSN)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", p.Type)
	}

	logLevel := gormlogger.Silent
	switch p.LogLevel {
	case "error":
		logLevel = gormlogger.Error
	case "warn":
		logLevel = gormlogger.Warn
	case "info":
		logLevel = gormlogger.Info
	}

	g, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", p.Type, err)
	}

	sqlDB, err := g.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	if p.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(p.MaxOpenConns)
	}
	if p.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(p.MaxIdleConns)
	}
	if p.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(p.ConnMaxLifetime)
	}

	return &DB{gorm: g}, nil
}

// Migrate creates or updates the bridge tables.
func (d *DB) Migrate() error {
	return d.gorm.AutoMigrate(
		&ParticipantRow{},
		&DailyStatRow{},
		&TradeRow{},
		&CandleRow{},
	)
}

func (d *DB) Close() error {
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

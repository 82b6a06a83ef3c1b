package database

import (
	"errors"
	"testing"
	"time"

	"gorm.io/gorm/logger"
)

func TestDefaultPoolConfig(t *testing.T) {
	config := DefaultPoolConfig()

	if config.Driver != DriverPostgres {
		t.Errorf("Expected Driver to be postgres, got %s", config.Driver)
	}

	if config.MaxOpenConns != 25 {
		t.Errorf("Expected MaxOpenConns to be 25, got %d", config.MaxOpenConns)
	}

	if config.MaxIdleConns != 10 {
		t.Errorf("Expected MaxIdleConns to be 10, got %d", config.MaxIdleConns)
	}

	if config.ConnMaxLifetime != time.Hour {
		t.Errorf("Expected ConnMaxLifetime to be 1 hour, got %v", config.ConnMaxLifetime)
	}

	if config.ConnMaxIdleTime != time.Minute*30 {
		t.Errorf("Expected ConnMaxIdleTime to be 30 minutes, got %v", config.ConnMaxIdleTime)
	}

	if config.LogLevel != logger.Info {
		t.Errorf("Expected LogLevel to be Info, got %v", config.LogLevel)
	}
}

func TestNewDatabasePool_WithNilConfig(t *testing.T) {
	_, err := NewDatabasePool(nil)

	if !errors.Is(err, ErrEmptyDSN) {
		t.Errorf("Expected ErrEmptyDSN, got %v", err)
	}
}

func TestNewDatabasePool_UnsupportedDriver(t *testing.T) {
	_, err := NewDatabasePool(&PoolConfig{Driver: "oracle", DSN: "x"})

	if err == nil {
		t.Error("Expected error for unsupported driver, got nil")
	}
}

func TestNewDatabasePool_SQLite(t *testing.T) {
	config := &PoolConfig{
		Driver:          DriverSQLite,
		DSN:             ":memory:",
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute * 30,
		ConnMaxIdleTime: time.Minute * 15,
		LogLevel:        logger.Silent,
	}

	db, err := NewDatabasePool(config)
	if err != nil {
		t.Fatalf("Expected sqlite pool to open, got %v", err)
	}
	defer Close(db)

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}

	if stats := sqlDB.Stats(); stats.MaxOpenConnections != 1 {
		t.Errorf("Expected MaxOpenConnections 1, got %d", stats.MaxOpenConnections)
	}

	if err := sqlDB.Ping(); err != nil {
		t.Errorf("Expected ping to succeed, got %v", err)
	}
}

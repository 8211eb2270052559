package config

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Skotchmaster/rocketshoes/internal/models"
	"github.com/glebarez/sqlite"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func configurePool(sqlDB *sql.DB) {
	const (
		maxOpenConns    = 20
		maxIdleConns    = 10
		connMaxLifetime = 30 * time.Minute
		connMaxIdleTime = 5 * time.Minute
	)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)
}

// Dialector picks the gorm driver for cfg.DB_DRIVER: "sqlite" (default),
// "postgres" (pgx) or "pq" (lib/pq through database/sql).
func Dialector(cfg *Config) (gorm.Dialector, error) {
	switch cfg.DB_DRIVER {
	case "", "sqlite":
		return sqlite.Open(cfg.SQLITE_PATH), nil
	case "postgres":
		if cfg.DATABASE_URL == "" {
			return nil, fmt.Errorf("DATABASE_URL is empty")
		}
		return postgres.Open(cfg.DATABASE_URL), nil
	case "pq":
		if cfg.DATABASE_URL == "" {
			return nil, fmt.Errorf("DATABASE_URL is empty")
		}
		return postgres.New(postgres.Config{DriverName: "postgres", DSN: cfg.DATABASE_URL}), nil
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DB_DRIVER)
	}
}

func InitDB(ctx context.Context, cfg *Config) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	configurePool(sqlDB)
	if _, ok := dialector.(*sqlite.Dialector); ok {
		// sqlite serializes writers
		sqlDB.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := db.WithContext(ctx).AutoMigrate(&models.Slot{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

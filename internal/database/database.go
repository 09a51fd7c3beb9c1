package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tripdesk/agency-api/internal/config"
	"github.com/tripdesk/agency-api/internal/domain"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the store selected by cfg.Driver. The choice is made
// once at startup; postgres is the shared store and sqlite the local
// fallback file.
func NewDatabase(cfg *config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	driver := cfg.ResolvedDriver()

	dialector, err := dialectorFor(cfg, driver)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	if driver == "sqlite" {
		// One writer keeps sqlite from returning SQLITE_BUSY under load.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("Database connected", zap.String("driver", driver))

	if driver == "sqlite" || cfg.AutoMigrate {
		if err := AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		log.Info("Database schema migrated", zap.String("driver", driver))
	}

	return db, nil
}

func dialectorFor(cfg *config.DatabaseConfig, driver string) (gorm.Dialector, error) {
	switch driver {
	case "postgres":
		return postgres.Open(cfg.ConnectionString()), nil
	case "sqlite":
		path := cfg.SQLitePath
		if path == "" {
			path = "./data/appdata.db"
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
		}
		return sqlite.Open(path + "?_foreign_keys=on&_busy_timeout=5000"), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Models lists every persisted type in dependency order
func Models() []interface{} {
	return []interface{}{
		&domain.User{},
		&domain.PasswordResetToken{},
		&domain.Transportation{},
		&domain.Hotel{},
		&domain.RoomType{},
		&domain.Sightseeing{},
		&domain.Activity{},
		&domain.ActivityOption{},
		&domain.EntryTicket{},
		&domain.Meal{},
		&domain.Client{},
		&domain.Itinerary{},
		&domain.ItineraryChange{},
		&domain.FixedItinerary{},
		&domain.ItineraryDocument{},
		&domain.SalesClient{},
		&domain.FollowUpHistory{},
		&domain.PackageAssignment{},
		&domain.ChecklistItem{},
		&domain.ChatMessage{},
		&domain.Notification{},
		&domain.AuditLog{},
	}
}

// AutoMigrate creates or updates the schema. Postgres deployments run the
// goose migrations instead unless database.autoMigrate is set.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

// HealthCheck pings the underlying connection
func HealthCheck(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// HealthCheckWithStats pings the connection and returns pool statistics
func HealthCheckWithStats(ctx context.Context, db *gorm.DB) (map[string]interface{}, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, err
	}
	stats := sqlDB.Stats()
	return map[string]interface{}{
		"driver":           db.Dialector.Name(),
		"open_connections": stats.OpenConnections,
		"in_use":           stats.InUse,
		"idle":             stats.Idle,
		"wait_count":       stats.WaitCount,
		"max_open":         stats.MaxOpenConnections,
	}, nil
}

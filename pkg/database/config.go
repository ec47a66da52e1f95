package database

import (
	"fmt"
	"strings"

	"resumebot-ai/internal/constants"
	"resumebot-ai/internal/models"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type DatabaseConfigModel struct {
	Driver       string
	DSN          string
	MaxOpenConns int
	LogLevel     gormlogger.LogLevel
}

// InitializeDatabaseConnection opens the store and ensures its schema. Calling it again on an
// existing database is a no-op for the schema.
func InitializeDatabaseConnection(config DatabaseConfigModel) (*gorm.DB, error) {
	dialector, err := dialectorFor(config.Driver, config.DSN)
	if err != nil {
		return nil, err
	}

	if config.LogLevel == 0 {
		config.LogLevel = gormlogger.Warn
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(config.LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("retrieve sql db: %w", err)
	}
	if strings.EqualFold(config.Driver, constants.DatabaseDriverSQLite) {
		// SQLite allows one writer; a single connection avoids "database is locked".
		sqlDB.SetMaxOpenConns(1)
	} else if config.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	}

	if err := db.AutoMigrate(&models.Conversation{}, &models.MessageRecord{}, &models.DocumentRevision{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	log.Info().Str("driver", config.Driver).Msg("Connected to conversation store")
	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("database DSN is empty")
	}
	switch strings.ToLower(driver) {
	case constants.DatabaseDriverSQLite:
		return sqlite.Open(dsn), nil
	case constants.DatabaseDriverPostgres:
		return postgres.Open(dsn), nil
	case constants.DatabaseDriverMySQL:
		return mysql.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

package repo

import (
	"Sidekick/internal/model"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// Поддерживаемые типы БД.
const (
	DBTypeSQLite   = "sqlite"
	DBTypePostgres = "postgres"
	DBTypeMySQL    = "mysql"
	DBTypeMSSQL    = "sqlserver"
)

// InitDB открывает соединение с БД выбранного типа и выполняет миграции.
// Для sqlite используется драйвер modernc.org/sqlite (без cgo).
func InitDB(dbType, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch strings.ToLower(dbType) {
	case "", DBTypeSQLite:
		if dsn == "" {
			dsn = "sidekick.db"
		}
		dialector = gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}
	case DBTypePostgres, "postgresql":
		dialector = postgres.Open(dsn)
	case DBTypeMySQL, "mariadb":
		dialector = mysql.Open(dsn)
	case DBTypeMSSQL, "mssql":
		dialector = sqlserver.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(log.New(os.Stdout, "\r\n", log.LstdFlags)),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if strings.ToLower(dbType) == DBTypeSQLite || dbType == "" {
		// sqlite не любит параллельных писателей
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return db, nil
}

// newGormLogger пишет только медленные запросы и настоящие ошибки:
// ErrRecordNotFound для проверок существования ожидаем и в лог не попадает.
func newGormLogger(w logger.Writer) logger.Interface {
	return logger.New(w, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

// Migrate создаёт/обновляет таблицы для всех моделей.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Document{},
		&model.Tag{},
		&model.DocumentTag{},
		&model.UserTag{},
	)
}

// Ping проверяет доступность БД.
func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Close закрывает соединение с БД.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

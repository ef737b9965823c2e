package cmd

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/hr-administration/internal"
	accountDatamodel "github.com/frahmantamala/hr-administration/internal/core/datamodel/account"
	candidateDatamodel "github.com/frahmantamala/hr-administration/internal/core/datamodel/candidate"
)

// Database bundles the ORM handle used for writes with the sqlx handle used by plain-SQL readers.
// Both share one connection pool.
type Database struct {
	Gorm *gorm.DB
	SQLX *sqlx.DB
	SQL  *sql.DB
}

func (d *Database) Close() error {
	return d.SQL.Close()
}

// sqlDriverName is the database/sql driver backing each configured driver.
func sqlDriverName(driver string) string {
	if driver == internal.DriverSQLite {
		return "sqlite3"
	}
	return "pgx"
}

func initDB(cfg internal.DatabaseConfig, log *slog.Logger) (*Database, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case internal.DriverSQLite:
		dialector = sqlite.Open(cfg.GetDSN())
	case internal.DriverPostgres:
		dialector = postgres.New(postgres.Config{DSN: cfg.GetDSN(), DriverName: "pgx"})
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Warn),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	if cfg.Driver == internal.DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if cfg.AutoMigrate || cfg.Driver == internal.DriverSQLite {
		models := append(accountDatamodel.Models(), &candidateDatamodel.Candidate{})
		if err := gormDB.AutoMigrate(models...); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("failed to auto migrate: %w", err)
		}
		log.Info("database schema auto migrated", "driver", cfg.Driver)
	}

	return &Database{
		Gorm: gormDB,
		SQLX: sqlx.NewDb(sqlDB, sqlDriverName(cfg.Driver)),
		SQL:  sqlDB,
	}, nil
}

package db

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/webhookx-io/showgate/config/modules"
	"github.com/webhookx-io/showgate/db/dao"
	"go.uber.org/zap"
)

const (
	DriverPostgres = "pgx"
	DriverSqlite   = "sqlite3"
)

type DB struct {
	DB *sqlx.DB

	States *dao.StateDAO
}

func NewSqlDB(cfg modules.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open(DriverPostgres, cfg.GetDSN())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(int(cfg.MaxPoolSize))
	db.SetMaxIdleConns(int(cfg.MaxPoolSize))
	db.SetConnMaxLifetime(time.Second * time.Duration(cfg.MaxLifetime))
	return db, nil
}

func NewSqliteDB(cfg modules.SqliteConfig) (*sql.DB, error) {
	db, err := sql.Open(DriverSqlite, cfg.GetDSN())
	if err != nil {
		return nil, err
	}
	// sqlite serializes writers
	db.SetMaxOpenConns(1)
	return db, nil
}

func NewDB(sqlDB *sql.DB, driverName string, log *zap.SugaredLogger) *DB {
	sqlxDB := sqlx.NewDb(sqlDB, driverName)
	return &DB{
		DB:     sqlxDB,
		States: dao.NewStateDAO(sqlxDB, log),
	}
}

func (db *DB) DriverName() string {
	return db.DB.DriverName()
}

func (db *DB) Ping() error {
	return errors.Wrap(db.DB.Ping(), "failed to ping database")
}

func (db *DB) Truncate(ctx context.Context) error {
	_, err := db.DB.ExecContext(ctx, "DELETE FROM showable_states")
	return err
}

func (db *DB) SqlDB() *sql.DB {
	return db.DB.DB
}

func (db *DB) Close() error {
	return db.DB.Close()
}

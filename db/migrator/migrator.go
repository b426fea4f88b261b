package migrator

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/webhookx-io/showgate/db/migrations"
	"go.uber.org/zap"
)

type Options struct {
	// Driver is "pgx" or "sqlite3"
	Driver string
	Quiet  bool
}

// Migrator is a database migrator
type Migrator struct {
	db   *sql.DB
	opts *Options
}

type Status struct {
	Version uint
	Dirty   bool
}

func (s Status) String() string {
	if s.Dirty {
		return fmt.Sprintf("%d (dirty)", s.Version)
	}
	return fmt.Sprintf("%d", s.Version)
}

func New(db *sql.DB, opts *Options) *Migrator {
	return &Migrator{
		db:   db,
		opts: opts,
	}
}

type logger struct {
	quiet bool
}

func (l *logger) Printf(format string, v ...interface{}) {
	if !l.quiet {
		zap.S().Named("migrator").Infof(format, v...)
	}
}

func (l *logger) Verbose() bool {
	return false
}

func (m *Migrator) init() (*migrate.Migrate, error) {
	var (
		driver database.Driver
		dir    string
		err    error
	)
	switch m.opts.Driver {
	case "pgx", "postgres":
		dir = "postgres"
		driver, err = postgres.WithInstance(m.db, &postgres.Config{})
	case "sqlite3":
		dir = "sqlite3"
		driver, err = sqlite3.WithInstance(m.db, &sqlite3.Config{})
	default:
		return nil, fmt.Errorf("unsupported driver: %s", m.opts.Driver)
	}
	if err != nil {
		return nil, err
	}

	d, err := iofs.New(migrations.SQLs, dir)
	if err != nil {
		return nil, err
	}

	mg, err := migrate.NewWithInstance("iofs", d, dir, driver)
	if err != nil {
		return nil, err
	}
	mg.Log = &logger{quiet: m.opts.Quiet}
	return mg, nil
}

// Reset drops every table
func (m *Migrator) Reset() error {
	mg, err := m.init()
	if err != nil {
		return err
	}
	return mg.Drop()
}

func (m *Migrator) Up() error {
	mg, err := m.init()
	if err != nil {
		return err
	}
	return mg.Up()
}

func (m *Migrator) Down() error {
	mg, err := m.init()
	if err != nil {
		return err
	}
	return mg.Down()
}

// Status returns the current status
func (m *Migrator) Status() (Status, error) {
	mg, err := m.init()
	if err != nil {
		return Status{}, err
	}
	version, dirty, err := mg.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return Status{}, err
	}
	return Status{Version: version, Dirty: dirty}, nil
}

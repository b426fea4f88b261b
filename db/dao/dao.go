package dao

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/webhookx-io/showgate/db/entities"
	"go.uber.org/zap"
)

const table = "showable_states"

var (
	ErrNoRows = sql.ErrNoRows
)

// StateDAO reads and upserts rows of the showable_states table.
type StateDAO struct {
	log     *zap.SugaredLogger
	db      *sqlx.DB
	builder sq.StatementBuilderType
}

func NewStateDAO(db *sqlx.DB, log *zap.SugaredLogger) *StateDAO {
	builder := sq.StatementBuilder.PlaceholderFormat(sq.Question)
	if db.DriverName() == "pgx" || db.DriverName() == "postgres" {
		builder = builder.PlaceholderFormat(sq.Dollar)
	}
	return &StateDAO{
		log:     log.Named("dao"),
		db:      db,
		builder: builder,
	}
}

func (dao *StateDAO) debugSQL(sql string, args []interface{}) {
	dao.log.Debugw("execute", "sql", sql, "args", len(args))
}

// Get returns nil when the key has no row.
func (dao *StateDAO) Get(ctx context.Context, key string) (*entities.ShowableState, error) {
	statement, args := dao.builder.
		Select("item_key", "first_show_requested_at", "last_shown_at", "next_show_at", "blocked", "updated_at").
		From(table).
		Where(sq.Eq{"item_key": key}).
		MustSql()
	dao.debugSQL(statement, args)
	entity := new(entities.ShowableState)
	err := dao.db.GetContext(ctx, entity, statement, args...)
	if errors.Is(err, ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entity, nil
}

// Upsert sets a single column of the key's row, creating the row if needed.
func (dao *StateDAO) Upsert(ctx context.Context, key string, column string, value interface{}) error {
	now := time.Now().UTC()
	statement, args := dao.builder.
		Insert(table).
		Columns("item_key", column, "updated_at").
		Values(key, value, now).
		Suffix("ON CONFLICT (item_key) DO UPDATE SET " + column + " = EXCLUDED." + column + ", updated_at = EXCLUDED.updated_at").
		MustSql()
	dao.debugSQL(statement, args)
	_, err := dao.db.ExecContext(ctx, statement, args...)
	return err
}

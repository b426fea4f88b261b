package entities

import (
	"database/sql"
	"time"

	"github.com/webhookx-io/showgate/policy"
)

// ShowableState is a row of the showable_states table
type ShowableState struct {
	Key                  string       `db:"item_key"`
	FirstShowRequestedAt sql.NullTime `db:"first_show_requested_at"`
	LastShownAt          sql.NullTime `db:"last_shown_at"`
	NextShowAt           sql.NullTime `db:"next_show_at"`
	Blocked              bool         `db:"blocked"`
	UpdatedAt            time.Time    `db:"updated_at"`
}

func (e *ShowableState) ToState() policy.State {
	return policy.State{
		FirstShowRequestedAt: fromNullTime(e.FirstShowRequestedAt),
		LastShownAt:          fromNullTime(e.LastShownAt),
		NextShowAt:           fromNullTime(e.NextShowAt),
		Blocked:              e.Blocked,
	}
}

func fromNullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func NullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

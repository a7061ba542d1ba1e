package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sandevgo/matgram/internal/bridge/session"
)

// SessionRepo persists bridge user sessions.
type SessionRepo struct {
	db *sql.DB
}

func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

var _ session.Repository = (*SessionRepo)(nil)

func (r *SessionRepo) Load(ctx context.Context, mxid string) (*session.Record, error) {
	query := `SELECT mxid, tgid, tg_username FROM sessions WHERE mxid = ?`

	rec := &session.Record{}
	err := r.db.QueryRowContext(ctx, query, mxid).Scan(&rec.MXID, &rec.TGID, &rec.TGUsername)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return rec, nil
}

func (r *SessionRepo) Save(ctx context.Context, rec *session.Record) error {
	query := `INSERT INTO sessions (mxid, tgid, tg_username, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(mxid) DO UPDATE SET
			tgid = excluded.tgid,
			tg_username = excluded.tg_username,
			updated_at = CURRENT_TIMESTAMP`

	if _, err := r.db.ExecContext(ctx, query, rec.MXID, rec.TGID, rec.TGUsername); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *SessionRepo) Delete(ctx context.Context, mxid string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE mxid = ?`, mxid); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

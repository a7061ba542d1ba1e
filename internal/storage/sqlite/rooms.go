package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sandevgo/matgram/internal/transport/matrix"
)

// RoomRepo persists what the bridge knows about rooms it participates in.
type RoomRepo struct {
	db *sql.DB
}

func NewRoomRepo(db *sql.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

var _ matrix.RoomStore = (*RoomRepo)(nil)

func (r *RoomRepo) KindOf(ctx context.Context, roomID string) (matrix.RoomKind, string, error) {
	query := `SELECT kind, owner_mxid FROM rooms WHERE room_id = ?`

	var kind, owner string
	err := r.db.QueryRowContext(ctx, query, roomID).Scan(&kind, &owner)
	if errors.Is(err, sql.ErrNoRows) {
		return matrix.RoomPlain, "", nil
	}
	if err != nil {
		return matrix.RoomPlain, "", fmt.Errorf("failed to load room: %w", err)
	}
	return matrix.RoomKind(kind), owner, nil
}

func (r *RoomRepo) SetKind(ctx context.Context, roomID string, kind matrix.RoomKind, owner string) error {
	query := `INSERT INTO rooms (room_id, kind, owner_mxid)
		VALUES (?, ?, ?)
		ON CONFLICT(room_id) DO UPDATE SET
			kind = excluded.kind,
			owner_mxid = excluded.owner_mxid`

	if _, err := r.db.ExecContext(ctx, query, roomID, string(kind), owner); err != nil {
		return fmt.Errorf("failed to save room: %w", err)
	}
	return nil
}

func (r *RoomRepo) Forget(ctx context.Context, roomID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE room_id = ?`, roomID); err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	return nil
}

package matrix

import (
	"context"
	"encoding/json"
)

type RoomKind string

const (
	// RoomPlain is any room the bridge has no special knowledge of.
	RoomPlain RoomKind = ""
	// RoomManagement is a user's private control room: commands are accepted
	// without a prefix there.
	RoomManagement RoomKind = "management"
	// RoomPortal bridges a specific Telegram chat.
	RoomPortal RoomKind = "portal"
)

// RoomStore persists room classifications.
type RoomStore interface {
	KindOf(ctx context.Context, roomID string) (RoomKind, string, error)
	SetKind(ctx context.Context, roomID string, kind RoomKind, owner string) error
	Forget(ctx context.Context, roomID string) error
}

// Transaction is the payload of an appservice transaction push.
type Transaction struct {
	Events []Event `json:"events"`
}

// Event is the subset of a Matrix event the bridge reads.
type Event struct {
	ID       string          `json:"event_id"`
	Type     string          `json:"type"`
	Sender   string          `json:"sender"`
	RoomID   string          `json:"room_id"`
	StateKey *string         `json:"state_key,omitempty"`
	Content  json.RawMessage `json:"content"`
}

type MessageContent struct {
	MsgType       string `json:"msgtype"`
	Body          string `json:"body"`
	Format        string `json:"format,omitempty"`
	FormattedBody string `json:"formatted_body,omitempty"`
}

type MemberContent struct {
	Membership string `json:"membership"`
	IsDirect   bool   `json:"is_direct,omitempty"`
}

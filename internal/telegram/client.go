package telegram

import "context"

// User is the subset of a Telegram user the bridge reads.
type User struct {
	ID        int64
	FirstName string
	LastName  string
	Username  string
	Phone     string
	Bot       bool
}

type EntityKind int

const (
	EntityUser EntityKind = iota
	EntityChat
	EntityChannel
)

// Entity is a resolved Telegram peer.
type Entity struct {
	ID         int64
	AccessHash int64
	Kind       EntityKind
	Username   string
	Title      string
	FirstName  string
	LastName   string
}

// ChatInvite describes a chat behind an invite link before joining it.
type ChatInvite struct {
	Title        string
	MemberCount  int
	Broadcast    bool
	AlreadyInIDs []int64
}

// Client is the per-user MTProto capability the command layer drives. All
// calls may fail with a classified *Error (see Kind) or a plain error for
// anything unanticipated.
type Client interface {
	// Connect establishes the MTProto connection, creating a fresh session
	// when none is persisted.
	Connect(ctx context.Context) error
	// Authorized reports whether a live signed-in session exists.
	Authorized(ctx context.Context) (bool, error)

	SendCodeRequest(ctx context.Context, phone string) error
	SignInCode(ctx context.Context, code string) (*User, error)
	SignInPassword(ctx context.Context, password string) (*User, error)
	SignInBotToken(ctx context.Context, token string) (*User, error)
	SignUp(ctx context.Context, code, firstName, lastName string) (*User, error)

	GetMe(ctx context.Context) (*User, error)
	Search(ctx context.Context, query string, limit int) ([]User, error)
	GetEntity(ctx context.Context, identifier string) (*Entity, error)
	JoinChannel(ctx context.Context, channel *Entity) error
	CheckInvite(ctx context.Context, hash string) (*ChatInvite, error)
	ImportInvite(ctx context.Context, hash string) error

	LogOut(ctx context.Context) error
	Disconnect() error
}

// Factory creates a client bound to one bridge user.
type Factory func(userID string) Client

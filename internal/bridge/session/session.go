package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/sandevgo/matgram/internal/bridge/command"
	"github.com/sandevgo/matgram/internal/telegram"
	"github.com/sandevgo/matgram/pkg/log"
)

// Session is one bridge user's persistent interaction state: the lazily
// started Telegram client, at most one pending command continuation, and
// cached profile data.
//
// Command invocations for a session are serialized on the execution lock;
// everything except the cached profile fields is only touched while it is
// held. The profile fields have their own lock because the post-login hook
// updates them from a detached goroutine.
type Session struct {
	execMu sync.Mutex
	dataMu sync.RWMutex

	mxid   string
	status *command.Continuation
	client telegram.Client

	tgID       int64
	tgUsername string

	dial telegram.Factory
	repo Repository
}

var _ command.User = (*Session)(nil)

func (s *Session) MXID() string {
	return s.mxid
}

// Lock serializes command invocations for this session.
func (s *Session) Lock() {
	s.execMu.Lock()
}

func (s *Session) Unlock() {
	s.execMu.Unlock()
}

func (s *Session) TGID() int64 {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	return s.tgID
}

func (s *Session) TGUsername() string {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	return s.tgUsername
}

func (s *Session) Client() telegram.Client {
	return s.client
}

// EnsureStarted connects the Telegram client. Without evenIfNoSession it is
// a no-op for users who never logged in, so casual commands don't open
// connections.
func (s *Session) EnsureStarted(ctx context.Context, evenIfNoSession bool) error {
	if s.client != nil {
		return nil
	}
	if !evenIfNoSession && s.TGID() == 0 {
		return nil
	}

	client := s.dial(s.mxid)
	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("connect telegram client for %s: %w", s.mxid, err)
	}
	s.client = client
	return nil
}

// LoggedIn reports whether a live signed-in remote session exists.
func (s *Session) LoggedIn(ctx context.Context) bool {
	if s.client == nil {
		if err := s.EnsureStarted(ctx, false); err != nil {
			log.FromCtx(ctx).Warn().Err(err).Str("mxid", s.mxid).
				Msg("failed to restore telegram session")
			return false
		}
		if s.client == nil {
			return false
		}
	}
	authorized, err := s.client.Authorized(ctx)
	if err != nil {
		log.FromCtx(ctx).Debug().Err(err).Str("mxid", s.mxid).
			Msg("failed to check authorization status")
		return false
	}
	return authorized
}

func (s *Session) CommandStatus() *command.Continuation {
	return s.status
}

// SetCommandStatus replaces the pending continuation. A nil status clears
// it; the change is visible to the very next invocation because invocations
// are serialized.
func (s *Session) SetCommandStatus(status *command.Continuation) {
	s.status = status
}

// PostLogin caches the signed-in user's profile data and persists it. It is
// safe to call from a goroutine detached from the invocation.
func (s *Session) PostLogin(ctx context.Context, me *telegram.User) error {
	s.dataMu.Lock()
	s.tgID = me.ID
	s.tgUsername = me.Username
	s.dataMu.Unlock()

	if s.repo == nil {
		return nil
	}
	if err := s.repo.Save(ctx, &Record{
		MXID:       s.mxid,
		TGID:       me.ID,
		TGUsername: me.Username,
	}); err != nil {
		return fmt.Errorf("persist session for %s: %w", s.mxid, err)
	}
	return nil
}

// LogOut tears down the remote session. Local state is only cleared after
// the remote call succeeded, so a failed logout leaves the session usable.
func (s *Session) LogOut(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("no live telegram session for %s", s.mxid)
	}
	if err := s.client.LogOut(ctx); err != nil {
		return err
	}
	s.client = nil

	s.dataMu.Lock()
	s.tgID = 0
	s.tgUsername = ""
	s.dataMu.Unlock()

	if s.repo != nil {
		if err := s.repo.Delete(ctx, s.mxid); err != nil {
			log.FromCtx(ctx).Error().Err(err).Str("mxid", s.mxid).
				Msg("failed to delete persisted session")
		}
	}
	return nil
}

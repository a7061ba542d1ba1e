package session

import (
	"context"
	"sync"

	"github.com/sandevgo/matgram/internal/telegram"
	"github.com/sandevgo/matgram/pkg/log"
)

// Record is the persisted part of a session.
type Record struct {
	MXID       string
	TGID       int64
	TGUsername string
}

// Repository persists session records. Load returns (nil, nil) for unknown
// users.
type Repository interface {
	Load(ctx context.Context, mxid string) (*Record, error)
	Save(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, mxid string) error
}

// Store hands out the one Session per bridge user, creating it on first
// contact and seeding it from the repository.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	repo Repository
	dial telegram.Factory
}

func NewStore(repo Repository, dial telegram.Factory) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		repo:     repo,
		dial:     dial,
	}
}

func (st *Store) Get(ctx context.Context, mxid string) *Session {
	st.mu.RLock()
	s, ok := st.sessions[mxid]
	st.mu.RUnlock()
	if ok {
		return s
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.sessions[mxid]; ok {
		return s
	}

	s = &Session{
		mxid: mxid,
		dial: st.dial,
		repo: st.repo,
	}
	if st.repo != nil {
		rec, err := st.repo.Load(ctx, mxid)
		if err != nil {
			log.FromCtx(ctx).Error().Err(err).Str("mxid", mxid).
				Msg("failed to load persisted session")
		} else if rec != nil {
			s.tgID = rec.TGID
			s.tgUsername = rec.TGUsername
		}
	}
	st.sessions[mxid] = s
	return s
}

// Count reports how many sessions are live in memory.
func (st *Store) Count() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

package matrix

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sandevgo/matgram/internal/bridge/command"
	"github.com/sandevgo/matgram/internal/bridge/session"
	"github.com/sandevgo/matgram/internal/core"
	"github.com/sandevgo/matgram/pkg/log"
)

const txnHistorySize = 128

// AppService receives transaction pushes from the homeserver and routes
// message events into the command processor.
type AppService struct {
	server  *http.Server
	hsToken string
	botMXID string
	prefix  string

	proc     *command.Processor
	sessions *session.Store
	rooms    RoomStore
	intent   *Intent

	ctx context.Context

	mu       sync.Mutex
	seenTxns map[string]struct{}
	txnOrder []string
}

func NewAppService(listenAddr string, hs core.HomeserverConfig, bridge core.BridgeConfig,
	proc *command.Processor, sessions *session.Store, rooms RoomStore, intent *Intent) *AppService {
	as := &AppService{
		hsToken:  hs.GetHSToken(),
		botMXID:  hs.BotMXID(),
		prefix:   bridge.GetCommandPrefix(),
		proc:     proc,
		sessions: sessions,
		rooms:    rooms,
		intent:   intent,
		seenTxns: make(map[string]struct{}, txnHistorySize),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("PUT /_matrix/app/v1/transactions/{txnID}", as.handleTransaction)
	mux.HandleFunc("PUT /transactions/{txnID}", as.handleTransaction)

	as.server = &http.Server{
		Addr:              listenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return as
}

func (as *AppService) Start(ctx context.Context) error {
	as.ctx = ctx
	log.FromCtx(ctx).Info().Str("addr", as.server.Addr).Msg("appservice listening")
	if err := as.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (as *AppService) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return as.server.Shutdown(shutdownCtx)
}

func (as *AppService) authorized(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return token == as.hsToken
	}
	// Older homeservers send the token as a query parameter.
	return r.URL.Query().Get("access_token") == as.hsToken
}

// markSeen records a transaction ID and reports whether it was already
// processed. The homeserver retries transactions until acknowledged, so
// duplicates are expected.
func (as *AppService) markSeen(txnID string) bool {
	as.mu.Lock()
	defer as.mu.Unlock()
	if _, ok := as.seenTxns[txnID]; ok {
		return true
	}
	as.seenTxns[txnID] = struct{}{}
	as.txnOrder = append(as.txnOrder, txnID)
	if len(as.txnOrder) > txnHistorySize {
		delete(as.seenTxns, as.txnOrder[0])
		as.txnOrder = as.txnOrder[1:]
	}
	return false
}

func (as *AppService) handleTransaction(w http.ResponseWriter, r *http.Request) {
	if !as.authorized(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"errcode":"M_FORBIDDEN"}`))
		return
	}

	txnID := r.PathValue("txnID")
	w.Header().Set("Content-Type", "application/json")

	if as.markSeen(txnID) {
		_, _ = w.Write([]byte(`{}`))
		return
	}

	var txn Transaction
	if err := json.NewDecoder(r.Body).Decode(&txn); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errcode":"M_NOT_JSON"}`))
		return
	}

	// Acknowledge before processing: the homeserver stalls the whole
	// transaction queue while waiting for the response, and command
	// handlers can block on remote calls.
	_, _ = w.Write([]byte(`{}`))

	go func() {
		for _, evt := range txn.Events {
			as.handleEvent(as.ctx, evt)
		}
	}()
}

func (as *AppService) handleEvent(ctx context.Context, evt Event) {
	switch evt.Type {
	case "m.room.member":
		as.handleMembership(ctx, evt)
	case "m.room.message":
		as.handleMessage(ctx, evt)
	}
}

func (as *AppService) handleMembership(ctx context.Context, evt Event) {
	if evt.StateKey == nil || *evt.StateKey != as.botMXID {
		return
	}
	var content MemberContent
	if err := json.Unmarshal(evt.Content, &content); err != nil {
		return
	}
	logger := log.FromCtx(ctx).With().Str("room_id", evt.RoomID).Logger()

	switch content.Membership {
	case "invite":
		if err := as.intent.JoinRoom(ctx, evt.RoomID); err != nil {
			logger.Error().Err(err).Msg("failed to accept invite")
			return
		}
		if content.IsDirect {
			if err := as.rooms.SetKind(ctx, evt.RoomID, RoomManagement, evt.Sender); err != nil {
				logger.Error().Err(err).Msg("failed to mark management room")
			}
		}
	case "leave", "ban":
		if err := as.rooms.Forget(ctx, evt.RoomID); err != nil {
			logger.Error().Err(err).Msg("failed to forget room")
		}
	}
}

func (as *AppService) handleMessage(ctx context.Context, evt Event) {
	if evt.Sender == as.botMXID {
		return
	}
	var content MessageContent
	if err := json.Unmarshal(evt.Content, &content); err != nil {
		return
	}
	if content.MsgType != "m.text" {
		return
	}

	kind, owner, err := as.rooms.KindOf(ctx, evt.RoomID)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Str("room_id", evt.RoomID).
			Msg("failed to classify room")
		return
	}
	// A management room belongs to the user it was created for. Anyone
	// else in it is treated like a plain-room sender.
	if kind == RoomManagement && owner != evt.Sender {
		kind = RoomPlain
	}

	text := strings.TrimSpace(content.Body)
	if kind != RoomManagement {
		// Outside management rooms commands must carry the prefix.
		rest, ok := strings.CutPrefix(text, as.prefix)
		if !ok || (rest != "" && rest[0] != ' ') {
			return
		}
		text = strings.TrimSpace(rest)
	}

	fields := strings.Fields(text)
	if len(fields) == 0 {
		return
	}

	sender := as.sessions.Get(ctx, evt.Sender)
	as.proc.Handle(ctx, evt.RoomID, sender, fields[0], fields[1:],
		kind == RoomManagement, kind == RoomPortal)
}

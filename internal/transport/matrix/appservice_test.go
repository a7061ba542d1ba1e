package matrix

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sandevgo/matgram/internal/bridge/command"
	"github.com/sandevgo/matgram/internal/bridge/session"
	"github.com/sandevgo/matgram/internal/telegram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hsConfig struct {
	address string
}

func (c hsConfig) GetAddress() string { return c.address }

func (c hsConfig) GetDomain() string { return "example.com" }

func (c hsConfig) GetASToken() string { return "as-secret" }

func (c hsConfig) GetHSToken() string { return "hs-secret" }

func (c hsConfig) BotMXID() string { return "@telegrambot:example.com" }

type bridgeConfig struct{}

func (bridgeConfig) GetCommandPrefix() string { return "!tg" }

func (bridgeConfig) MatrixLoginAllowed() bool { return true }

func (bridgeConfig) PublicLoginEnabled() bool { return false }

func (bridgeConfig) PublicLoginURL(userID string) string { return "" }

type roomRecord struct {
	kind  RoomKind
	owner string
}

type memRooms struct {
	mu    sync.Mutex
	rooms map[string]roomRecord
}

func newMemRooms() *memRooms {
	return &memRooms{rooms: make(map[string]roomRecord)}
}

func (r *memRooms) KindOf(ctx context.Context, roomID string) (RoomKind, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := r.rooms[roomID]
	return rec.kind, rec.owner, nil
}

func (r *memRooms) SetKind(ctx context.Context, roomID string, kind RoomKind, owner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms[roomID] = roomRecord{kind: kind, owner: owner}
	return nil
}

func (r *memRooms) Forget(ctx context.Context, roomID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, roomID)
	return nil
}

type nullClient struct {
	telegram.Client
}

func (nullClient) Connect(ctx context.Context) error {
	return nil
}

func (nullClient) Authorized(ctx context.Context) (bool, error) {
	return false, nil
}

// homeserverRequest is one call the appservice made back to the homeserver.
type homeserverRequest struct {
	method string
	path   string
	body   string
}

func newTestAppService(t *testing.T, rooms RoomStore) (*AppService, chan homeserverRequest) {
	t.Helper()

	requests := make(chan homeserverRequest, 16)
	hs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var content MessageContent
		_ = json.NewDecoder(r.Body).Decode(&content)
		requests <- homeserverRequest{method: r.Method, path: r.URL.Path, body: content.Body}
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(hs.Close)

	cfg := hsConfig{address: hs.URL}
	intent := NewIntent(cfg)
	sessions := session.NewStore(nil, func(userID string) telegram.Client {
		return nullClient{}
	})
	proc := command.NewProcessor(bridgeConfig{}, intent, nil)

	as := NewAppService(":0", cfg, bridgeConfig{}, proc, sessions, rooms, intent)
	as.ctx = context.Background()
	return as, requests
}

func pushTransaction(t *testing.T, as *AppService, txnID, token string, events ...Event) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(Transaction{Events: events})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut,
		"/_matrix/app/v1/transactions/"+txnID, strings.NewReader(string(payload)))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	as.server.Handler.ServeHTTP(rec, req)
	return rec
}

func awaitRequest(t *testing.T, requests chan homeserverRequest) homeserverRequest {
	t.Helper()
	select {
	case req := <-requests:
		return req
	case <-time.After(2 * time.Second):
		t.Fatal("no request reached the homeserver")
		return homeserverRequest{}
	}
}

func messageEvent(roomID, sender, body string) Event {
	content, _ := json.Marshal(MessageContent{MsgType: "m.text", Body: body})
	return Event{
		ID:      "$evt",
		Type:    "m.room.message",
		Sender:  sender,
		RoomID:  roomID,
		Content: content,
	}
}

func TestAppService_RejectsBadToken(t *testing.T) {
	as, _ := newTestAppService(t, newMemRooms())

	rec := pushTransaction(t, as, "txn1", "wrong-token")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = pushTransaction(t, as, "txn1", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAppService_ManagementRoomIsPrefixFree(t *testing.T) {
	rooms := newMemRooms()
	require.NoError(t, rooms.SetKind(context.Background(), "!mgmt", RoomManagement, "@alice:example.com"))
	as, requests := newTestAppService(t, rooms)

	rec := pushTransaction(t, as, "txn1", "hs-secret",
		messageEvent("!mgmt", "@alice:example.com", "cancel"))
	assert.Equal(t, http.StatusOK, rec.Code)

	req := awaitRequest(t, requests)
	assert.Equal(t, http.MethodPut, req.method)
	assert.Contains(t, req.path, "/rooms/!mgmt/send/m.room.message/")
}

func TestAppService_ManagementRoomOnlyTrustsItsOwner(t *testing.T) {
	rooms := newMemRooms()
	require.NoError(t, rooms.SetKind(context.Background(), "!mgmt", RoomManagement, "@alice:example.com"))
	as, requests := newTestAppService(t, rooms)

	// another user in the room gets no management context: their
	// unprefixed message is not a command
	rec := pushTransaction(t, as, "txn1", "hs-secret",
		messageEvent("!mgmt", "@mallory:example.com", "login"))
	assert.Equal(t, http.StatusOK, rec.Code)

	select {
	case req := <-requests:
		t.Fatalf("non-owner message must not be dispatched, got %s %s", req.method, req.path)
	case <-time.After(200 * time.Millisecond):
	}

	// with the prefix they are handled like any plain-room sender
	pushTransaction(t, as, "txn2", "hs-secret",
		messageEvent("!mgmt", "@mallory:example.com", "!tg cancel"))
	req := awaitRequest(t, requests)
	assert.Contains(t, req.path, "/rooms/!mgmt/send/m.room.message/")
	assert.Equal(t, "No ongoing command.", req.body)
}

func TestAppService_PlainRoomRequiresPrefix(t *testing.T) {
	as, requests := newTestAppService(t, newMemRooms())

	// no prefix: dropped silently
	rec := pushTransaction(t, as, "txn1", "hs-secret",
		messageEvent("!plain", "@alice:example.com", "cancel"))
	assert.Equal(t, http.StatusOK, rec.Code)

	select {
	case req := <-requests:
		t.Fatalf("unprefixed message must not be dispatched, got %s %s", req.method, req.path)
	case <-time.After(200 * time.Millisecond):
	}

	// prefixed: dispatched
	pushTransaction(t, as, "txn2", "hs-secret",
		messageEvent("!plain", "@alice:example.com", "!tg cancel"))
	req := awaitRequest(t, requests)
	assert.Contains(t, req.path, "/rooms/!plain/send/m.room.message/")
}

func TestAppService_DuplicateTransactionIsIgnored(t *testing.T) {
	rooms := newMemRooms()
	require.NoError(t, rooms.SetKind(context.Background(), "!mgmt", RoomManagement, "@alice:example.com"))
	as, requests := newTestAppService(t, rooms)

	evt := messageEvent("!mgmt", "@alice:example.com", "cancel")
	pushTransaction(t, as, "txn1", "hs-secret", evt)
	awaitRequest(t, requests)

	rec := pushTransaction(t, as, "txn1", "hs-secret", evt)
	assert.Equal(t, http.StatusOK, rec.Code)

	select {
	case req := <-requests:
		t.Fatalf("duplicate transaction must not be re-dispatched, got %s %s", req.method, req.path)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestAppService_DirectInviteBecomesManagementRoom(t *testing.T) {
	rooms := newMemRooms()
	as, requests := newTestAppService(t, rooms)

	stateKey := "@telegrambot:example.com"
	content, _ := json.Marshal(MemberContent{Membership: "invite", IsDirect: true})
	pushTransaction(t, as, "txn1", "hs-secret", Event{
		ID:       "$invite",
		Type:     "m.room.member",
		Sender:   "@alice:example.com",
		RoomID:   "!new",
		StateKey: &stateKey,
		Content:  content,
	})

	req := awaitRequest(t, requests)
	assert.Equal(t, http.MethodPost, req.method)
	assert.Contains(t, req.path, "/_matrix/client/v3/join/")

	// the join is synchronous within event handling, so the kind is set once
	// the join request has been observed
	assert.Eventually(t, func() bool {
		kind, _, _ := rooms.KindOf(context.Background(), "!new")
		return kind == RoomManagement
	}, time.Second, 10*time.Millisecond)
}

func TestAppService_IgnoresOwnMessages(t *testing.T) {
	rooms := newMemRooms()
	require.NoError(t, rooms.SetKind(context.Background(), "!mgmt", RoomManagement, "@alice:example.com"))
	as, requests := newTestAppService(t, rooms)

	pushTransaction(t, as, "txn1", "hs-secret",
		messageEvent("!mgmt", "@telegrambot:example.com", "cancel"))

	select {
	case req := <-requests:
		t.Fatalf("own message must not be dispatched, got %s %s", req.method, req.path)
	case <-time.After(200 * time.Millisecond):
	}
}

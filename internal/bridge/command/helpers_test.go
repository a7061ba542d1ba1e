package command

import (
	"context"
	"sync"

	"github.com/sandevgo/matgram/internal/telegram"
)

type fakeConfig struct {
	prefix      string
	matrixLogin bool
	publicLogin bool
	publicURL   string
}

func (c *fakeConfig) GetCommandPrefix() string { return c.prefix }
func (c *fakeConfig) MatrixLoginAllowed() bool { return c.matrixLogin }
func (c *fakeConfig) PublicLoginEnabled() bool { return c.publicLogin }
func (c *fakeConfig) PublicLoginURL(userID string) string {
	return c.publicURL + "?mxid=" + userID
}

func defaultConfig() *fakeConfig {
	return &fakeConfig{prefix: "!tg", matrixLogin: true}
}

type fakeReplier struct {
	mu      sync.Mutex
	notices []string
}

func (r *fakeReplier) SendNotice(ctx context.Context, roomID, body, formattedBody string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, body)
	return nil
}

func (r *fakeReplier) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return ""
	}
	return r.notices[len(r.notices)-1]
}

func (r *fakeReplier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notices)
}

// fakeClient lets each test inject just the remote calls it exercises.
type fakeClient struct {
	sendCode       func(phone string) error
	signInCode     func(code string) (*telegram.User, error)
	signInPassword func(password string) (*telegram.User, error)
	signInBotToken func(token string) (*telegram.User, error)
	signUp         func(code, firstName, lastName string) (*telegram.User, error)
	getMe          func() (*telegram.User, error)
	search         func(query string, limit int) ([]telegram.User, error)
	getEntity      func(identifier string) (*telegram.Entity, error)
	joinChannel    func(channel *telegram.Entity) error
	checkInvite    func(hash string) (*telegram.ChatInvite, error)
	importInvite   func(hash string) error
	logOut         func() error
}

func (c *fakeClient) Connect(ctx context.Context) error { return nil }
func (c *fakeClient) Authorized(ctx context.Context) (bool, error) { return true, nil }

func (c *fakeClient) SendCodeRequest(ctx context.Context, phone string) error {
	return c.sendCode(phone)
}

func (c *fakeClient) SignInCode(ctx context.Context, code string) (*telegram.User, error) {
	return c.signInCode(code)
}

func (c *fakeClient) SignInPassword(ctx context.Context, password string) (*telegram.User, error) {
	return c.signInPassword(password)
}

func (c *fakeClient) SignInBotToken(ctx context.Context, token string) (*telegram.User, error) {
	return c.signInBotToken(token)
}

func (c *fakeClient) SignUp(ctx context.Context, code, firstName, lastName string) (*telegram.User, error) {
	return c.signUp(code, firstName, lastName)
}

func (c *fakeClient) GetMe(ctx context.Context) (*telegram.User, error) {
	return c.getMe()
}

func (c *fakeClient) Search(ctx context.Context, query string, limit int) ([]telegram.User, error) {
	return c.search(query, limit)
}

func (c *fakeClient) GetEntity(ctx context.Context, identifier string) (*telegram.Entity, error) {
	return c.getEntity(identifier)
}

func (c *fakeClient) JoinChannel(ctx context.Context, channel *telegram.Entity) error {
	return c.joinChannel(channel)
}

func (c *fakeClient) CheckInvite(ctx context.Context, hash string) (*telegram.ChatInvite, error) {
	return c.checkInvite(hash)
}

func (c *fakeClient) ImportInvite(ctx context.Context, hash string) error {
	return c.importInvite(hash)
}

func (c *fakeClient) LogOut(ctx context.Context) error { return c.logOut() }
func (c *fakeClient) Disconnect() error { return nil }

type fakeUser struct {
	mxid     string
	mu       sync.Mutex
	loggedIn bool
	client   *fakeClient
	status   *Continuation

	// postLogin receives the signed-in user; buffered so the detached
	// post-login goroutine never blocks.
	postLogin chan *telegram.User
	logOutErr error
}

func newFakeUser(client *fakeClient) *fakeUser {
	return &fakeUser{
		mxid:      "@tester:example.com",
		client:    client,
		postLogin: make(chan *telegram.User, 1),
	}
}

func (u *fakeUser) MXID() string { return u.mxid }
func (u *fakeUser) Lock() { u.mu.Lock() }
func (u *fakeUser) Unlock() { u.mu.Unlock() }

func (u *fakeUser) LoggedIn(ctx context.Context) bool { return u.loggedIn }
func (u *fakeUser) Client() telegram.Client { return u.client }

func (u *fakeUser) EnsureStarted(ctx context.Context, evenIfNoSession bool) error {
	return nil
}

func (u *fakeUser) CommandStatus() *Continuation { return u.status }
func (u *fakeUser) SetCommandStatus(s *Continuation) { u.status = s }

func (u *fakeUser) PostLogin(ctx context.Context, me *telegram.User) error {
	u.loggedIn = true
	u.postLogin <- me
	return nil
}

func (u *fakeUser) LogOut(ctx context.Context) error {
	if u.logOutErr != nil {
		return u.logOutErr
	}
	u.loggedIn = false
	return nil
}

type fakeBot struct{}

func (fakeBot) ID() int64 { return 987654 }
func (fakeBot) Username() string { return "relaybot" }
func (fakeBot) Displayname() string { return "Relay Bot" }

package telegram

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gotd/contrib/bg"
	"github.com/gotd/td/session"
	tdclient "github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
)

// Config holds the MTProto application credentials shared by all per-user
// clients.
type Config struct {
	APIID      int
	APIHash    string
	SessionDir string
}

// NewFactory returns a Factory producing gotd-backed clients with one
// persisted session file per bridge user.
func NewFactory(cfg Config) Factory {
	return func(userID string) Client {
		return &gotdClient{cfg: cfg, userID: userID}
	}
}

type gotdClient struct {
	cfg    Config
	userID string

	mu     sync.Mutex
	client *tdclient.Client
	stop   bg.StopFunc

	// set by SendCodeRequest, consumed by SignInCode/SignUp
	phone    string
	codeHash string
}

func (c *gotdClient) sessionPath() string {
	name := strings.NewReplacer(":", "_", "@", "", "/", "_").Replace(c.userID)
	return filepath.Join(c.cfg.SessionDir, name+".session")
}

func (c *gotdClient) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		return nil
	}

	if err := os.MkdirAll(c.cfg.SessionDir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	client := tdclient.NewClient(c.cfg.APIID, c.cfg.APIHash, tdclient.Options{
		SessionStorage: &session.FileStorage{Path: c.sessionPath()},
	})
	stop, err := bg.Connect(client)
	if err != nil {
		return fmt.Errorf("connect mtproto: %w", err)
	}

	c.client = client
	c.stop = stop
	return nil
}

func (c *gotdClient) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return nil
	}
	stop := c.stop
	c.client = nil
	c.stop = nil
	return stop()
}

func (c *gotdClient) live() (*tdclient.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return nil, fmt.Errorf("telegram client for %s is not connected", c.userID)
	}
	return c.client, nil
}

func (c *gotdClient) api() (*tg.Client, error) {
	client, err := c.live()
	if err != nil {
		return nil, err
	}
	return client.API(), nil
}

func (c *gotdClient) Authorized(ctx context.Context) (bool, error) {
	client, err := c.live()
	if err != nil {
		return false, nil
	}
	status, err := client.Auth().Status(ctx)
	if err != nil {
		return false, classify(err)
	}
	return status.Authorized, nil
}

func (c *gotdClient) SendCodeRequest(ctx context.Context, phone string) error {
	client, err := c.live()
	if err != nil {
		return err
	}
	sent, err := client.Auth().SendCode(ctx, phone, auth.SendCodeOptions{})
	if err != nil {
		return classify(err)
	}
	code, ok := sent.(*tg.AuthSentCode)
	if !ok {
		return fmt.Errorf("unexpected sent code type %T", sent)
	}

	c.mu.Lock()
	c.phone = phone
	c.codeHash = code.PhoneCodeHash
	c.mu.Unlock()
	return nil
}

func (c *gotdClient) SignInCode(ctx context.Context, code string) (*User, error) {
	client, err := c.live()
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	phone, codeHash := c.phone, c.codeHash
	c.mu.Unlock()

	a, err := client.Auth().SignIn(ctx, phone, code, codeHash)
	if err != nil {
		return nil, classify(err)
	}
	return authUser(a)
}

func (c *gotdClient) SignInPassword(ctx context.Context, password string) (*User, error) {
	client, err := c.live()
	if err != nil {
		return nil, err
	}
	a, err := client.Auth().Password(ctx, password)
	if err != nil {
		return nil, classify(err)
	}
	return authUser(a)
}

func (c *gotdClient) SignInBotToken(ctx context.Context, token string) (*User, error) {
	client, err := c.live()
	if err != nil {
		return nil, err
	}
	a, err := client.Auth().Bot(ctx, token)
	if err != nil {
		return nil, classify(err)
	}
	return authUser(a)
}

func (c *gotdClient) SignUp(ctx context.Context, code, firstName, lastName string) (*User, error) {
	client, err := c.live()
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	phone, codeHash := c.phone, c.codeHash
	c.mu.Unlock()

	// MTProto requires an initial sign-in attempt with the code before
	// sign-up is accepted for an unoccupied number.
	if _, err := client.Auth().SignIn(ctx, phone, code, codeHash); err != nil {
		if !signUpRequired(err) {
			return nil, classify(err)
		}
	}

	a, err := client.Auth().SignUp(ctx, auth.SignUp{
		PhoneNumber:   phone,
		PhoneCodeHash: codeHash,
		FirstName:     firstName,
		LastName:      lastName,
	})
	if err != nil {
		return nil, classify(err)
	}
	return authUser(a)
}

func (c *gotdClient) GetMe(ctx context.Context) (*User, error) {
	client, err := c.live()
	if err != nil {
		return nil, err
	}
	self, err := client.Self(ctx)
	if err != nil {
		return nil, classify(err)
	}
	return convertUser(self), nil
}

func (c *gotdClient) Search(ctx context.Context, query string, limit int) ([]User, error) {
	api, err := c.api()
	if err != nil {
		return nil, err
	}
	found, err := api.ContactsSearch(ctx, &tg.ContactsSearchRequest{Q: query, Limit: limit})
	if err != nil {
		return nil, classify(err)
	}
	users := make([]User, 0, len(found.Users))
	for _, uc := range found.Users {
		if u, ok := uc.(*tg.User); ok {
			users = append(users, *convertUser(u))
		}
	}
	return users, nil
}

func (c *gotdClient) GetEntity(ctx context.Context, identifier string) (*Entity, error) {
	api, err := c.api()
	if err != nil {
		return nil, err
	}
	username := strings.TrimPrefix(identifier, "@")
	resolved, err := api.ContactsResolveUsername(ctx, username)
	if err != nil {
		return nil, classify(err)
	}
	for _, uc := range resolved.Users {
		if u, ok := uc.(*tg.User); ok {
			return &Entity{
				ID:         u.ID,
				AccessHash: u.AccessHash,
				Kind:       EntityUser,
				Username:   u.Username,
				FirstName:  u.FirstName,
				LastName:   u.LastName,
			}, nil
		}
	}
	for _, cc := range resolved.Chats {
		switch chat := cc.(type) {
		case *tg.Channel:
			return &Entity{
				ID:         chat.ID,
				AccessHash: chat.AccessHash,
				Kind:       EntityChannel,
				Username:   chat.Username,
				Title:      chat.Title,
			}, nil
		case *tg.Chat:
			return &Entity{ID: chat.ID, Kind: EntityChat, Title: chat.Title}, nil
		}
	}
	return nil, nil
}

func (c *gotdClient) JoinChannel(ctx context.Context, channel *Entity) error {
	api, err := c.api()
	if err != nil {
		return err
	}
	_, err = api.ChannelsJoinChannel(ctx, &tg.InputChannel{
		ChannelID:  channel.ID,
		AccessHash: channel.AccessHash,
	})
	return classify(err)
}

func (c *gotdClient) CheckInvite(ctx context.Context, hash string) (*ChatInvite, error) {
	api, err := c.api()
	if err != nil {
		return nil, err
	}
	res, err := api.MessagesCheckChatInvite(ctx, hash)
	if err != nil {
		return nil, classify(err)
	}
	switch invite := res.(type) {
	case *tg.ChatInvite:
		return &ChatInvite{
			Title:       invite.Title,
			MemberCount: invite.ParticipantsCount,
			Broadcast:   invite.Broadcast,
		}, nil
	case *tg.ChatInviteAlready:
		info := &ChatInvite{}
		if chat, ok := invite.Chat.(*tg.Channel); ok {
			info.Title = chat.Title
			info.AlreadyInIDs = append(info.AlreadyInIDs, chat.ID)
		} else if chat, ok := invite.Chat.(*tg.Chat); ok {
			info.Title = chat.Title
			info.AlreadyInIDs = append(info.AlreadyInIDs, chat.ID)
		}
		return info, nil
	default:
		return &ChatInvite{}, nil
	}
}

func (c *gotdClient) ImportInvite(ctx context.Context, hash string) error {
	api, err := c.api()
	if err != nil {
		return err
	}
	_, err = api.MessagesImportChatInvite(ctx, hash)
	return classify(err)
}

func (c *gotdClient) LogOut(ctx context.Context) error {
	api, err := c.api()
	if err != nil {
		return err
	}
	if _, err := api.AuthLogOut(ctx); err != nil {
		return classify(err)
	}
	if err := c.Disconnect(); err != nil {
		return err
	}
	return os.Remove(c.sessionPath())
}

func authUser(a *tg.AuthAuthorization) (*User, error) {
	u, ok := a.User.(*tg.User)
	if !ok {
		return nil, fmt.Errorf("authorization carried no user (%T)", a.User)
	}
	return convertUser(u), nil
}

func convertUser(u *tg.User) *User {
	return &User{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.Username,
		Phone:     u.Phone,
		Bot:       u.Bot,
	}
}

var rpcKinds = map[string]Kind{
	"PHONE_CODE_INVALID":                KindPhoneCodeInvalid,
	"PHONE_CODE_EXPIRED":                KindPhoneCodeExpired,
	"SESSION_PASSWORD_NEEDED":           KindSessionPasswordNeeded,
	"PASSWORD_HASH_INVALID":             KindPasswordHashInvalid,
	"PHONE_NUMBER_OCCUPIED":             KindPhoneNumberOccupied,
	"PHONE_NUMBER_UNOCCUPIED":           KindPhoneNumberUnoccupied,
	"PHONE_NUMBER_BANNED":               KindPhoneNumberBanned,
	"PHONE_NUMBER_FLOOD":                KindPhoneNumberFlood,
	"PHONE_NUMBER_APP_SIGNUP_FORBIDDEN": KindAppSignupForbidden,
	"FIRSTNAME_INVALID":                 KindFirstNameInvalid,
	"INVITE_HASH_INVALID":               KindInviteHashInvalid,
	"INVITE_HASH_EXPIRED":               KindInviteHashExpired,
	"USER_ALREADY_PARTICIPANT":          KindAlreadyParticipant,
}

// classify maps raw MTProto errors onto the bridge's taxonomy. Unrecognized
// errors pass through untouched.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errorsIsPasswordNeeded(err) {
		return NewError(KindSessionPasswordNeeded, err)
	}
	if d, ok := tgerr.AsFloodWait(err); ok {
		return NewFloodWait(d, err)
	}
	for code, kind := range rpcKinds {
		if tgerr.Is(err, code) {
			return NewError(kind, err)
		}
	}
	return err
}

func errorsIsPasswordNeeded(err error) bool {
	return errors.Is(err, auth.ErrPasswordAuthNeeded) || tgerr.Is(err, "SESSION_PASSWORD_NEEDED")
}

// signUpRequired reports whether a sign-in attempt failed because the phone
// number has no account yet.
func signUpRequired(err error) bool {
	return errors.Is(err, &auth.SignUpRequired{})
}

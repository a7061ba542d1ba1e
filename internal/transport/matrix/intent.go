package matrix

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/sandevgo/matgram/internal/core"
	"github.com/sandevgo/matgram/pkg/retry"
)

// Intent sends events to the homeserver as the bridge bot.
type Intent struct {
	address string
	asToken string
	userID  string

	http    *http.Client
	retrier *retry.Retrier
	txnID   atomic.Int64
}

func NewIntent(cfg core.HomeserverConfig) *Intent {
	in := &Intent{
		address: cfg.GetAddress(),
		asToken: cfg.GetASToken(),
		userID:  cfg.BotMXID(),
		http:    &http.Client{Timeout: 30 * time.Second},
		retrier: retry.NewDefaultRetrier(),
	}
	in.txnID.Store(time.Now().UnixMilli())
	return in
}

// SendNotice posts an m.notice message to a room. formattedBody may be empty
// or equal to body, in which case the plain body is sent alone.
func (in *Intent) SendNotice(ctx context.Context, roomID, body, formattedBody string) error {
	content := MessageContent{
		MsgType: "m.notice",
		Body:    body,
	}
	if formattedBody != "" && formattedBody != body {
		content.Format = "org.matrix.custom.html"
		content.FormattedBody = formattedBody
	}
	path := fmt.Sprintf("/_matrix/client/v3/rooms/%s/send/m.room.message/%d",
		url.PathEscape(roomID), in.txnID.Add(1))
	return in.do(ctx, http.MethodPut, path, content)
}

// JoinRoom accepts an invite on behalf of the bridge bot.
func (in *Intent) JoinRoom(ctx context.Context, roomID string) error {
	path := "/_matrix/client/v3/join/" + url.PathEscape(roomID)
	return in.do(ctx, http.MethodPost, path, struct{}{})
}

func (in *Intent) do(ctx context.Context, method, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return in.retrier.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, method, in.address+path, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+in.asToken)

		resp, err := in.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s: homeserver returned %d: %s", method, path, resp.StatusCode, msg)
	})
}

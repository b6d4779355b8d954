package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"corp_edu_backend/internal/model"
	"corp_edu_backend/pkg/logger"
)

const typeNotification = "NOTIFICATION"

type message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type Options struct {
	URL   string
	Token string
	// ReconnectEvery 两次重连之间的最小间隔
	ReconnectEvery time.Duration
	Dialer         *websocket.Dialer
}

// Subscribe 持续接收当前用户的通知并合并到 inbox，断线后按限速重连，直到 ctx 结束。
// onNew 在每条新增通知合并后调用，可以为 nil。
func Subscribe(ctx context.Context, opts Options, inbox *Inbox, onNew func(model.Notification)) error {
	if opts.URL == "" {
		return errors.New("realtime: url is required")
	}
	if opts.ReconnectEvery <= 0 {
		opts.ReconnectEvery = 2 * time.Second
	}
	dialer := opts.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	limiter := rate.NewLimiter(rate.Every(opts.ReconnectEvery), 1)

	for {
		if err := limiter.Wait(ctx); err != nil {
			return ctx.Err()
		}
		err := consume(ctx, dialer, opts, inbox, onNew)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Log.Warn("Realtime feed disconnected, reconnecting", zap.Error(err))
	}
}

func consume(ctx context.Context, dialer *websocket.Dialer, opts Options, inbox *Inbox, onNew func(model.Notification)) error {
	header := http.Header{}
	if opts.Token != "" {
		header.Set("Authorization", "Bearer "+opts.Token)
	}
	conn, _, err := dialer.DialContext(ctx, opts.URL, header)
	if err != nil {
		return err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var msg message
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type != typeNotification {
			continue
		}
		var n model.Notification
		if err := json.Unmarshal(msg.Data, &n); err != nil {
			logger.Log.Warn("Drop malformed notification", zap.Error(err))
			continue
		}
		if inbox.Merge(n) && onNew != nil {
			onNew(n)
		}
	}
}

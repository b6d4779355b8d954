package service

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"net/http"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"corp_edu_backend/internal/model"
	"corp_edu_backend/pkg/logger"
	"corp_edu_backend/pkg/monitoring"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	shardCount     = 32
	onlineTTL      = 2 * time.Minute // 在线状态过期时间
	sendBuffer     = 64

	notificationChannel = "notification_channel"
	onlineKeyPrefix     = "user:online:"

	// WSTypeNotification 下行消息类型
	WSTypeNotification = "NOTIFICATION"
	WSTypeUnreadCount  = "UNREAD_COUNT"
)

type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Envelope 实例间转发的消息
type Envelope struct {
	TargetUsers []string        `json:"targetUsers"`
	Payload     json.RawMessage `json:"payload"`
}

// Broker 把消息分发到所有实例；单实例部署用 LocalBroker
type Broker interface {
	Publish(ctx context.Context, env Envelope) error
	Subscribe(ctx context.Context, handle func(Envelope))
}

type RedisBroker struct {
	rdb *redis.Client
}

func NewRedisBroker(rdb *redis.Client) *RedisBroker {
	return &RedisBroker{rdb: rdb}
}

func (b *RedisBroker) Publish(ctx context.Context, env Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, notificationChannel, payload).Err()
}

func (b *RedisBroker) Subscribe(ctx context.Context, handle func(Envelope)) {
	pubsub := b.rdb.Subscribe(ctx, notificationChannel)
	go func() {
		defer pubsub.Close()
		for msg := range pubsub.Channel() {
			var env Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				logger.Log.Error("PubSub unmarshal error", zap.Error(err))
				continue
			}
			handle(env)
		}
	}()
}

// LocalBroker 进程内直接投递
type LocalBroker struct {
	mu      sync.RWMutex
	handler func(Envelope)
}

func NewLocalBroker() *LocalBroker { return &LocalBroker{} }

func (b *LocalBroker) Publish(_ context.Context, env Envelope) error {
	b.mu.RLock()
	h := b.handler
	b.mu.RUnlock()
	if h != nil {
		h(env)
	}
	return nil
}

func (b *LocalBroker) Subscribe(_ context.Context, handle func(Envelope)) {
	b.mu.Lock()
	b.handler = handle
	b.mu.Unlock()
}

type Client struct {
	Hub     *NotificationHub
	Conn    *websocket.Conn
	Send    chan []byte
	UserID  string
	Limiter *rate.Limiter
}

// readPump 只处理心跳；客户端上行消息被限流后丢弃
func (c *Client) readPump() {
	defer func() {
		// Stop 之后 Run 已退出，不再有人接收注销
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.ctx.Done():
		}
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Warn("WebSocket unexpected close", zap.Error(err), zap.String("userId", c.UserID))
			}
			return
		}
		if !c.Limiter.Allow() {
			continue
		}
		monitoring.NotificationsPushed.WithLabelValues("client", "in").Inc()
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// 每条通知单独成帧，客户端按帧解析
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type shard struct {
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
}

// NotificationHub 管理通知 websocket 连接。同一用户可以有多个连接（多个标签页）。
type NotificationHub struct {
	shards     [shardCount]*shard
	register   chan *Client
	unregister chan *Client
	broker     Broker
	redis      *redis.Client
	upgrader   websocket.Upgrader
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewNotificationHub rdb 为 nil 时使用进程内 broker，且不记录在线状态
func NewNotificationHub(rdb *redis.Client, checkOrigin func(*http.Request) bool) *NotificationHub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &NotificationHub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		redis:      rdb,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	if rdb != nil {
		h.broker = NewRedisBroker(rdb)
	} else {
		h.broker = NewLocalBroker()
	}
	for i := 0; i < shardCount; i++ {
		h.shards[i] = &shard{clients: make(map[string]map[*Client]struct{})}
	}
	return h
}

func (h *NotificationHub) getShard(userID string) *shard {
	f := fnv.New32a()
	f.Write([]byte(userID))
	return h.shards[f.Sum32()%shardCount]
}

func (h *NotificationHub) Run() {
	defer close(h.done)
	h.broker.Subscribe(h.ctx, func(env Envelope) {
		h.deliverLocal(env.TargetUsers, env.Payload)
	})

	// 批量写入在线状态
	ticker := time.NewTicker(500 * time.Millisecond)
	heartbeatTicker := time.NewTicker(1 * time.Minute)
	defer func() {
		ticker.Stop()
		heartbeatTicker.Stop()
	}()

	type statusUpdate struct {
		userID string
		online bool
	}
	var pending []statusUpdate

	for {
		select {
		case <-h.ctx.Done():
			return

		case client := <-h.register:
			s := h.getShard(client.UserID)
			s.mu.Lock()
			if s.clients[client.UserID] == nil {
				s.clients[client.UserID] = make(map[*Client]struct{})
			}
			s.clients[client.UserID][client] = struct{}{}
			s.mu.Unlock()
			pending = append(pending, statusUpdate{client.UserID, true})
			monitoring.OnlineUsers.Inc()

		case client := <-h.unregister:
			s := h.getShard(client.UserID)
			s.mu.Lock()
			last := false
			if set, ok := s.clients[client.UserID]; ok {
				if _, ok := set[client]; ok {
					delete(set, client)
					close(client.Send)
					monitoring.OnlineUsers.Dec()
				}
				if len(set) == 0 {
					delete(s.clients, client.UserID)
					last = true
				}
			}
			s.mu.Unlock()
			if last {
				pending = append(pending, statusUpdate{client.UserID, false})
			}

		case <-heartbeatTicker.C:
			h.refreshOnlineStatus()

		case <-ticker.C:
			if len(pending) == 0 || h.redis == nil {
				pending = pending[:0]
				continue
			}
			pipe := h.redis.Pipeline()
			for _, u := range pending {
				if u.online {
					pipe.Set(h.ctx, onlineKeyPrefix+u.userID, "true", onlineTTL)
				} else {
					pipe.Del(h.ctx, onlineKeyPrefix+u.userID)
				}
			}
			if _, err := pipe.Exec(h.ctx); err != nil {
				logger.Log.Error("Redis pipeline error", zap.Error(err))
			}
			pending = pending[:0]
		}
	}
}

// refreshOnlineStatus 为本实例在线用户续期
func (h *NotificationHub) refreshOnlineStatus() {
	if h.redis == nil {
		return
	}
	pipe := h.redis.Pipeline()
	count := 0
	for _, s := range h.shards {
		s.mu.RLock()
		for userID := range s.clients {
			pipe.Expire(h.ctx, onlineKeyPrefix+userID, onlineTTL)
			count++
		}
		s.mu.RUnlock()
	}
	if count > 0 {
		if _, err := pipe.Exec(h.ctx); err != nil {
			logger.Log.Warn("Refresh online status failed", zap.Error(err))
		}
	}
}

// Publish 实现 Publisher：每条通知推送给其接收人
func (h *NotificationHub) Publish(ctx context.Context, items []model.Notification) {
	for _, n := range items {
		payload, err := json.Marshal(WSMessage{Type: WSTypeNotification, Data: n})
		if err != nil {
			logger.Log.Error("Marshal notification failed", zap.Error(err))
			continue
		}
		if err := h.broker.Publish(ctx, Envelope{TargetUsers: []string{n.UserID}, Payload: payload}); err != nil {
			logger.Log.Warn("Publish notification failed",
				zap.String("userId", n.UserID),
				zap.String("notificationId", n.ID),
				zap.Error(err))
			continue
		}
		monitoring.NotificationsPushed.WithLabelValues(string(n.Type), "out").Inc()
	}
}

func (h *NotificationHub) deliverLocal(userIDs []string, payload []byte) {
	for _, id := range userIDs {
		s := h.getShard(id)
		s.mu.RLock()
		for client := range s.clients[id] {
			select {
			case client.Send <- payload:
			default:
				// 缓冲区已满，客户端重连后通过列表接口补齐
			}
		}
		s.mu.RUnlock()
	}
}

func (h *NotificationHub) IsUserOnline(ctx context.Context, userID string) bool {
	s := h.getShard(userID)
	s.mu.RLock()
	_, ok := s.clients[userID]
	s.mu.RUnlock()
	if ok || h.redis == nil {
		return ok
	}
	val, err := h.redis.Get(ctx, onlineKeyPrefix+userID).Result()
	return err == nil && val == "true"
}

// Stop 关闭所有连接并清理在线状态
func (h *NotificationHub) Stop() {
	logger.Log.Info("NotificationHub stopping")
	h.cancel()
	<-h.done

	var userIDs []string
	closed := 0
	for _, s := range h.shards {
		s.mu.Lock()
		for userID, set := range s.clients {
			userIDs = append(userIDs, userID)
			for client := range set {
				close(client.Send)
				closed++
			}
			delete(s.clients, userID)
		}
		s.mu.Unlock()
	}

	if h.redis != nil && len(userIDs) > 0 {
		pipe := h.redis.Pipeline()
		for _, id := range userIDs {
			pipe.Del(context.Background(), onlineKeyPrefix+id)
		}
		pipe.Exec(context.Background())
	}

	monitoring.OnlineUsers.Set(0)
	logger.Log.Info("NotificationHub stopped", zap.Int("closedConnections", closed))
}

// ServeWs 升级连接并注册客户端
func (h *NotificationHub) ServeWs(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Warn("WebSocket upgrade failed", zap.Error(err), zap.String("userId", userID))
		return
	}
	client := &Client{
		Hub:     h,
		Conn:    conn,
		Send:    make(chan []byte, sendBuffer),
		UserID:  userID,
		Limiter: rate.NewLimiter(rate.Limit(5), 10),
	}
	select {
	case h.register <- client:
	case <-h.ctx.Done():
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

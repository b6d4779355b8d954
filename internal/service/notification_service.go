package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"corp_edu_backend/internal/apperr"
	"corp_edu_backend/internal/model"
	"corp_edu_backend/pkg/logger"
)

const notificationListLimit = 100

// 通知消息模板
const (
	approvalMessage = "Welcome to the platform! Your registration has been approved."
)

func certificateMessage(courseTitle string) string {
	return `Congratulations! You earned a certificate for "` + courseTitle + `".`
}

func badgeMessage(b model.Badge) string {
	return `You earned the "` + b.Name + `" badge and ` + itoa(b.Points) + ` points!`
}

func newCourseMessage(courseTitle string) string {
	return `A new course has been added: "` + courseTitle + `"`
}

// NotificationService 负责通知的创建、查询与推送。
// Persist 只写库，调用方在事务提交后再调用 Publish，避免推送未提交的数据。
type NotificationService struct {
	store     notificationStore
	users     userStore
	tx        txRunner
	publisher Publisher
	now       Clock
}

func NewNotificationService(store notificationStore, users userStore, tx txRunner, publisher Publisher) *NotificationService {
	return &NotificationService{store: store, users: users, tx: tx, publisher: publisher, now: time.Now}
}

// Build 生成一条未读通知，不落库
func (s *NotificationService) Build(userID string, typ model.NotificationType, message string) model.Notification {
	return model.NewNotification(userID, typ, message, s.now())
}

// Persist 在当前事务中写入通知
func (s *NotificationService) Persist(ctx context.Context, items []model.Notification) error {
	if len(items) == 0 {
		return nil
	}
	return s.store.CreateBatch(ctx, items)
}

func (s *NotificationService) Publish(ctx context.Context, items []model.Notification) {
	if s.publisher == nil || len(items) == 0 {
		return
	}
	s.publisher.Publish(ctx, items)
}

// Send 给单个用户发送通知
func (s *NotificationService) Send(ctx context.Context, userID string, typ model.NotificationType, message string) (*model.Notification, error) {
	if err := validateNotification(typ, message); err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	n := s.Build(userID, typ, message)
	if err := s.store.CreateBatch(ctx, []model.Notification{n}); err != nil {
		return nil, err
	}
	s.Publish(ctx, []model.Notification{n})
	return &n, nil
}

// Broadcast 发给所有非管理员用户，返回发送数量
func (s *NotificationService) Broadcast(ctx context.Context, typ model.NotificationType, message string) (int, error) {
	if err := validateNotification(typ, message); err != nil {
		return 0, err
	}
	items, err := s.fanOut(ctx, typ, message)
	if err != nil {
		return 0, err
	}
	if err := s.store.CreateBatch(ctx, items); err != nil {
		return 0, err
	}
	s.Publish(ctx, items)
	logger.Log.Info("Notification broadcast",
		zap.String("type", string(typ)),
		zap.Int("recipients", len(items)))
	return len(items), nil
}

// fanOut 为每个非管理员用户生成一条通知
func (s *NotificationService) fanOut(ctx context.Context, typ model.NotificationType, message string) ([]model.Notification, error) {
	ids, err := s.users.LearnerIDs(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]model.Notification, 0, len(ids))
	for _, id := range ids {
		items = append(items, s.Build(id, typ, message))
	}
	return items, nil
}

// AdminMessage 管理员消息：userID 为空或为 "all" 时发给所有学员
func (s *NotificationService) AdminMessage(ctx context.Context, userID, message string) (int, error) {
	if userID == "" || userID == "all" {
		return s.Broadcast(ctx, model.NotificationAdminMessage, message)
	}
	if _, err := s.Send(ctx, userID, model.NotificationAdminMessage, message); err != nil {
		return 0, err
	}
	return 1, nil
}

// List 按时间倒序返回通知（保持查看前的已读状态），随后全部标记为已读
func (s *NotificationService) List(ctx context.Context, userID string) ([]model.Notification, error) {
	items, err := s.store.ListByUser(ctx, userID, notificationListLimit)
	if err != nil {
		return nil, err
	}
	if hasUnread(items) {
		if _, err := s.store.MarkAllRead(ctx, userID); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.store.MarkAllRead(ctx, userID)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.store.CountUnread(ctx, userID)
}

func hasUnread(items []model.Notification) bool {
	for _, n := range items {
		if !n.Read {
			return true
		}
	}
	return false
}

func validateNotification(typ model.NotificationType, message string) error {
	if !typ.Valid() {
		return apperr.Validation("unknown notification type %q", typ)
	}
	if strings.TrimSpace(message) == "" {
		return apperr.Validation("message is required")
	}
	return nil
}

package repository

import (
	"context"
	"corp_edu_backend/internal/model"

	"gorm.io/gorm"
)

type NotificationRepository struct {
	DB *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

func (r *NotificationRepository) CreateBatch(ctx context.Context, items []model.Notification) error {
	if len(items) == 0 {
		return nil
	}
	return wrap("create notifications", conn(ctx, r.DB).CreateInBatches(items, 200).Error, nil)
}

// ListByUser 最新的在前
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	q := conn(ctx, r.DB).Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var items []model.Notification
	err := q.Find(&items).Error
	return items, wrap("list notifications", err, nil)
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res := conn(ctx, r.DB).Model(&model.Notification{}).
		Where(map[string]interface{}{"user_id": userID, "read": false}).
		Update("read", true)
	return res.RowsAffected, wrap("mark notifications read", res.Error, nil)
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := conn(ctx, r.DB).Model(&model.Notification{}).
		Where(map[string]interface{}{"user_id": userID, "read": false}).
		Count(&n).Error
	return n, wrap("count unread notifications", err, nil)
}

package service

import (
	"context"

	"go.uber.org/zap"

	"corp_edu_backend/internal/apperr"
	"corp_edu_backend/pkg/logger"
	"corp_edu_backend/pkg/monitoring"
)

// 积分来源，用于指标标签
const (
	ReasonModule     = "module"
	ReasonCourse     = "course"
	ReasonBadge      = "badge"
	ReasonCorrection = "correction"
)

// LedgerService 积分账本。同一事件只加一次分由调用方保证：
// 调用前先检查模块或课程是否已完成。
type LedgerService struct {
	users userStore
}

func NewLedgerService(users userStore) *LedgerService {
	return &LedgerService{users: users}
}

// Award 原子地增加积分并返回新的总分
func (s *LedgerService) Award(ctx context.Context, userID string, amount int, reason string) (int, error) {
	if amount <= 0 {
		return 0, apperr.Validation("points must be positive")
	}
	total, err := s.users.AddPoints(ctx, userID, amount)
	if err != nil {
		return 0, err
	}
	monitoring.PointsAwarded.WithLabelValues(reason).Add(float64(amount))
	return total, nil
}

// GrantBadges 一次写入所有新徽章及其积分之和
func (s *LedgerService) GrantBadges(ctx context.Context, userID string, badges []string, points int) (int, error) {
	total, err := s.users.GrantBadges(ctx, userID, badges, points)
	if err != nil {
		return 0, err
	}
	for _, id := range badges {
		monitoring.BadgesAwarded.WithLabelValues(id).Inc()
	}
	if points > 0 {
		monitoring.PointsAwarded.WithLabelValues(ReasonBadge).Add(float64(points))
	}
	return total, nil
}

// Correct 管理员修正积分为指定值
func (s *LedgerService) Correct(ctx context.Context, userID string, points int) error {
	if points < 0 {
		return apperr.Validation("points cannot be negative")
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return err
	}
	if err := s.users.SetPoints(ctx, userID, points); err != nil {
		return err
	}
	logger.Log.Info("Points corrected", zap.String("userId", userID), zap.Int("points", points))
	return nil
}

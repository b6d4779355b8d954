package service

import (
	"context"

	"corp_edu_backend/internal/model"
)

type BadgeView struct {
	model.Badge
	Earned bool `json:"earned"`
}

type BadgeService struct {
	users userStore
}

func NewBadgeService(users userStore) *BadgeService {
	return &BadgeService{users: users}
}

// Catalog 全部徽章及当前用户是否已获得
func (s *BadgeService) Catalog(ctx context.Context, userID string) ([]BadgeView, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	defs := model.SortedBadges()
	out := make([]BadgeView, 0, len(defs))
	for _, b := range defs {
		out = append(out, BadgeView{Badge: b, Earned: user.HasBadge(b.ID)})
	}
	return out, nil
}

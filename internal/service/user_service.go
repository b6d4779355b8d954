package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"corp_edu_backend/internal/apperr"
	"corp_edu_backend/internal/model"
	"corp_edu_backend/internal/repository"
	"corp_edu_backend/pkg/logger"
)

const (
	defaultLeaderboardSize = 10
	maxLeaderboardSize     = 100
)

// UserService 用户管理与个人资料
type UserService struct {
	users         userStore
	tx            txRunner
	notifications *NotificationService
	ledger        *LedgerService
	storage       *StorageService
}

func NewUserService(users userStore, tx txRunner, notifications *NotificationService, ledger *LedgerService, storage *StorageService) *UserService {
	return &UserService{users: users, tx: tx, notifications: notifications, ledger: ledger, storage: storage}
}

type CreateUserRequest struct {
	Name     string         `json:"name" validate:"notblank,max=100"`
	Email    string         `json:"email" validate:"required,email,max=100"`
	Password string         `json:"password" validate:"required,min=8,max=72"`
	Role     model.UserRole `json:"role" validate:"required,role"`
}

type UpdateUserRequest struct {
	Name *string         `json:"name" validate:"omitnil,notblank,max=100"`
	Role *model.UserRole `json:"role" validate:"omitnil,role"`
}

type LeaderboardEntry struct {
	Rank            int      `json:"rank"`
	UserID          string   `json:"userId"`
	Name            string   `json:"name"`
	Points          int      `json:"points"`
	Badges          []string `json:"badges"`
	ProfileImageURL string   `json:"profileImageUrl,omitempty"`
}

func (s *UserService) List(ctx context.Context, f repository.UserFilter) ([]model.User, error) {
	return s.users.List(ctx, f)
}

func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	return s.users.FindByID(ctx, id)
}

// Create 管理员创建的账号直接通过审批
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*model.User, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	user := &model.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Role:     req.Role,
		Approved: true,
	}
	if err := createWithPassword(ctx, s.users, user, req.Password); err != nil {
		return nil, err
	}
	logger.Log.Info("User created by admin", zap.String("userId", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

func (s *UserService) Update(ctx context.Context, id string, req UpdateUserRequest) (*model.User, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Role != nil {
		fields["role"] = *req.Role
	}
	if len(fields) > 0 {
		if err := s.users.UpdateProfile(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	return s.users.FindByID(ctx, id)
}

// Approve 审批员工并发送欢迎通知；已审批的用户不会重复通知
func (s *UserService) Approve(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Approved {
		return user, nil
	}

	n := s.notifications.Build(id, model.NotificationApproval, approvalMessage)
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.users.Approve(ctx, id); err != nil {
			return err
		}
		return s.notifications.Persist(ctx, []model.Notification{n})
	})
	if err != nil {
		return nil, err
	}
	s.notifications.Publish(ctx, []model.Notification{n})

	user.Approved = true
	logger.Log.Info("User approved", zap.String("userId", id))
	return user, nil
}

// Delete 不能删除自己
func (s *UserService) Delete(ctx context.Context, actorID, id string) error {
	if actorID == id {
		return apperr.Validation("you cannot delete your own account")
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	if user.ProfileImageURL != "" && s.storage != nil {
		s.storage.DeleteBestEffort(ctx, user.ProfileImageURL)
	}
	return nil
}

func (s *UserService) CorrectPoints(ctx context.Context, id string, points int) error {
	return s.ledger.Correct(ctx, id, points)
}

func (s *UserService) UpdateName(ctx context.Context, id, name string) (*model.User, error) {
	return s.Update(ctx, id, UpdateUserRequest{Name: &name})
}

// UpdateAvatar 上传头像并删除旧文件
func (s *UserService) UpdateAvatar(ctx context.Context, id string, upload Upload) (*model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	url, err := s.storage.SaveImage(ctx, "avatars/"+id, upload)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateProfile(ctx, id, map[string]interface{}{"profile_image_url": url}); err != nil {
		s.storage.DeleteBestEffort(ctx, url)
		return nil, err
	}
	if user.ProfileImageURL != "" {
		s.storage.DeleteBestEffort(ctx, user.ProfileImageURL)
	}
	user.ProfileImageURL = url
	return user, nil
}

// Leaderboard 已审批员工按积分降序，同分按姓名
func (s *UserService) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	users, err := s.users.Leaderboard(ctx, clampLimit(limit, defaultLeaderboardSize, maxLeaderboardSize))
	if err != nil {
		return nil, err
	}
	out := make([]LeaderboardEntry, 0, len(users))
	for i, u := range users {
		out = append(out, LeaderboardEntry{
			Rank:            i + 1,
			UserID:          u.ID,
			Name:            u.Name,
			Points:          u.Points,
			Badges:          u.Badges,
			ProfileImageURL: u.ProfileImageURL,
		})
	}
	return out, nil
}

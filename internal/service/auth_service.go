package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"corp_edu_backend/internal/apperr"
	"corp_edu_backend/internal/config"
	"corp_edu_backend/internal/model"
	"corp_edu_backend/internal/util"
	"corp_edu_backend/pkg/logger"
)

const pendingApprovalMessage = "Your account is pending approval."

var errInvalidCredentials = apperr.Unauthorized("invalid email or password")

type AuthService struct {
	users userStore
	cfg   *config.JWTConfig
	now   Clock
}

func NewAuthService(users userStore, cfg *config.JWTConfig) *AuthService {
	return &AuthService{users: users, cfg: cfg, now: time.Now}
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"notblank,max=100"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Register 自助注册的员工需要管理员审批后才能登录
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	user := &model.User{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.ToLower(strings.TrimSpace(req.Email)),
		Role:  model.RoleEmployee,
	}
	if err := createWithPassword(ctx, s.users, user, req.Password); err != nil {
		return nil, err
	}
	logger.Log.Info("User registered", zap.String("userId", user.ID))
	return user, nil
}

// Login 校验密码；未审批的员工被拒绝
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, errInvalidCredentials
	}
	if !user.CanSignIn() {
		return nil, apperr.Forbidden(pendingApprovalMessage)
	}

	token, err := util.GenerateJWT(user, s.cfg.Secret, s.cfg.ExpireTime)
	if err != nil {
		return nil, err
	}
	if err := s.users.Touch(ctx, user.ID, s.now()); err != nil {
		logger.Log.Warn("Update last seen failed", zap.String("userId", user.ID), zap.Error(err))
	}
	return &LoginResult{Token: token, User: user}, nil
}

// CurrentUser 重新读取用户，令牌签发后被删除或撤销审批的用户会被拒绝
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Unauthorized("account no longer exists")
		}
		return nil, err
	}
	if !user.CanSignIn() {
		return nil, apperr.Forbidden(pendingApprovalMessage)
	}
	return user, nil
}

func createWithPassword(ctx context.Context, users userStore, user *model.User, password string) error {
	if _, err := users.FindByEmail(ctx, user.Email); err == nil {
		return apperr.Conflict("email already registered")
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashed)
	return users.Create(ctx, user)
}

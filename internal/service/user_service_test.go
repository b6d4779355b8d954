package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corp_edu_backend/internal/apperr"
	"corp_edu_backend/internal/config"
	"corp_edu_backend/internal/model"
	"corp_edu_backend/internal/util"
)

const testSecret = "test-secret-with-enough-characters!!"

func newAuth(f *fixture) *AuthService {
	return NewAuthService(fakeUsers{f.db}, &config.JWTConfig{Secret: testSecret, ExpireTime: time.Hour})
}

func newUsers(f *fixture, storage *StorageService) *UserService {
	return NewUserService(fakeUsers{f.db}, fakeTx{f.db}, f.notifications, f.ledger, storage)
}

func TestRegisterThenApproveThenLogin(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	auth := newAuth(f)
	users := newUsers(f, nil)

	u, err := auth.Register(ctx, RegisterRequest{Name: " Ana ", Email: "Ana@Corp.Test", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "Ana", u.Name)
	assert.Equal(t, "ana@corp.test", u.Email)
	assert.Equal(t, model.RoleEmployee, u.Role)
	assert.False(t, u.Approved)
	assert.NotEqual(t, "password123", f.user(u.ID).Password)

	_, err = auth.Login(ctx, "ana@corp.test", "password123")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.Equal(t, pendingApprovalMessage, apperr.Message(err))

	approved, err := users.Approve(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, approved.Approved)

	welcome := f.db.notificationsFor(u.ID, model.NotificationApproval)
	require.Len(t, welcome, 1)
	assert.Equal(t, "Welcome to the platform! Your registration has been approved.", welcome[0].Message)
	assert.Equal(t, 1, f.publisher.count())

	// 重复审批不再发通知
	_, err = users.Approve(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, f.db.notificationsFor(u.ID, model.NotificationApproval), 1)

	res, err := auth.Login(ctx, "ana@corp.test", "password123")
	require.NoError(t, err)
	claims, err := util.ParseJWT(res.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, model.RoleEmployee, claims.Role)
	assert.False(t, f.user(u.ID).LastSeen.IsZero())
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	auth := newAuth(f)

	_, err := auth.Register(ctx, RegisterRequest{Name: "Ana", Email: "ana@corp.test", Password: "password123"})
	require.NoError(t, err)

	_, err = auth.Login(ctx, "ana@corp.test", "wrong-password")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = auth.Login(ctx, "nobody@corp.test", "password123")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	auth := newAuth(f)

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"blank name", RegisterRequest{Name: "  ", Email: "a@corp.test", Password: "password123"}},
		{"bad email", RegisterRequest{Name: "Ana", Email: "not-an-email", Password: "password123"}},
		{"short password", RegisterRequest{Name: "Ana", Email: "a@corp.test", Password: "short"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.Register(ctx, tt.req)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}

	_, err := auth.Register(ctx, RegisterRequest{Name: "Ana", Email: "a@corp.test", Password: "password123"})
	require.NoError(t, err)
	_, err = auth.Register(ctx, RegisterRequest{Name: "Ana 2", Email: "A@corp.test", Password: "password123"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestAdminCreatedUsersAreApproved(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	users := newUsers(f, nil)

	u, err := users.Create(ctx, CreateUserRequest{Name: "Root", Email: "root@corp.test", Password: "password123", Role: model.RoleAdmin})
	require.NoError(t, err)
	assert.True(t, u.Approved)
	assert.True(t, u.IsAdmin())

	_, err = users.Create(ctx, CreateUserRequest{Name: "X", Email: "x@corp.test", Password: "password123", Role: "Owner"})
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, err.Error(), "role must be Employee or Admin")
}

func TestUpdateAndDeleteUser(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	users := newUsers(f, nil)
	admin := f.addUser("Root", model.RoleAdmin)
	ana := f.addUser("Ana", model.RoleEmployee)

	name := "Ana Maria"
	role := model.RoleAdmin
	updated, err := users.Update(ctx, ana.ID, UpdateUserRequest{Name: &name, Role: &role})
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", updated.Name)
	assert.Equal(t, model.RoleAdmin, updated.Role)

	err = users.Delete(ctx, admin.ID, admin.ID)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	require.NoError(t, users.Delete(ctx, admin.ID, ana.ID))
	_, err = users.Get(ctx, ana.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPointsCorrection(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	users := newUsers(f, nil)
	ana := f.addUser("Ana", model.RoleEmployee)

	require.NoError(t, users.CorrectPoints(ctx, ana.ID, 42))
	assert.Equal(t, 42, f.user(ana.ID).Points)

	assert.ErrorIs(t, users.CorrectPoints(ctx, ana.ID, -1), apperr.ErrValidation)
	assert.Equal(t, 42, f.user(ana.ID).Points)
}

func TestLeaderboardRanksApprovedEmployees(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	users := newUsers(f, nil)

	f.addUser("Root", model.RoleAdmin)
	for name, pts := range map[string]int{"Bea": 50, "Ana": 50, "Cy": 120} {
		u := f.addUser(name, model.RoleEmployee)
		f.setUser(u.ID, func(u *model.User) { u.Points = pts })
	}
	pending := f.addUser("Dee", model.RoleEmployee)
	f.setUser(pending.ID, func(u *model.User) { u.Approved = false; u.Points = 999 })

	board, err := users.Leaderboard(ctx, 0)
	require.NoError(t, err)
	require.Len(t, board, 3)
	assert.Equal(t, []string{"Cy", "Ana", "Bea"}, []string{board[0].Name, board[1].Name, board[2].Name})
	assert.Equal(t, []int{1, 2, 3}, []int{board[0].Rank, board[1].Rank, board[2].Rank})

	top, err := users.Leaderboard(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}

func TestUpdateAvatarReplacesOldImage(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	storage := newLocalStorage(t)
	users := newUsers(f, storage)
	ana := f.addUser("Ana", model.RoleEmployee)

	first, err := users.UpdateAvatar(ctx, ana.ID, pngUpload("me.png"))
	require.NoError(t, err)
	require.NotEmpty(t, first.ProfileImageURL)
	firstKey, ok := storage.KeyOf(first.ProfileImageURL)
	require.True(t, ok)
	assert.FileExists(t, storage.localPath(firstKey))

	second, err := users.UpdateAvatar(ctx, ana.ID, pngUpload("me2.png"))
	require.NoError(t, err)
	assert.NotEqual(t, first.ProfileImageURL, second.ProfileImageURL)
	assert.NoFileExists(t, storage.localPath(firstKey))
	assert.Equal(t, second.ProfileImageURL, f.user(ana.ID).ProfileImageURL)

	_, err = users.UpdateAvatar(ctx, ana.ID, Upload{Filename: "me.png", Size: 4, Body: bytes.NewReader([]byte("text"))})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

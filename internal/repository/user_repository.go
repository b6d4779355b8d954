package repository

import (
	"context"
	"corp_edu_backend/internal/apperr"
	"corp_edu_backend/internal/model"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// UserFilter 管理端用户列表筛选
type UserFilter struct {
	Role     model.UserRole
	Approved *bool
	Keyword  string
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if user.Badges == nil {
		user.Badges = []string{}
	}
	if user.LastSeen.IsZero() {
		user.LastSeen = time.Now()
	}
	return wrap("create user", conn(ctx, r.DB).Create(user).Error, nil)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := conn(ctx, r.DB).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, wrap("find user", err, apperr.ErrUserNotFound)
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := conn(ctx, r.DB).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		return nil, wrap("find user by email", err, apperr.ErrUserNotFound)
	}
	return &user, nil
}

func (r *UserRepository) List(ctx context.Context, f UserFilter) ([]model.User, error) {
	q := conn(ctx, r.DB).Model(&model.User{})
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if f.Approved != nil {
		q = q.Where("approved = ?", *f.Approved)
	}
	if f.Keyword != "" {
		like := "%" + f.Keyword + "%"
		q = q.Where("name LIKE ? OR email LIKE ?", like, like)
	}
	var users []model.User
	err := q.Order("created_at DESC").Find(&users).Error
	return users, wrap("list users", err, nil)
}

// LearnerIDs 所有非管理员用户的 id，用于通知群发
func (r *UserRepository) LearnerIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := conn(ctx, r.DB).Model(&model.User{}).Where("role <> ?", model.RoleAdmin).Pluck("id", &ids).Error
	return ids, wrap("list learner ids", err, nil)
}

// Leaderboard 已审批员工按积分排序
func (r *UserRepository) Leaderboard(ctx context.Context, limit int) ([]model.User, error) {
	var users []model.User
	q := conn(ctx, r.DB).
		Where("role = ? AND approved = ?", model.RoleEmployee, true).
		Order("points DESC").Order("name ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&users).Error
	return users, wrap("leaderboard", err, nil)
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, fields map[string]interface{}) error {
	res := conn(ctx, r.DB).Model(&model.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return wrap("update user", res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Approve(ctx context.Context, id string) error {
	return r.UpdateProfile(ctx, id, map[string]interface{}{"approved": true})
}

// AddPoints 原子累加积分并返回新的总分
func (r *UserRepository) AddPoints(ctx context.Context, id string, amount int) (int, error) {
	db := conn(ctx, r.DB)
	res := db.Model(&model.User{}).
		Where("id = ?", id).
		Update("points", gorm.Expr("points + ?", amount))
	if res.Error != nil {
		return 0, wrap("add points", res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return 0, apperr.ErrUserNotFound
	}
	return r.points(db, id)
}

// SetPoints 管理员修正积分
func (r *UserRepository) SetPoints(ctx context.Context, id string, points int) error {
	return r.UpdateProfile(ctx, id, map[string]interface{}{"points": points})
}

// GrantBadges 一次写入新徽章和对应积分，保证两者一致
func (r *UserRepository) GrantBadges(ctx context.Context, id string, badges []string, points int) (int, error) {
	db := conn(ctx, r.DB)
	var user model.User
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&user).Error; err != nil {
		return 0, wrap("grant badges", err, apperr.ErrUserNotFound)
	}
	merged := append([]string{}, user.Badges...)
	for _, b := range badges {
		if !user.HasBadge(b) {
			merged = append(merged, b)
		}
	}
	err := db.Model(&model.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"badges": datatypes.JSONSlice[string](merged),
		"points": gorm.Expr("points + ?", points),
	}).Error
	if err != nil {
		return 0, wrap("grant badges", err, nil)
	}
	return r.points(db, id)
}

func (r *UserRepository) points(db *gorm.DB, id string) (int, error) {
	var total int
	err := db.Model(&model.User{}).Where("id = ?", id).Select("points").Scan(&total).Error
	return total, wrap("read points", err, nil)
}

func (r *UserRepository) Touch(ctx context.Context, id string, at time.Time) error {
	err := conn(ctx, r.DB).Model(&model.User{}).Where("id = ?", id).UpdateColumn("last_seen", at).Error
	return wrap("touch user", err, nil)
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res := conn(ctx, r.DB).Where("id = ?", id).Delete(&model.User{})
	if res.Error != nil {
		return wrap("delete user", res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) CountByRole(ctx context.Context, role model.UserRole) (int64, error) {
	var n int64
	err := conn(ctx, r.DB).Model(&model.User{}).Where("role = ?", role).Count(&n).Error
	return n, wrap("count users", err, nil)
}

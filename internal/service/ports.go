package service

import (
	"context"
	"time"

	"corp_edu_backend/internal/model"
	"corp_edu_backend/internal/repository"
)

// 服务依赖的仓储接口，由 repository 包中的实现满足，测试中可替换为内存实现

type txRunner interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type progressStore interface {
	Find(ctx context.Context, userID, courseID string) (model.ProgressRecord, error)
	FindForUpdate(ctx context.Context, userID, courseID string) (model.ProgressRecord, error)
	ListByUser(ctx context.Context, userID string) ([]model.ProgressRecord, error)
	ListAll(ctx context.Context) ([]model.ProgressRecord, error)
	Save(ctx context.Context, rec model.ProgressRecord) error
}

type courseStore interface {
	Create(ctx context.Context, course *model.Course) error
	Update(ctx context.Context, course *model.Course) error
	FindByID(ctx context.Context, id string) (*model.Course, error)
	List(ctx context.Context, category string) ([]model.Course, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.Course, error)
	SearchByKeyword(ctx context.Context, keyword string, limit int) ([]model.Course, error)
	IDs(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, id string) error
	CountByCategory(ctx context.Context, category string) (int64, error)
	RenameCategory(ctx context.Context, from, to string) error
}

type userStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, f repository.UserFilter) ([]model.User, error)
	LearnerIDs(ctx context.Context) ([]string, error)
	Leaderboard(ctx context.Context, limit int) ([]model.User, error)
	UpdateProfile(ctx context.Context, id string, fields map[string]interface{}) error
	Approve(ctx context.Context, id string) error
	AddPoints(ctx context.Context, id string, amount int) (int, error)
	SetPoints(ctx context.Context, id string, points int) error
	GrantBadges(ctx context.Context, id string, badges []string, points int) (int, error)
	Touch(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
	CountByRole(ctx context.Context, role model.UserRole) (int64, error)
}

type reviewStore interface {
	Upsert(ctx context.Context, review *model.Review) error
	ListByCourse(ctx context.Context, courseID string) ([]model.Review, error)
	ListAll(ctx context.Context) ([]model.Review, error)
}

type discussionStore interface {
	ListByCourse(ctx context.Context, courseID string) ([]model.DiscussionPost, error)
	ListByCourses(ctx context.Context, courseIDs []string) ([]model.DiscussionPost, error)
	Create(ctx context.Context, post *model.DiscussionPost) error
	DeleteByCourse(ctx context.Context, courseID string) (int64, error)
}

type notificationStore interface {
	CreateBatch(ctx context.Context, items []model.Notification) error
	ListByUser(ctx context.Context, userID string, limit int) ([]model.Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
}

type categoryStore interface {
	List(ctx context.Context) ([]model.CourseCategory, error)
	FindByID(ctx context.Context, id string) (*model.CourseCategory, error)
	Create(ctx context.Context, item *model.CourseCategory) error
	Rename(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) error
}

type resourceStore interface {
	List(ctx context.Context, typ model.ExternalResourceType) ([]model.ExternalResource, error)
	FindByID(ctx context.Context, id string) (*model.ExternalResource, error)
	Create(ctx context.Context, item *model.ExternalResource) error
	Update(ctx context.Context, item *model.ExternalResource) error
	Delete(ctx context.Context, id string) error
}

// CourseIndex 课程全文检索，未启用 Elasticsearch 时为 nil
type CourseIndex interface {
	Index(ctx context.Context, course *model.Course) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string, size int) ([]string, error)
}

// Publisher 把已提交的通知推送给在线用户
type Publisher interface {
	Publish(ctx context.Context, items []model.Notification)
}

type Clock func() time.Time

package repository

import (
	"context"
	"corp_edu_backend/internal/model"

	"gorm.io/gorm"
)

type DiscussionRepository struct {
	DB *gorm.DB
}

func NewDiscussionRepository(db *gorm.DB) *DiscussionRepository {
	return &DiscussionRepository{DB: db}
}

func (r *DiscussionRepository) ListByCourse(ctx context.Context, courseID string) ([]model.DiscussionPost, error) {
	var posts []model.DiscussionPost
	err := conn(ctx, r.DB).Where("course_id = ?", courseID).Order("created_at ASC").Find(&posts).Error
	return posts, wrap("list discussion", err, nil)
}

func (r *DiscussionRepository) ListByCourses(ctx context.Context, courseIDs []string) ([]model.DiscussionPost, error) {
	q := conn(ctx, r.DB)
	if len(courseIDs) > 0 {
		q = q.Where("course_id IN ?", courseIDs)
	}
	var posts []model.DiscussionPost
	err := q.Order("created_at ASC").Find(&posts).Error
	return posts, wrap("list discussions", err, nil)
}

func (r *DiscussionRepository) Create(ctx context.Context, post *model.DiscussionPost) error {
	return wrap("create post", conn(ctx, r.DB).Create(post).Error, nil)
}

func (r *DiscussionRepository) DeleteByCourse(ctx context.Context, courseID string) (int64, error) {
	res := conn(ctx, r.DB).Where("course_id = ?", courseID).Delete(&model.DiscussionPost{})
	return res.RowsAffected, wrap("delete discussion", res.Error, nil)
}

package repository

import (
	"context"
	"corp_edu_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewRepository struct {
	DB *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{DB: db}
}

// Upsert 每个用户每门课只保留一条评价，重复提交覆盖旧评价
func (r *ReviewRepository) Upsert(ctx context.Context, review *model.Review) error {
	err := conn(ctx, r.DB).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "course_id"}, {Name: "author_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"author_name", "rating", "comment", "updated_at"}),
	}).Create(review).Error
	return wrap("save review", err, nil)
}

func (r *ReviewRepository) ListByCourse(ctx context.Context, courseID string) ([]model.Review, error) {
	var reviews []model.Review
	err := conn(ctx, r.DB).Where("course_id = ?", courseID).Order("created_at DESC").Find(&reviews).Error
	return reviews, wrap("list reviews", err, nil)
}

func (r *ReviewRepository) ListAll(ctx context.Context) ([]model.Review, error) {
	var reviews []model.Review
	err := conn(ctx, r.DB).Find(&reviews).Error
	return reviews, wrap("list all reviews", err, nil)
}

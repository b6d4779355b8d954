package repository

import (
	"context"
	"corp_edu_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// Find 记录不存在时返回空记录，不视为错误
func (r *ProgressRepository) Find(ctx context.Context, userID, courseID string) (model.ProgressRecord, error) {
	var rec model.ProgressRecord
	err := conn(ctx, r.DB).Where("user_id = ? AND course_id = ?", userID, courseID).Limit(1).Find(&rec).Error
	if err != nil {
		return model.ProgressRecord{}, wrap("find progress", err, nil)
	}
	if rec.UserID == "" {
		return model.NewProgressRecord(userID, courseID), nil
	}
	return rec, nil
}

// FindForUpdate 在事务内对进度行加写锁后读取；记录不存在时同 Find
func (r *ProgressRepository) FindForUpdate(ctx context.Context, userID, courseID string) (model.ProgressRecord, error) {
	var rec model.ProgressRecord
	err := conn(ctx, r.DB).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND course_id = ?", userID, courseID).Limit(1).Find(&rec).Error
	if err != nil {
		return model.ProgressRecord{}, wrap("lock progress", err, nil)
	}
	if rec.UserID == "" {
		return model.NewProgressRecord(userID, courseID), nil
	}
	return rec, nil
}

func (r *ProgressRepository) ListByUser(ctx context.Context, userID string) ([]model.ProgressRecord, error) {
	var recs []model.ProgressRecord
	err := conn(ctx, r.DB).Where("user_id = ?", userID).Find(&recs).Error
	return recs, wrap("list progress", err, nil)
}

// ListAll 管理端报表的全量进度
func (r *ProgressRepository) ListAll(ctx context.Context) ([]model.ProgressRecord, error) {
	var recs []model.ProgressRecord
	err := conn(ctx, r.DB).Find(&recs).Error
	return recs, wrap("list all progress", err, nil)
}

// Save 以 (user_id, course_id) 为键整体覆盖写入
func (r *ProgressRepository) Save(ctx context.Context, rec model.ProgressRecord) error {
	err := conn(ctx, r.DB).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"completed_modules", "quiz_score", "rating", "recently_viewed", "completion_date", "updated_at"}),
	}).Create(&rec).Error
	return wrap("save progress", err, nil)
}

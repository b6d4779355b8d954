package repository

import (
	"context"
	"corp_edu_backend/internal/apperr"
	"corp_edu_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) Create(ctx context.Context, course *model.Course) error {
	return wrap("create course", conn(ctx, r.DB).Omit("Reviews").Create(course).Error, nil)
}

func (r *CourseRepository) Update(ctx context.Context, course *model.Course) error {
	res := conn(ctx, r.DB).Model(&model.Course{}).Where("id = ?", course.ID).
		Select("title", "description", "category", "image_url", "modules", "quiz", "passing_score", "textbook_url", "textbook_name").
		Updates(course)
	if res.Error != nil {
		return wrap("update course", res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrCourseNotFound
	}
	return nil
}

func (r *CourseRepository) FindByID(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	err := conn(ctx, r.DB).Preload("Reviews", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at DESC")
	}).Where("id = ?", id).First(&course).Error
	if err != nil {
		return nil, wrap("find course", err, apperr.ErrCourseNotFound)
	}
	return &course, nil
}

func (r *CourseRepository) List(ctx context.Context, category string) ([]model.Course, error) {
	q := conn(ctx, r.DB).Preload("Reviews")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var courses []model.Course
	err := q.Order("created_at DESC").Find(&courses).Error
	return courses, wrap("list courses", err, nil)
}

func (r *CourseRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Course, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var courses []model.Course
	err := conn(ctx, r.DB).Preload("Reviews").Where("id IN ?", ids).Find(&courses).Error
	return courses, wrap("find courses", err, nil)
}

// SearchByKeyword 未启用 Elasticsearch 时的兜底搜索
func (r *CourseRepository) SearchByKeyword(ctx context.Context, keyword string, limit int) ([]model.Course, error) {
	like := "%" + keyword + "%"
	var courses []model.Course
	err := conn(ctx, r.DB).
		Where("title LIKE ? OR description LIKE ?", like, like).
		Order("created_at DESC").Limit(limit).Find(&courses).Error
	return courses, wrap("search courses", err, nil)
}

// IDs 当前全部课程 id，用于徽章统计
func (r *CourseRepository) IDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := conn(ctx, r.DB).Model(&model.Course{}).Pluck("id", &ids).Error
	return ids, wrap("list course ids", err, nil)
}

// Delete 删除课程以及它的进度、评价和讨论
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	db := conn(ctx, r.DB)
	res := db.Where("id = ?", id).Delete(&model.Course{})
	if res.Error != nil {
		return wrap("delete course", res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrCourseNotFound
	}
	for _, m := range []interface{}{&model.ProgressRecord{}, &model.Review{}, &model.DiscussionPost{}} {
		if err := db.Where("course_id = ?", id).Delete(m).Error; err != nil {
			return wrap("delete course data", err, nil)
		}
	}
	return nil
}

func (r *CourseRepository) CountByCategory(ctx context.Context, category string) (int64, error) {
	var n int64
	err := conn(ctx, r.DB).Model(&model.Course{}).Where("category = ?", category).Count(&n).Error
	return n, wrap("count courses", err, nil)
}

// RenameCategory 分类改名时同步所有课程
func (r *CourseRepository) RenameCategory(ctx context.Context, from, to string) error {
	err := conn(ctx, r.DB).Model(&model.Course{}).Where("category = ?", from).Update("category", to).Error
	return wrap("rename course category", err, nil)
}

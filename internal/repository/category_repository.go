package repository

import (
	"context"
	"corp_edu_backend/internal/apperr"
	"corp_edu_backend/internal/model"

	"gorm.io/gorm"
)

type CategoryRepository struct {
	DB *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{DB: db}
}

func (r *CategoryRepository) List(ctx context.Context) ([]model.CourseCategory, error) {
	var items []model.CourseCategory
	err := conn(ctx, r.DB).Order("name ASC").Find(&items).Error
	return items, wrap("list categories", err, nil)
}

func (r *CategoryRepository) FindByID(ctx context.Context, id string) (*model.CourseCategory, error) {
	var item model.CourseCategory
	if err := conn(ctx, r.DB).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, wrap("find category", err, apperr.ErrCategoryNotFound)
	}
	return &item, nil
}

func (r *CategoryRepository) Create(ctx context.Context, item *model.CourseCategory) error {
	return wrap("create category", conn(ctx, r.DB).Create(item).Error, nil)
}

func (r *CategoryRepository) Rename(ctx context.Context, id, name string) error {
	err := conn(ctx, r.DB).Model(&model.CourseCategory{}).Where("id = ?", id).Update("name", name).Error
	return wrap("rename category", err, nil)
}

func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	res := conn(ctx, r.DB).Where("id = ?", id).Delete(&model.CourseCategory{})
	if res.Error != nil {
		return wrap("delete category", res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrCategoryNotFound
	}
	return nil
}

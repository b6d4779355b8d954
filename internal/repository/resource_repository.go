package repository

import (
	"context"
	"corp_edu_backend/internal/apperr"
	"corp_edu_backend/internal/model"

	"gorm.io/gorm"
)

// ResourceRepository 外部学习资源（书籍、文章、视频链接）
type ResourceRepository struct {
	DB *gorm.DB
}

func NewResourceRepository(db *gorm.DB) *ResourceRepository {
	return &ResourceRepository{DB: db}
}

func (r *ResourceRepository) List(ctx context.Context, typ model.ExternalResourceType) ([]model.ExternalResource, error) {
	q := conn(ctx, r.DB)
	if typ != "" {
		q = q.Where("type = ?", typ)
	}
	var items []model.ExternalResource
	err := q.Order("created_at DESC").Find(&items).Error
	return items, wrap("list resources", err, nil)
}

func (r *ResourceRepository) FindByID(ctx context.Context, id string) (*model.ExternalResource, error) {
	var item model.ExternalResource
	if err := conn(ctx, r.DB).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, wrap("find resource", err, apperr.ErrResourceNotFound)
	}
	return &item, nil
}

func (r *ResourceRepository) Create(ctx context.Context, item *model.ExternalResource) error {
	return wrap("create resource", conn(ctx, r.DB).Create(item).Error, nil)
}

func (r *ResourceRepository) Update(ctx context.Context, item *model.ExternalResource) error {
	res := conn(ctx, r.DB).Model(&model.ExternalResource{}).Where("id = ?", item.ID).
		Select("title", "description", "url", "type").Updates(item)
	if res.Error != nil {
		return wrap("update resource", res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrResourceNotFound
	}
	return nil
}

func (r *ResourceRepository) Delete(ctx context.Context, id string) error {
	res := conn(ctx, r.DB).Where("id = ?", id).Delete(&model.ExternalResource{})
	if res.Error != nil {
		return wrap("delete resource", res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrResourceNotFound
	}
	return nil
}

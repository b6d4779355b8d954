package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"corp_edu_backend/internal/apperr"
	"corp_edu_backend/internal/model"
	"corp_edu_backend/pkg/logger"
)

// CategoryService 课程分类；课程按名称引用分类
type CategoryService struct {
	categories categoryStore
	courses    courseStore
	tx         txRunner
}

func NewCategoryService(categories categoryStore, courses courseStore, tx txRunner) *CategoryService {
	return &CategoryService{categories: categories, courses: courses, tx: tx}
}

type CategoryInput struct {
	Name string `json:"name" validate:"notblank,max=100"`
}

func (s *CategoryService) List(ctx context.Context) ([]model.CourseCategory, error) {
	return s.categories.List(ctx)
}

func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*model.CourseCategory, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if err := s.ensureUnique(ctx, "", name); err != nil {
		return nil, err
	}
	item := &model.CourseCategory{Name: name}
	if err := s.categories.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Rename 改名同时更新所有引用旧名称的课程
func (s *CategoryService) Rename(ctx context.Context, id string, in CategoryInput) (*model.CourseCategory, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	item, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == item.Name {
		return item, nil
	}
	if err := s.ensureUnique(ctx, id, name); err != nil {
		return nil, err
	}

	old := item.Name
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.categories.Rename(ctx, id, name); err != nil {
			return err
		}
		return s.courses.RenameCategory(ctx, old, name)
	})
	if err != nil {
		return nil, err
	}
	logger.Log.Info("Category renamed", zap.String("from", old), zap.String("to", name))
	item.Name = name
	return item, nil
}

// Delete 仍有课程使用的分类不能删除
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	item, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return err
	}
	n, err := s.courses.CountByCategory(ctx, item.Name)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperr.Conflict("category %q is used by %d course(s)", item.Name, n)
	}
	return s.categories.Delete(ctx, id)
}

func (s *CategoryService) ensureUnique(ctx context.Context, selfID, name string) error {
	items, err := s.categories.List(ctx)
	if err != nil {
		return err
	}
	for _, c := range items {
		if c.ID != selfID && strings.EqualFold(c.Name, name) {
			return apperr.Conflict("category %q already exists", name)
		}
	}
	return nil
}

package service

import (
	"context"
	"strings"

	"corp_edu_backend/internal/apperr"
	"corp_edu_backend/internal/model"
)

// ResourceService 外部学习资源库
type ResourceService struct {
	resources resourceStore
}

func NewResourceService(resources resourceStore) *ResourceService {
	return &ResourceService{resources: resources}
}

type ResourceInput struct {
	Title       string                     `json:"title" validate:"notblank,max=200"`
	Description string                     `json:"description"`
	URL         string                     `json:"url" validate:"required,http_url,max=512"`
	Type        model.ExternalResourceType `json:"type" validate:"required"`
}

func (in ResourceInput) validate() error {
	if err := validateStruct(in); err != nil {
		return err
	}
	if !in.Type.Valid() {
		return apperr.Validation("type must be book, article or video")
	}
	return nil
}

func (s *ResourceService) List(ctx context.Context, typ string) ([]model.ExternalResource, error) {
	t := model.ExternalResourceType(strings.ToLower(strings.TrimSpace(typ)))
	if t != "" && !t.Valid() {
		return nil, apperr.Validation("unknown resource type %q", typ)
	}
	return s.resources.List(ctx, t)
}

func (s *ResourceService) Create(ctx context.Context, in ResourceInput) (*model.ExternalResource, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	item := &model.ExternalResource{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		URL:         strings.TrimSpace(in.URL),
		Type:        in.Type,
	}
	if err := s.resources.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ResourceService) Update(ctx context.Context, id string, in ResourceInput) (*model.ExternalResource, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	item, err := s.resources.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	item.Title = strings.TrimSpace(in.Title)
	item.Description = in.Description
	item.URL = strings.TrimSpace(in.URL)
	item.Type = in.Type
	if err := s.resources.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ResourceService) Delete(ctx context.Context, id string) error {
	return s.resources.Delete(ctx, id)
}

package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"corp_edu_backend/internal/apperr"
	"corp_edu_backend/internal/engine"
	"corp_edu_backend/internal/model"
	"corp_edu_backend/pkg/logger"
)

const maxPostLength = 5000

type DiscussionService struct {
	posts   discussionStore
	courses courseStore
	now     Clock
}

func NewDiscussionService(posts discussionStore, courses courseStore) *DiscussionService {
	return &DiscussionService{posts: posts, courses: courses, now: time.Now}
}

// Thread 课程讨论区的完整帖子树
func (s *DiscussionService) Thread(ctx context.Context, courseID string) ([]model.DiscussionNode, error) {
	posts, err := s.posts.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return engine.BuildDiscussionTree(posts), nil
}

// AddRootPost 发表新主题，返回更新后的帖子树（新帖在最前）
func (s *DiscussionService) AddRootPost(ctx context.Context, user *model.User, courseID, text string) ([]model.DiscussionNode, error) {
	tree, post, err := s.prepare(ctx, user, courseID, text)
	if err != nil {
		return nil, err
	}
	next := engine.PrependRoot(tree, model.NodeFromPost(*post))
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return next, nil
}

// AddReply 回复任意层级的帖子；父帖子不存在时返回 NotFound，树保持不变
func (s *DiscussionService) AddReply(ctx context.Context, user *model.User, courseID, parentID, text string) ([]model.DiscussionNode, error) {
	tree, post, err := s.prepare(ctx, user, courseID, text)
	if err != nil {
		return nil, err
	}
	post.ParentID = &parentID
	next, ok := engine.InsertReply(tree, parentID, model.NodeFromPost(*post))
	if !ok {
		return nil, apperr.ErrPostNotFound
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return next, nil
}

func (s *DiscussionService) prepare(ctx context.Context, user *model.User, courseID, text string) ([]model.DiscussionNode, *model.DiscussionPost, error) {
	text = trimmed(text)
	if text == "" {
		return nil, nil, apperr.Validation("post text is required")
	}
	if len([]rune(text)) > maxPostLength {
		return nil, nil, apperr.Validation("post text exceeds %d characters", maxPostLength)
	}
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		return nil, nil, err
	}
	tree, err := s.Thread(ctx, courseID)
	if err != nil {
		return nil, nil, err
	}
	post := &model.DiscussionPost{
		ID:         model.GenerateUUID(),
		CourseID:   courseID,
		AuthorID:   user.ID,
		AuthorName: user.Name,
		Text:       text,
		CreatedAt:  s.now(),
	}
	return tree, post, nil
}

// DeleteDiscussion 管理员清空课程讨论区
func (s *DiscussionService) DeleteDiscussion(ctx context.Context, courseID string) (int64, error) {
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		return 0, err
	}
	n, err := s.posts.DeleteByCourse(ctx, courseID)
	if err != nil {
		return 0, err
	}
	logger.Log.Info("Discussion deleted", zap.String("courseId", courseID), zap.Int64("posts", n))
	return n, nil
}

package service

import (
	"context"
	"slices"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"corp_edu_backend/internal/apperr"
	"corp_edu_backend/internal/model"
	"corp_edu_backend/pkg/logger"
)

const (
	defaultSearchSize = 20
	maxSearchSize     = 100
)

// CourseService 课程编写、删除与检索
type CourseService struct {
	courses       courseStore
	tx            txRunner
	notifications *NotificationService
	storage       *StorageService
	index         CourseIndex
}

func NewCourseService(courses courseStore, tx txRunner, notifications *NotificationService, storage *StorageService, index CourseIndex) *CourseService {
	return &CourseService{courses: courses, tx: tx, notifications: notifications, storage: storage, index: index}
}

// CourseInput 创建和更新课程的请求体
type CourseInput struct {
	Title        string               `json:"title" validate:"notblank,max=200"`
	Description  string               `json:"description"`
	Category     string               `json:"category" validate:"max=100"`
	ImageURL     string               `json:"imageUrl" validate:"max=512"`
	Modules      []model.Module       `json:"modules"`
	Quiz         []model.QuizQuestion `json:"quiz"`
	PassingScore int                  `json:"passingScore" validate:"min=0,max=100"`
	TextbookURL  string               `json:"textbookUrl" validate:"max=512"`
	TextbookName string               `json:"textbookName" validate:"max=255"`
}

func (in CourseInput) validate() error {
	if err := validateStruct(in); err != nil {
		return err
	}
	seen := map[string]bool{}
	for i, m := range in.Modules {
		if err := m.Validate(); err != nil {
			return apperr.Validation("module %d: %v", i+1, err)
		}
		if m.ID != "" {
			if seen[m.ID] {
				return apperr.Validation("duplicate module id %q", m.ID)
			}
			seen[m.ID] = true
		}
	}
	for i, q := range in.Quiz {
		if err := q.Validate(); err != nil {
			return apperr.Validation("quiz question %d: %v", i+1, err)
		}
	}
	return nil
}

// applyTo 写入课程字段；已有模块保留 ID，学员的完成记录才不会失效
func (in CourseInput) applyTo(c *model.Course) {
	c.Title = strings.TrimSpace(in.Title)
	c.Description = in.Description
	c.Category = strings.TrimSpace(in.Category)
	c.ImageURL = in.ImageURL
	c.PassingScore = in.PassingScore
	c.TextbookURL = in.TextbookURL
	c.TextbookName = in.TextbookName

	modules := make(datatypes.JSONSlice[model.Module], len(in.Modules))
	for i, m := range in.Modules {
		if m.ID == "" {
			m.ID = model.GenerateUUID()
		}
		modules[i] = m
	}
	c.Modules = modules

	quiz := make(datatypes.JSONSlice[model.QuizQuestion], len(in.Quiz))
	for i, q := range in.Quiz {
		if q.ID == "" {
			q.ID = model.GenerateUUID()
		}
		quiz[i] = q
	}
	c.Quiz = quiz
}

// List 学员看到的课程隐藏测验答案
func (s *CourseService) List(ctx context.Context, category string, withAnswers bool) ([]model.Course, error) {
	courses, err := s.courses.List(ctx, category)
	if err != nil {
		return nil, err
	}
	return hideAnswers(courses, withAnswers), nil
}

func (s *CourseService) Get(ctx context.Context, id string) (*model.Course, error) {
	return s.courses.FindByID(ctx, id)
}

// Create 创建课程并通知所有学员
func (s *CourseService) Create(ctx context.Context, in CourseInput) (*model.Course, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	course := &model.Course{}
	in.applyTo(course)

	var items []model.Notification
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.courses.Create(ctx, course); err != nil {
			return err
		}
		var err error
		items, err = s.notifications.fanOut(ctx, model.NotificationNewCourse, newCourseMessage(course.Title))
		if err != nil {
			return err
		}
		return s.notifications.Persist(ctx, items)
	})
	if err != nil {
		return nil, err
	}
	s.notifications.Publish(ctx, items)
	s.reindex(ctx, course)

	logger.Log.Info("Course created",
		zap.String("courseId", course.ID),
		zap.Int("modules", len(course.Modules)),
		zap.Int("notified", len(items)))
	return course, nil
}

// Update 整体替换课程内容，不再引用的上传文件会被清理
func (s *CourseService) Update(ctx context.Context, id string, in CourseInput) (*model.Course, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := course.StoredObjects()
	if course.ImageURL != "" {
		before = append(before, course.ImageURL)
	}

	in.applyTo(course)
	if err := s.courses.Update(ctx, course); err != nil {
		return nil, err
	}
	s.reindex(ctx, course)

	after := course.StoredObjects()
	after = append(after, course.ImageURL)
	var stale []string
	for _, url := range before {
		if !slices.Contains(after, url) {
			stale = append(stale, url)
		}
	}
	s.cleanup(ctx, stale)
	return course, nil
}

// Delete 删除课程及其进度、评价、讨论，再清理上传文件
func (s *CourseService) Delete(ctx context.Context, id string) error {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		return err
	}
	// 课程与其进度、评价、讨论要么一起删除，要么都保留
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.courses.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	objects := course.StoredObjects()
	if course.ImageURL != "" {
		objects = append(objects, course.ImageURL)
	}
	s.cleanup(ctx, objects)
	if s.index != nil {
		if err := s.index.Delete(ctx, id); err != nil {
			logger.Log.Warn("Remove course from search index failed", zap.String("courseId", id), zap.Error(err))
		}
	}
	logger.Log.Info("Course deleted", zap.String("courseId", id), zap.Int("objects", len(objects)))
	return nil
}

// Search 优先使用 Elasticsearch，失败或未启用时退回 LIKE 查询
func (s *CourseService) Search(ctx context.Context, query string, limit int, withAnswers bool) ([]model.Course, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.List(ctx, "", withAnswers)
	}
	limit = clampLimit(limit, defaultSearchSize, maxSearchSize)

	if s.index != nil {
		ids, err := s.index.Search(ctx, query, limit)
		if err == nil {
			courses, err := s.courses.FindByIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
			return hideAnswers(orderByIDs(courses, ids), withAnswers), nil
		}
		logger.Log.Warn("Search index query failed, using database", zap.String("query", query), zap.Error(err))
	}

	courses, err := s.courses.SearchByKeyword(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return hideAnswers(courses, withAnswers), nil
}

// Reindex 重建全部课程的索引，启动时调用
func (s *CourseService) Reindex(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, nil
	}
	courses, err := s.courses.List(ctx, "")
	if err != nil {
		return 0, err
	}
	for i := range courses {
		if err := s.index.Index(ctx, &courses[i]); err != nil {
			return i, err
		}
	}
	return len(courses), nil
}

func (s *CourseService) reindex(ctx context.Context, course *model.Course) {
	if s.index == nil {
		return
	}
	if err := s.index.Index(ctx, course); err != nil {
		logger.Log.Warn("Index course failed", zap.String("courseId", course.ID), zap.Error(err))
	}
}

func (s *CourseService) cleanup(ctx context.Context, urls []string) {
	if s.storage == nil || len(urls) == 0 {
		return
	}
	s.storage.DeleteBestEffort(ctx, urls...)
}

func hideAnswers(courses []model.Course, withAnswers bool) []model.Course {
	if withAnswers {
		return courses
	}
	out := make([]model.Course, len(courses))
	for i, c := range courses {
		out[i] = c.WithoutAnswers()
	}
	return out
}

// orderByIDs 按检索结果的相关度顺序排列
func orderByIDs(courses []model.Course, ids []string) []model.Course {
	pos := make(map[string]int, len(ids))
	for i, id := range ids {
		pos[id] = i
	}
	slices.SortStableFunc(courses, func(a, b model.Course) int {
		return pos[a.ID] - pos[b.ID]
	})
	return courses
}

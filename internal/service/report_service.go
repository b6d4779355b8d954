package service

import (
	"context"
	"encoding/csv"
	"io"
	"math"

	"corp_edu_backend/internal/model"
	"corp_edu_backend/internal/repository"
)

var (
	userFilterAll       = repository.UserFilter{}
	userFilterEmployees = repository.UserFilter{Role: model.RoleEmployee}
)

// ReportService 管理端报表，每次请求实时计算
type ReportService struct {
	users    userStore
	courses  courseStore
	progress progressStore
	reviews  reviewStore
}

func NewReportService(users userStore, courses courseStore, progress progressStore, reviews reviewStore) *ReportService {
	return &ReportService{users: users, courses: courses, progress: progress, reviews: reviews}
}

func (s *ReportService) Users(ctx context.Context) (model.UserReport, error) {
	users, err := s.users.List(ctx, userFilterAll)
	if err != nil {
		return nil, err
	}
	out := make(model.UserReport, 0, len(users))
	for _, u := range users {
		status := "Pending"
		if u.Approved {
			status = "Approved"
		}
		created := u.CreatedAt
		out = append(out, model.UserReportRow{
			UserID:           u.ID,
			Name:             u.Name,
			Email:            u.Email,
			Role:             u.Role,
			Status:           status,
			RegistrationDate: &created,
			Points:           u.Points,
		})
	}
	return out, nil
}

// Completions 员工 × 课程，只列出有测验成绩的记录
func (s *ReportService) Completions(ctx context.Context) (model.CompletionReport, error) {
	data, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := model.CompletionReport{}
	for _, u := range data.employees {
		for _, c := range data.courses {
			rec, ok := data.records[u.ID][c.ID]
			if !ok || rec.QuizScore == nil {
				continue
			}
			out = append(out, model.CompletionReportRow{
				EmployeeName:   u.Name,
				EmployeeEmail:  u.Email,
				CourseTitle:    c.Title,
				QuizScore:      *rec.QuizScore,
				CompletionDate: rec.CompletionDate,
			})
		}
	}
	return out, nil
}

// Performance 报名数为完成过模块或有成绩的员工，完成数为有成绩的员工
func (s *ReportService) Performance(ctx context.Context) (model.PerformanceReport, error) {
	data, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make(model.PerformanceReport, 0, len(data.courses))
	for _, c := range data.courses {
		row := model.PerformanceReportRow{CourseID: c.ID, CourseTitle: c.Title}
		total := 0
		for _, u := range data.employees {
			rec, ok := data.records[u.ID][c.ID]
			if !ok || (len(rec.CompletedModules) == 0 && rec.QuizScore == nil) {
				continue
			}
			row.Enrollees++
			if rec.QuizScore != nil {
				row.Completions++
				total += *rec.QuizScore
			}
		}
		if row.Enrollees > 0 {
			row.CompletionRate = roundPercent(float64(row.Completions) * 100 / float64(row.Enrollees))
		}
		if row.Completions > 0 {
			row.AverageScore = roundPercent(float64(total) / float64(row.Completions))
		}
		out = append(out, row)
	}
	return out, nil
}

// Overview 平台概览：员工数、课程数、完成数和平均评分
func (s *ReportService) Overview(ctx context.Context) (*model.AnalyticsOverview, error) {
	employees, err := s.users.CountByRole(ctx, model.RoleEmployee)
	if err != nil {
		return nil, err
	}
	ids, err := s.courses.IDs(ctx)
	if err != nil {
		return nil, err
	}
	records, err := s.progress.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviews.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	out := &model.AnalyticsOverview{TotalEmployees: employees, TotalCourses: len(ids), ReviewCount: len(reviews)}
	for _, rec := range records {
		if rec.QuizScore != nil {
			out.TotalCompletions++
		}
	}
	if len(reviews) > 0 {
		sum := 0
		for _, r := range reviews {
			sum += r.Rating
		}
		out.AverageRating = math.Round(float64(sum)/float64(len(reviews))*10) / 10
	}
	return out, nil
}

// LearnerProgress 所有学员的进度，按用户和课程索引
func (s *ReportService) LearnerProgress(ctx context.Context) (map[string]map[string]model.ProgressRecord, error) {
	records, err := s.progress.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return indexRecords(records), nil
}

// WriteCSV 写出表头和数据行
func WriteCSV(w io.Writer, t model.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header()); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows()); err != nil {
		return err
	}
	return cw.Error()
}

type reportData struct {
	employees []model.User
	courses   []model.Course
	records   map[string]map[string]model.ProgressRecord
}

func (s *ReportService) load(ctx context.Context) (*reportData, error) {
	employees, err := s.users.List(ctx, userFilterEmployees)
	if err != nil {
		return nil, err
	}
	courses, err := s.courses.List(ctx, "")
	if err != nil {
		return nil, err
	}
	records, err := s.progress.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return &reportData{employees: employees, courses: courses, records: indexRecords(records)}, nil
}

func indexRecords(records []model.ProgressRecord) map[string]map[string]model.ProgressRecord {
	out := map[string]map[string]model.ProgressRecord{}
	for _, rec := range records {
		byCourse, ok := out[rec.UserID]
		if !ok {
			byCourse = map[string]model.ProgressRecord{}
			out[rec.UserID] = byCourse
		}
		byCourse[rec.CourseID] = rec
	}
	return out
}

func roundPercent(v float64) int {
	return int(math.Round(v))
}

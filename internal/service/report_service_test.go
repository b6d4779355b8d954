package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corp_edu_backend/internal/model"
)

// seedReports: Ana 通过 c1(80) 并在 c2 完成一个模块；Bob 通过 c1(60)；管理员的记录不计入员工报表
func seedReports(f *fixture) *ReportService {
	f.addUser("Root", model.RoleAdmin)
	f.addUser("Ana", model.RoleEmployee)
	f.addUser("Bob", model.RoleEmployee)
	f.addCourse("c1", 1, 5, 50)
	f.addCourse("c2", 2, 5, 50)

	done := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	put := func(user, course string, modules []string, score *int) {
		rec := model.NewProgressRecord(user, course)
		rec.CompletedModules = modules
		rec.QuizScore = score
		if score != nil {
			rec.CompletionDate = &done
		}
		f.db.progress[progressKey{user, course}] = rec
	}
	put("u-ana", "c1", []string{"c1-m0"}, intPtr(80))
	put("u-ana", "c2", []string{"c2-m0"}, nil)
	put("u-bob", "c1", []string{"c1-m0"}, intPtr(60))
	put("u-bob", "c2", []string{}, nil)
	put("u-root", "c2", []string{"c2-m0"}, intPtr(100))

	f.db.reviews[progressKey{"u-ana", "c1"}] = model.Review{AuthorID: "u-ana", CourseID: "c1", Rating: 5}
	f.db.reviews[progressKey{"u-bob", "c1"}] = model.Review{AuthorID: "u-bob", CourseID: "c1", Rating: 4}
	f.db.reviews[progressKey{"u-ana", "c2"}] = model.Review{AuthorID: "u-ana", CourseID: "c2", Rating: 4}

	return NewReportService(fakeUsers{f.db}, fakeCourses{f.db}, fakeProgress{f.db}, fakeReviews{f.db})
}

func TestPerformanceReport(t *testing.T) {
	svc := seedReports(newFixture())

	rows, err := svc.Performance(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	c1, c2 := rows[0], rows[1]
	assert.Equal(t, "Course c1", c1.CourseTitle)
	assert.Equal(t, 2, c1.Enrollees)
	assert.Equal(t, 2, c1.Completions)
	assert.Equal(t, 100, c1.CompletionRate)
	assert.Equal(t, 70, c1.AverageScore)

	// Bob 在 c2 没有完成模块也没有成绩，不算报名；管理员不计入
	assert.Equal(t, 1, c2.Enrollees)
	assert.Equal(t, 0, c2.Completions)
	assert.Equal(t, 0, c2.CompletionRate)
	assert.Equal(t, 0, c2.AverageScore)
}

func TestCompletionReportCSV(t *testing.T) {
	svc := seedReports(newFixture())

	rows, err := svc.Completions(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "EmployeeName,EmployeeEmail,CourseTitle,QuizScore(%),CompletionDate", lines[0])
	assert.Contains(t, lines, "Ana,ana@corp.test,Course c1,80,2024-03-01")
	assert.Contains(t, lines, "Bob,bob@corp.test,Course c1,60,2024-03-01")
}

func TestUserReportCSVQuotesFields(t *testing.T) {
	f := newFixture()
	svc := seedReports(f)
	f.setUser("u-bob", func(u *model.User) { u.Name = "Bob, Jr."; u.Approved = false })

	rows, err := svc.Users(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "UserID,Name,Email,Role,Status,RegistrationDate,Points\n"))
	assert.Contains(t, out, `u-bob,"Bob, Jr.",bob@corp.test,Employee,Pending,`)
	assert.Contains(t, out, "u-ana,Ana,ana@corp.test,Employee,Approved,")
}

func TestAnalyticsOverview(t *testing.T) {
	svc := seedReports(newFixture())

	o, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, o.TotalEmployees)
	assert.Equal(t, 2, o.TotalCourses)
	assert.Equal(t, 3, o.TotalCompletions)
	assert.Equal(t, 4.3, o.AverageRating)
	assert.Equal(t, 3, o.ReviewCount)
}

func TestLearnerProgressReadModel(t *testing.T) {
	svc := seedReports(newFixture())

	byUser, err := svc.LearnerProgress(context.Background())
	require.NoError(t, err)
	require.Contains(t, byUser, "u-ana")
	assert.Len(t, byUser["u-ana"], 2)
	assert.Equal(t, 80, *byUser["u-ana"]["c1"].QuizScore)
}

package model

import (
	"strconv"
	"time"
)

const reportDateFormat = "2006-01-02"

// Table 可导出为 CSV 的报表
type Table interface {
	Header() []string
	Rows() [][]string
}

// swagger:model UserReportRow
type UserReportRow struct {
	UserID           string     `json:"userId"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	Role             UserRole   `json:"role"`
	Status           string     `json:"status"`
	RegistrationDate *time.Time `json:"registrationDate"`
	Points           int        `json:"points"`
}

type UserReport []UserReportRow

func (UserReport) Header() []string {
	return []string{"UserID", "Name", "Email", "Role", "Status", "RegistrationDate", "Points"}
}

func (r UserReport) Rows() [][]string {
	rows := make([][]string, len(r))
	for i, u := range r {
		rows[i] = []string{u.UserID, u.Name, u.Email, string(u.Role), u.Status, formatDate(u.RegistrationDate), strconv.Itoa(u.Points)}
	}
	return rows
}

// swagger:model CompletionReportRow
type CompletionReportRow struct {
	EmployeeName   string     `json:"employeeName"`
	EmployeeEmail  string     `json:"employeeEmail"`
	CourseTitle    string     `json:"courseTitle"`
	QuizScore      int        `json:"quizScore"`
	CompletionDate *time.Time `json:"completionDate"`
}

type CompletionReport []CompletionReportRow

func (CompletionReport) Header() []string {
	return []string{"EmployeeName", "EmployeeEmail", "CourseTitle", "QuizScore(%)", "CompletionDate"}
}

func (r CompletionReport) Rows() [][]string {
	rows := make([][]string, len(r))
	for i, c := range r {
		rows[i] = []string{c.EmployeeName, c.EmployeeEmail, c.CourseTitle, strconv.Itoa(c.QuizScore), formatDate(c.CompletionDate)}
	}
	return rows
}

// swagger:model PerformanceReportRow
type PerformanceReportRow struct {
	CourseID       string `json:"courseId"`
	CourseTitle    string `json:"courseTitle"`
	Enrollees      int    `json:"enrollees"`
	Completions    int    `json:"completions"`
	CompletionRate int    `json:"completionRate"`
	AverageScore   int    `json:"averageScore"`
}

type PerformanceReport []PerformanceReportRow

func (PerformanceReport) Header() []string {
	return []string{"CourseTitle", "Enrollees", "Completions", "CompletionRate(%)", "AverageScore(%)"}
}

func (r PerformanceReport) Rows() [][]string {
	rows := make([][]string, len(r))
	for i, p := range r {
		rows[i] = []string{p.CourseTitle, strconv.Itoa(p.Enrollees), strconv.Itoa(p.Completions), strconv.Itoa(p.CompletionRate), strconv.Itoa(p.AverageScore)}
	}
	return rows
}

// swagger:model AnalyticsOverview
type AnalyticsOverview struct {
	TotalEmployees   int64   `json:"totalEmployees"`
	TotalCourses     int     `json:"totalCourses"`
	TotalCompletions int     `json:"totalCompletions"`
	AverageRating    float64 `json:"averageRating"`
	ReviewCount      int     `json:"reviewCount"`
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "N/A"
	}
	return t.Format(reportDateFormat)
}

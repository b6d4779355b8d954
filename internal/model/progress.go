package model

import (
	"slices"
	"time"

	"gorm.io/datatypes"
)

// ProgressRecord 以 (user_id, course_id) 为主键的学习进度
// swagger:model ProgressRecord
type ProgressRecord struct {
	UserID           string                      `gorm:"primaryKey;type:varchar(36)" json:"userId"`
	CourseID         string                      `gorm:"primaryKey;type:varchar(36);index" json:"courseId"`
	CompletedModules datatypes.JSONSlice[string] `json:"completedModules"`
	QuizScore        *int                        `json:"quizScore"`
	Rating           *int                        `json:"rating,omitempty"`
	RecentlyViewed   *time.Time                  `json:"recentlyViewed,omitempty"`
	CompletionDate   *time.Time                  `json:"completionDate,omitempty"`
	UpdatedAt        time.Time                   `json:"updatedAt"`
}

func (ProgressRecord) TableName() string {
	return "progress_records"
}

func NewProgressRecord(userID, courseID string) ProgressRecord {
	return ProgressRecord{UserID: userID, CourseID: courseID, CompletedModules: datatypes.JSONSlice[string]{}}
}

func (p ProgressRecord) HasCompletedModule(moduleID string) bool {
	return slices.Contains(p.CompletedModules, moduleID)
}

func (p ProgressRecord) IsCompleted() bool {
	return p.CompletionDate != nil
}

// Clone 深拷贝，修改副本不影响原记录
func (p ProgressRecord) Clone() ProgressRecord {
	out := p
	out.CompletedModules = slices.Clone(p.CompletedModules)
	if out.CompletedModules == nil {
		out.CompletedModules = datatypes.JSONSlice[string]{}
	}
	out.QuizScore = clonePtr(p.QuizScore)
	out.Rating = clonePtr(p.Rating)
	out.RecentlyViewed = clonePtr(p.RecentlyViewed)
	out.CompletionDate = clonePtr(p.CompletionDate)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

package model

import (
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// swagger:model Course
type Course struct {
	UUIDBase
	Title        string                            `gorm:"size:200;not null" json:"title"`
	Description  string                            `gorm:"type:text" json:"description"`
	Category     string                            `gorm:"size:100;index" json:"category"`
	ImageURL     string                            `gorm:"size:512" json:"imageUrl"`
	Modules      datatypes.JSONSlice[Module]       `json:"modules"`
	Quiz         datatypes.JSONSlice[QuizQuestion] `json:"quiz"`
	PassingScore int                               `gorm:"default:70" json:"passingScore"`
	TextbookURL  string                            `gorm:"size:512" json:"textbookUrl,omitempty"`
	TextbookName string                            `gorm:"size:255" json:"textbookName,omitempty"`
	Reviews      []Review                          `gorm:"foreignKey:CourseID" json:"reviews"`
}

func (Course) TableName() string {
	return "courses"
}

// HasQuiz 空测验视为无需测验
func (c *Course) HasQuiz() bool {
	return len(c.Quiz) > 0
}

func (c *Course) FindModule(id string) (Module, bool) {
	for _, m := range c.Modules {
		if m.ID == id {
			return m, true
		}
	}
	return Module{}, false
}

// StoredObjects 返回课程上传到对象存储的文件地址（嵌入式视频不算）
func (c *Course) StoredObjects() []string {
	var urls []string
	for _, m := range c.Modules {
		if v, ok := m.Content.(VideoContent); ok && v.Origin == VideoUpload && v.URL != "" {
			urls = append(urls, v.URL)
		}
	}
	if c.TextbookURL != "" {
		urls = append(urls, c.TextbookURL)
	}
	return urls
}

// AllText 拼接所有文本模块内容，供 AI 出题使用
func (c *Course) AllText() string {
	var b strings.Builder
	for _, m := range c.Modules {
		if t, ok := m.Content.(TextContent); ok {
			b.WriteString(m.Title)
			b.WriteString("\n")
			b.WriteString(t.HTML)
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

// swagger:model Review
type Review struct {
	ID         string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CourseID   string `gorm:"type:varchar(36);not null;uniqueIndex:idx_review_author" json:"courseId"`
	AuthorID   string `gorm:"type:varchar(36);not null;uniqueIndex:idx_review_author" json:"authorId"`
	AuthorName string `gorm:"size:100" json:"authorName"`
	Rating     int    `gorm:"not null" json:"rating"`
	Comment    string `gorm:"type:text" json:"comment"`
	Timestamps
}

func (Review) TableName() string {
	return "course_reviews"
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = GenerateUUID()
	}
	return nil
}

// swagger:model CourseCategory
type CourseCategory struct {
	UUIDBase
	Name string `gorm:"size:100;uniqueIndex;not null" json:"name"`
}

func (CourseCategory) TableName() string {
	return "course_categories"
}

// WithoutAnswers 返回隐藏正确答案的副本，学员视图使用
func (c Course) WithoutAnswers() Course {
	out := c
	out.Quiz = make(datatypes.JSONSlice[QuizQuestion], len(c.Quiz))
	for i, q := range c.Quiz {
		q.CorrectAnswer = ""
		out.Quiz[i] = q
	}
	return out
}

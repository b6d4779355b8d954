package model

import "time"

// DiscussionPost 以 parent_id 存储的扁平帖子行，树形结构在读取时组装
type DiscussionPost struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CourseID   string    `gorm:"type:varchar(36);index;not null" json:"courseId"`
	ParentID   *string   `gorm:"type:varchar(36);index" json:"parentId,omitempty"`
	AuthorID   string    `gorm:"type:varchar(36);not null" json:"authorId"`
	AuthorName string    `gorm:"size:100" json:"authorName"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	CreatedAt  time.Time `json:"timestamp"`
}

func (DiscussionPost) TableName() string {
	return "discussion_posts"
}

// DiscussionNode 是返回给前端的嵌套帖子
// swagger:model DiscussionNode
type DiscussionNode struct {
	ID         string           `json:"id"`
	AuthorID   string           `json:"authorId"`
	AuthorName string           `json:"authorName"`
	Timestamp  time.Time        `json:"timestamp"`
	Text       string           `json:"text"`
	Replies    []DiscussionNode `json:"replies"`
}

func NodeFromPost(p DiscussionPost) DiscussionNode {
	return DiscussionNode{
		ID:         p.ID,
		AuthorID:   p.AuthorID,
		AuthorName: p.AuthorName,
		Timestamp:  p.CreatedAt,
		Text:       p.Text,
		Replies:    []DiscussionNode{},
	}
}

package model

type ExternalResourceType string

const (
	ResourceBook    ExternalResourceType = "book"
	ResourceArticle ExternalResourceType = "article"
	ResourceVideo   ExternalResourceType = "video"
)

func (t ExternalResourceType) Valid() bool {
	return t == ResourceBook || t == ResourceArticle || t == ResourceVideo
}

// swagger:model ExternalResource
type ExternalResource struct {
	UUIDBase
	Title       string               `gorm:"size:200;not null" json:"title"`
	Description string               `gorm:"type:text" json:"description"`
	URL         string               `gorm:"size:512;not null" json:"url"`
	Type        ExternalResourceType `gorm:"size:16;not null" json:"type"`
}

func (ExternalResource) TableName() string {
	return "external_resources"
}

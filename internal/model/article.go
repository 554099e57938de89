package model

import (
	"time"
)

// swagger:model Article
type Article struct {
	BaseModel

	AuthorID uint   `gorm:"index;type:bigint unsigned" json:"authorId"`
	Title    string `gorm:"size:255;not null" json:"title"`
	Summary  string `gorm:"size:500" json:"summary"`
	Content  string `gorm:"type:longtext" json:"content"`
	CoverURL string `gorm:"size:255" json:"coverUrl"`

	IsPublished        bool       `gorm:"default:false" json:"isPublished"`
	PublishedAt        *time.Time `json:"publishedAt,omitempty"`
	ScheduledPublishAt *time.Time `json:"scheduledPublishAt,omitempty"`

	Setting *ArticleSetting `gorm:"foreignKey:ArticleID" json:"setting,omitempty"`
}

func (Article) TableName() string {
	return "articles"
}

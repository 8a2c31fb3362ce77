package models

// Category groups products; the slug is the public, URL-safe identifier.
type Category struct {
	ID   string `json:"_id" gorm:"primaryKey;type:varchar(36)"`
	Name string `json:"name" gorm:"type:varchar(255);not null"`
	Slug string `json:"slug" gorm:"uniqueIndex;type:varchar(255);not null"`
}

package models

import (
	"encoding/json"
	"time"
)

// MaxPhotoSize is the largest accepted product photo, in bytes.
const MaxPhotoSize = 1_000_000

// Photo is the binary product image together with its MIME type.
type Photo struct {
	Data        []byte
	ContentType string `gorm:"type:varchar(100)"`
}

// IsEmpty reports whether no image is stored.
func (p Photo) IsEmpty() bool {
	return len(p.Data) == 0
}

// Product represents an item in the catalog.
//
// Category is only set when the product has been populated; otherwise the
// JSON form carries the bare category id, like an unpopulated reference.
type Product struct {
	ID          string    `json:"_id" gorm:"primaryKey;type:varchar(36)"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null"`
	Slug        string    `json:"slug" gorm:"index;type:varchar(255);not null"`
	Description string    `json:"description" gorm:"type:text;not null"`
	Price       float64   `json:"price" gorm:"not null"`
	CategoryID  string    `json:"-" gorm:"index;type:varchar(36);not null"`
	Category    *Category `json:"-" gorm:"-"`
	Quantity    int       `json:"quantity" gorm:"not null"`
	Photo       Photo     `json:"-" gorm:"embedded;embeddedPrefix:photo_"`
	Shipping    bool      `json:"shipping"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (p Product) MarshalJSON() ([]byte, error) {
	type plain Product
	var category any = p.CategoryID
	if p.Category != nil {
		category = p.Category
	}
	return json.Marshal(struct {
		plain
		Category any `json:"category"`
	}{plain(p), category})
}

package models

import "time"

type History struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Date    string `gorm:"column:date"` // event date, YYYY-MM-DD
	Title   string `gorm:"column:title"`
	Content string `gorm:"column:content;type:text"` // free text, LF line endings

	// Either a full retrieval URL or a bare object key, see storage.ExtractKey.
	// NULL when the entry has no image.
	ImageURL *string `gorm:"column:image_url"`
}

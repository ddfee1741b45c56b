package models

import "time"

type Principal struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Year int    `gorm:"column:year;uniqueIndex"` // term year, one principal per year
	Name string `gorm:"column:name"`

	ImageURL *string `gorm:"column:image_url"` // portrait, NULL when none uploaded
}

package models

import "time"

// SchoolDetailsSingletonID is the fixed id of the one school_details row.
// The table is expected to hold exactly one logical record; every read and
// write goes through this id.
const SchoolDetailsSingletonID uint = 1

type SchoolDetails struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	FoundingDate  *string `gorm:"column:founding_date"` // YYYY-MM-DD
	PrincipalName *string `gorm:"column:principal_name"`

	// Asset fields. Each is either NULL or a retrieval URL (or bare object
	// key, for rows written before URLs were stored). Each field updates
	// independently: a save that carries no file for a field leaves it as is.
	PrincipalImageURL *string `gorm:"column:principal_image_url"`
	GreetingURL       *string `gorm:"column:greeting_url"`
	SchoolLogoURL     *string `gorm:"column:school_logo_url"`
	MottoURL          *string `gorm:"column:motto_url"`
	SchoolFlowerURL   *string `gorm:"column:school_flower_url"`
	SchoolTreeURL     *string `gorm:"column:school_tree_url"`
	AnthemSheetURL    *string `gorm:"column:anthem_sheet_url"`
	AnthemAudioURL    *string `gorm:"column:anthem_audio_url"`
}

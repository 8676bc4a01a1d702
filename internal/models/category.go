package models

import "time"

// Category is one of the fixed exam content areas. Categories are shared,
// long-lived reference data: sessions only read them, and a category cannot
// be deleted while questions still reference it.
type Category struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"uniqueIndex;not null;size:100" validate:"required,min=1,max=100"`
	Description string `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Questions []Question `json:"-" gorm:"foreignKey:CategoryID"`

	// Computed (not stored)
	ActiveQuestionCount int `json:"active_question_count" gorm:"-"`
}

func (Category) TableName() string {
	return "categories"
}

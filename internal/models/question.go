package models

import (
	"fmt"
	"time"
)

// ChoiceLabel identifies one of the four answer choices of a question.
type ChoiceLabel string

const (
	ChoiceA ChoiceLabel = "a"
	ChoiceB ChoiceLabel = "b"
	ChoiceC ChoiceLabel = "c"
	ChoiceD ChoiceLabel = "d"
)

// ChoiceLabels lists the valid labels in presentation order.
var ChoiceLabels = []ChoiceLabel{ChoiceA, ChoiceB, ChoiceC, ChoiceD}

// Valid reports whether the label is one of the four fixed symbols.
func (l ChoiceLabel) Valid() bool {
	switch l {
	case ChoiceA, ChoiceB, ChoiceC, ChoiceD:
		return true
	}
	return false
}

// Question is a single multiple-choice item with exactly four choices.
// The (text, choices) tuple is globally unique; a question always belongs
// to exactly one category.
type Question struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	CategoryID uint `json:"category_id" gorm:"not null;index" validate:"required"`

	QuestionText string `json:"question_text" gorm:"type:text;not null;uniqueIndex:uq_question_content,priority:1" validate:"required"`

	ChoiceA string `json:"choice_a" gorm:"not null;size:500;uniqueIndex:uq_question_content,priority:2" validate:"required,max=500"`
	ChoiceB string `json:"choice_b" gorm:"not null;size:500;uniqueIndex:uq_question_content,priority:3" validate:"required,max=500"`
	ChoiceC string `json:"choice_c" gorm:"not null;size:500;uniqueIndex:uq_question_content,priority:4" validate:"required,max=500"`
	ChoiceD string `json:"choice_d" gorm:"not null;size:500;uniqueIndex:uq_question_content,priority:5" validate:"required,max=500"`

	CorrectAnswer ChoiceLabel `json:"correct_answer" gorm:"not null;size:1" validate:"required,oneof=a b c d"`
	Explanation   string      `json:"explanation" gorm:"type:text"`

	IsActive  bool      `json:"is_active" gorm:"default:true;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Category Category `json:"category" gorm:"foreignKey:CategoryID"`
}

func (Question) TableName() string {
	return "questions"
}

// ChoiceText returns the choice text for a label. The mapping is explicit
// and fixed-size; unknown labels return an error rather than an empty string.
func (q *Question) ChoiceText(label ChoiceLabel) (string, error) {
	switch label {
	case ChoiceA:
		return q.ChoiceA, nil
	case ChoiceB:
		return q.ChoiceB, nil
	case ChoiceC:
		return q.ChoiceC, nil
	case ChoiceD:
		return q.ChoiceD, nil
	}
	return "", fmt.Errorf("unknown choice label %q", label)
}

// CorrectAnswerText returns the text of the correct choice.
func (q *Question) CorrectAnswerText() string {
	text, err := q.ChoiceText(q.CorrectAnswer)
	if err != nil {
		return ""
	}
	return text
}

// Choices returns the label→text mapping for all four choices.
func (q *Question) Choices() map[ChoiceLabel]string {
	return map[ChoiceLabel]string{
		ChoiceA: q.ChoiceA,
		ChoiceB: q.ChoiceB,
		ChoiceC: q.ChoiceC,
		ChoiceD: q.ChoiceD,
	}
}

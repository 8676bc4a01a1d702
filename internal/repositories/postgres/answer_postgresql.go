package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/eppp-prep/exam-service/internal/models"
	"github.com/eppp-prep/exam-service/internal/repositories"
)

type AnswerPostgreSQL struct {
	db *gorm.DB
}

func NewAnswerPostgreSQL(db *gorm.DB) repositories.AnswerRepository {
	return &AnswerPostgreSQL{db: db}
}

func (a AnswerPostgreSQL) CreateBatch(ctx context.Context, records []*models.AnswerRecord) error {
	if len(records) == 0 {
		return nil
	}
	return a.db.WithContext(ctx).CreateInBatches(records, 100).Error
}

func (a AnswerPostgreSQL) GetBySession(ctx context.Context, sessionID uuid.UUID) ([]*models.AnswerRecord, error) {
	var records []*models.AnswerRecord
	if err := a.db.WithContext(ctx).
		Preload("Question").
		Preload("Question.Category").
		Where("session_id = ?", sessionID).
		Order("position ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (a AnswerPostgreSQL) GetBySessionForUpdate(ctx context.Context, sessionID uuid.UUID) ([]*models.AnswerRecord, error) {
	var records []*models.AnswerRecord
	// NOWAIT turns contention with a concurrent submit into an immediate
	// error instead of a blocked transaction.
	if err := a.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "NOWAIT"}).
		Where("session_id = ?", sessionID).
		Order("position ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	if err := a.preloadQuestions(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

// preloadQuestions fills the Question relation without joining inside the
// locking query. FOR UPDATE cannot lock the left side of an outer join, so
// the locked fetch stays single-table.
func (a AnswerPostgreSQL) preloadQuestions(ctx context.Context, records []*models.AnswerRecord) error {
	if len(records) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.QuestionID)
	}

	var questions []models.Question
	if err := a.db.WithContext(ctx).
		Preload("Category").
		Where("id IN ?", ids).
		Find(&questions).Error; err != nil {
		return err
	}

	byID := make(map[uint]models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	for _, r := range records {
		if q, ok := byID[r.QuestionID]; ok {
			r.Question = q
		}
	}
	return nil
}

func (a AnswerPostgreSQL) Update(ctx context.Context, record *models.AnswerRecord) error {
	// Save writes every column, including zero-valued time_spent and
	// marked_for_review.
	return a.db.WithContext(ctx).Omit("Question").Save(record).Error
}

func (a AnswerPostgreSQL) CountCorrect(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	var count int64
	err := a.db.WithContext(ctx).
		Model(&models.AnswerRecord{}).
		Where("session_id = ? AND is_correct = ?", sessionID, true).
		Count(&count).Error
	return count, err
}

package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/eppp-prep/exam-service/internal/models"
	"github.com/eppp-prep/exam-service/internal/repositories"
)

type SessionPostgreSQL struct {
	db *gorm.DB
}

func NewSessionPostgreSQL(db *gorm.DB) repositories.SessionRepository {
	return &SessionPostgreSQL{db: db}
}

func (s SessionPostgreSQL) Create(ctx context.Context, session *models.ExamSession) error {
	return s.db.WithContext(ctx).Create(session).Error
}

func (s SessionPostgreSQL) GetByID(ctx context.Context, id uuid.UUID) (*models.ExamSession, error) {
	var session models.ExamSession
	if err := s.db.WithContext(ctx).First(&session, "session_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (s SessionPostgreSQL) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.ExamSession, error) {
	var session models.ExamSession
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "NOWAIT"}).
		First(&session, "session_id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s SessionPostgreSQL) Update(ctx context.Context, session *models.ExamSession) error {
	return s.db.WithContext(ctx).Save(session).Error
}

func (s SessionPostgreSQL) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Delete(&models.ExamSession{}, "session_id = ?", id).Error
}

func (s SessionPostgreSQL) GetActiveByFingerprint(ctx context.Context, fingerprint string) (*models.ExamSession, error) {
	var session models.ExamSession
	err := s.db.WithContext(ctx).
		Where("browser_fingerprint = ? AND status IN ?", fingerprint,
			[]models.SessionStatus{models.SessionInProgress, models.SessionPaused}).
		Order("started_at DESC").
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s SessionPostgreSQL) ListCompleted(ctx context.Context, filters repositories.SessionFilters) ([]*models.ExamSession, int64, error) {
	var sessions []*models.ExamSession
	var total int64

	// apply filters first
	query := s.db.WithContext(ctx).
		Model(&models.ExamSession{}).
		Where("status = ?", models.SessionCompleted)
	query = s.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// then apply pagination and sorting
	query = s.applyPaginationAndSort(query, filters)

	if err := query.Find(&sessions).Error; err != nil {
		return nil, 0, err
	}

	return sessions, total, nil
}

func (s SessionPostgreSQL) applyFilters(query *gorm.DB, filters repositories.SessionFilters) *gorm.DB {
	if filters.Search != "" {
		query = query.Where("session_id::text ILIKE ?", filters.Search+"%")
	}
	if filters.DateFrom != nil {
		query = query.Where("completed_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("completed_at <= ?", *filters.DateTo)
	}
	return query
}

func (s SessionPostgreSQL) applyPaginationAndSort(query *gorm.DB, filters repositories.SessionFilters) *gorm.DB {
	column := "completed_at"
	switch filters.SortBy {
	case "score":
		column = "scaled_score"
	case "time":
		column = "total_time_spent"
	case "accuracy":
		column = "correct_answers"
	case "date", "":
		column = "completed_at"
	}

	direction := "DESC"
	if filters.SortOrder == "asc" {
		direction = "ASC"
	}
	query = query.Order(column + " " + direction)

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	return query
}

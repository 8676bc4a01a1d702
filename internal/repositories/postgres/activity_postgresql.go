package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/eppp-prep/exam-service/internal/models"
	"github.com/eppp-prep/exam-service/internal/repositories"
)

type ActivityPostgreSQL struct {
	db *gorm.DB
}

func NewActivityPostgreSQL(db *gorm.DB) repositories.ActivityRepository {
	return &ActivityPostgreSQL{db: db}
}

func (a ActivityPostgreSQL) Append(ctx context.Context, event *models.ActivityEvent) error {
	return a.db.WithContext(ctx).Create(event).Error
}

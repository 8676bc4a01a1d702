package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/eppp-prep/exam-service/internal/models"
	"github.com/eppp-prep/exam-service/internal/repositories"
)

type CategoryPostgreSQL struct {
	db *gorm.DB
}

func NewCategoryPostgreSQL(db *gorm.DB) repositories.CategoryRepository {
	return &CategoryPostgreSQL{db: db}
}

func (c CategoryPostgreSQL) Create(ctx context.Context, category *models.Category) error {
	return c.db.WithContext(ctx).Create(category).Error
}

func (c CategoryPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := c.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (c CategoryPostgreSQL) List(ctx context.Context) ([]*models.Category, error) {
	var categories []*models.Category
	if err := c.db.WithContext(ctx).Order("id ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (c CategoryPostgreSQL) Update(ctx context.Context, category *models.Category) error {
	return c.db.WithContext(ctx).Save(category).Error
}

func (c CategoryPostgreSQL) Delete(ctx context.Context, id uint) error {
	var count int64
	if err := c.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("category_id = ?", id).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return repositories.ErrCategoryInUse
	}
	return c.db.WithContext(ctx).Delete(&models.Category{}, id).Error
}

func (c CategoryPostgreSQL) CountActiveQuestions(ctx context.Context, id uint) (int64, error) {
	var count int64
	err := c.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("category_id = ? AND is_active = ?", id, true).
		Count(&count).Error
	return count, err
}

package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/eppp-prep/exam-service/internal/repositories"
)

// GormRepository bundles the gorm-backed repositories behind the aggregate
// Repository interface. WithTransaction yields a new aggregate bound to the
// transaction handle, so callers compose multi-entity writes without knowing
// about gorm.
type GormRepository struct {
	db *gorm.DB

	category repositories.CategoryRepository
	question repositories.QuestionRepository
	session  repositories.SessionRepository
	answer   repositories.AnswerRepository
	activity repositories.ActivityRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &GormRepository{
		db:       db,
		category: NewCategoryPostgreSQL(db),
		question: NewQuestionPostgreSQL(db),
		session:  NewSessionPostgreSQL(db),
		answer:   NewAnswerPostgreSQL(db),
		activity: NewActivityPostgreSQL(db),
	}
}

func (r *GormRepository) Category() repositories.CategoryRepository { return r.category }
func (r *GormRepository) Question() repositories.QuestionRepository { return r.question }
func (r *GormRepository) Session() repositories.SessionRepository   { return r.session }
func (r *GormRepository) Answer() repositories.AnswerRepository     { return r.answer }
func (r *GormRepository) Activity() repositories.ActivityRepository { return r.activity }

func (r *GormRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

func (r *GormRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *GormRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

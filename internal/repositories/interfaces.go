package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/eppp-prep/exam-service/internal/models"
)

// Repository aggregates the per-entity repositories behind a single
// transactional unit of work. WithTransaction runs fn against a Repository
// bound to one database transaction: either every write inside fn commits,
// or none of them do.
type Repository interface {
	Category() CategoryRepository
	Question() QuestionRepository
	Session() SessionRepository
	Answer() AnswerRepository
	Activity() ActivityRepository

	WithTransaction(ctx context.Context, fn func(Repository) error) error
	Ping(ctx context.Context) error
	Close() error
}

// CategoryRepository provides access to the shared category reference data.
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id uint) (*models.Category, error)
	// List returns all categories in ascending id order. Samplers rely on
	// this ordering to spread remainder quotas deterministically.
	List(ctx context.Context) ([]*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	// Delete fails with ErrCategoryInUse while questions reference the category.
	Delete(ctx context.Context, id uint) error
	CountActiveQuestions(ctx context.Context, id uint) (int64, error)
}

// QuestionRepository provides read access to the question bank plus the
// administrative edits the reporting site performs.
type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	// ListActiveByCategory returns the active questions of one category in
	// ascending id order.
	ListActiveByCategory(ctx context.Context, categoryID uint) ([]*models.Question, error)
	Update(ctx context.Context, question *models.Question) error
	UpdateCategory(ctx context.Context, questionID, categoryID uint) error
}

// SessionFilters narrows and orders completed-session listings.
type SessionFilters struct {
	Search    string     `json:"search"` // matches session id prefix
	DateFrom  *time.Time `json:"date_from"`
	DateTo    *time.Time `json:"date_to"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
	SortBy    string     `json:"sort_by"`    // "date", "score", "time", "accuracy"
	SortOrder string     `json:"sort_order"` // "asc", "desc"
}

// SessionRepository manages exam session records.
type SessionRepository interface {
	Create(ctx context.Context, session *models.ExamSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ExamSession, error)
	// GetByIDForUpdate is GetByID with the session row locked for the
	// duration of the surrounding transaction. Every writer that checks
	// status before mutating the session must load through this, so the
	// check and the write serialize against racing writers. Contention
	// surfaces as a lock-not-available error rather than an unbounded wait.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.ExamSession, error)
	Update(ctx context.Context, session *models.ExamSession) error
	Delete(ctx context.Context, id uuid.UUID) error

	// GetActiveByFingerprint returns the most recently started resumable
	// session for a browser fingerprint, or nil when there is none.
	GetActiveByFingerprint(ctx context.Context, fingerprint string) (*models.ExamSession, error)
	ListCompleted(ctx context.Context, filters SessionFilters) ([]*models.ExamSession, int64, error)
}

// AnswerRepository manages the per-slot answer ledger of a session.
type AnswerRepository interface {
	CreateBatch(ctx context.Context, records []*models.AnswerRecord) error
	// GetBySession returns the session's records ordered by position with
	// questions and categories preloaded.
	GetBySession(ctx context.Context, sessionID uuid.UUID) ([]*models.AnswerRecord, error)
	// GetBySessionForUpdate is GetBySession with row-level locks held for
	// the duration of the surrounding transaction. Lock contention surfaces
	// as a lock-not-available error rather than an unbounded wait.
	GetBySessionForUpdate(ctx context.Context, sessionID uuid.UUID) ([]*models.AnswerRecord, error)
	Update(ctx context.Context, record *models.AnswerRecord) error
	CountCorrect(ctx context.Context, sessionID uuid.UUID) (int64, error)
}

// ActivityRepository is the append-only audit sink. Events are never
// mutated or read back by the session engine.
type ActivityRepository interface {
	Append(ctx context.Context, event *models.ActivityEvent) error
}

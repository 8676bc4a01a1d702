package services

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/eppp-prep/exam-service/internal/models"
	"github.com/eppp-prep/exam-service/internal/repositories"
)

// fakeRepository is a stateful in-memory Repository. Autosave and submit
// tests need writes from one call visible to the next, which is why this is
// a fake rather than a call-expectation mock.
type fakeRepository struct {
	categories map[uint]*models.Category
	questions  map[uint]*models.Question
	sessions   map[uuid.UUID]models.ExamSession
	answers    map[uuid.UUID]map[int]*models.AnswerRecord
	activities []*models.ActivityEvent

	// lockedSessions mimics FOR UPDATE NOWAIT: a second locked read of a
	// held session fails with the lock-not-available SQLSTATE.
	lockedSessions map[uuid.UUID]bool

	// beforeSessionUpdate, when set, runs before each session write. Tests
	// use it to interleave a competing operation mid-transaction.
	beforeSessionUpdate func(session *models.ExamSession)

	nextAnswerID uint
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		categories:     make(map[uint]*models.Category),
		questions:      make(map[uint]*models.Question),
		sessions:       make(map[uuid.UUID]models.ExamSession),
		answers:        make(map[uuid.UUID]map[int]*models.AnswerRecord),
		lockedSessions: make(map[uuid.UUID]bool),
	}
}

// seedCategory adds a category with n active questions, all keyed "a" as the
// correct choice.
func (f *fakeRepository) seedCategory(id uint, name string, questions int, nextQuestionID *uint) {
	f.categories[id] = &models.Category{ID: id, Name: name}
	for i := 0; i < questions; i++ {
		qid := *nextQuestionID
		*nextQuestionID = qid + 1
		f.questions[qid] = &models.Question{
			ID:            qid,
			CategoryID:    id,
			QuestionText:  name,
			ChoiceA:       "alpha",
			ChoiceB:       "beta",
			ChoiceC:       "gamma",
			ChoiceD:       "delta",
			CorrectAnswer: models.ChoiceA,
			IsActive:      true,
			Category:      *f.categories[id],
		}
	}
}

func (f *fakeRepository) Category() repositories.CategoryRepository { return (*fakeCategoryRepo)(f) }
func (f *fakeRepository) Question() repositories.QuestionRepository { return (*fakeQuestionRepo)(f) }
func (f *fakeRepository) Session() repositories.SessionRepository   { return (*fakeSessionRepo)(f) }
func (f *fakeRepository) Answer() repositories.AnswerRepository     { return (*fakeAnswerRepo)(f) }
func (f *fakeRepository) Activity() repositories.ActivityRepository { return (*fakeActivityRepo)(f) }

// WithTransaction runs fn against the shared state. Session locks taken
// inside fn are released when fn returns, mimicking transaction scope.
func (f *fakeRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	heldBefore := make(map[uuid.UUID]bool, len(f.lockedSessions))
	for id := range f.lockedSessions {
		heldBefore[id] = true
	}

	err := fn(f)

	for id := range f.lockedSessions {
		if !heldBefore[id] {
			delete(f.lockedSessions, id)
		}
	}
	return err
}

func (f *fakeRepository) Ping(ctx context.Context) error { return nil }
func (f *fakeRepository) Close() error                   { return nil }

func (f *fakeRepository) activitiesOfKind(kind models.ActivityKind) []*models.ActivityEvent {
	var out []*models.ActivityEvent
	for _, event := range f.activities {
		if event.Kind == kind {
			out = append(out, event)
		}
	}
	return out
}

// ===== categories =====

type fakeCategoryRepo fakeRepository

func (f *fakeCategoryRepo) Create(ctx context.Context, category *models.Category) error {
	f.categories[category.ID] = category
	return nil
}

func (f *fakeCategoryRepo) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	category, ok := f.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return category, nil
}

func (f *fakeCategoryRepo) List(ctx context.Context) ([]*models.Category, error) {
	out := make([]*models.Category, 0, len(f.categories))
	for _, category := range f.categories {
		out = append(out, category)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCategoryRepo) Update(ctx context.Context, category *models.Category) error {
	f.categories[category.ID] = category
	return nil
}

func (f *fakeCategoryRepo) Delete(ctx context.Context, id uint) error {
	for _, question := range f.questions {
		if question.CategoryID == id {
			return repositories.ErrCategoryInUse
		}
	}
	delete(f.categories, id)
	return nil
}

func (f *fakeCategoryRepo) CountActiveQuestions(ctx context.Context, id uint) (int64, error) {
	var count int64
	for _, question := range f.questions {
		if question.CategoryID == id && question.IsActive {
			count++
		}
	}
	return count, nil
}

// ===== questions =====

type fakeQuestionRepo fakeRepository

func (f *fakeQuestionRepo) Create(ctx context.Context, question *models.Question) error {
	f.questions[question.ID] = question
	return nil
}

func (f *fakeQuestionRepo) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	question, ok := f.questions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return question, nil
}

func (f *fakeQuestionRepo) ListActiveByCategory(ctx context.Context, categoryID uint) ([]*models.Question, error) {
	var out []*models.Question
	for _, question := range f.questions {
		if question.CategoryID == categoryID && question.IsActive {
			out = append(out, question)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeQuestionRepo) Update(ctx context.Context, question *models.Question) error {
	f.questions[question.ID] = question
	return nil
}

func (f *fakeQuestionRepo) UpdateCategory(ctx context.Context, questionID, categoryID uint) error {
	question, ok := f.questions[questionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	question.CategoryID = categoryID
	return nil
}

// ===== sessions =====

type fakeSessionRepo fakeRepository

func (f *fakeSessionRepo) Create(ctx context.Context, session *models.ExamSession) error {
	f.sessions[session.SessionID] = *session
	return nil
}

func (f *fakeSessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ExamSession, error) {
	session, ok := f.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := session
	return &copied, nil
}

func (f *fakeSessionRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.ExamSession, error) {
	if f.lockedSessions[id] {
		return nil, &pgconn.PgError{Code: "55P03"}
	}
	session, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	f.lockedSessions[id] = true
	return session, nil
}

func (f *fakeSessionRepo) Update(ctx context.Context, session *models.ExamSession) error {
	if f.beforeSessionUpdate != nil {
		f.beforeSessionUpdate(session)
	}
	if _, ok := f.sessions[session.SessionID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.sessions[session.SessionID] = *session
	return nil
}

func (f *fakeSessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.sessions, id)
	return nil
}

func (f *fakeSessionRepo) GetActiveByFingerprint(ctx context.Context, fingerprint string) (*models.ExamSession, error) {
	var latest *models.ExamSession
	for id := range f.sessions {
		session := f.sessions[id]
		if session.BrowserFingerprint == nil || *session.BrowserFingerprint != fingerprint {
			continue
		}
		if !session.Status.IsActive() {
			continue
		}
		if latest == nil || session.StartedAt.After(latest.StartedAt) {
			copied := session
			latest = &copied
		}
	}
	return latest, nil
}

func (f *fakeSessionRepo) ListCompleted(ctx context.Context, filters repositories.SessionFilters) ([]*models.ExamSession, int64, error) {
	var out []*models.ExamSession
	for id := range f.sessions {
		session := f.sessions[id]
		if session.Status != models.SessionCompleted {
			continue
		}
		copied := session
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CompletedAt.After(*out[j].CompletedAt)
	})
	total := int64(len(out))
	if filters.Offset > 0 && filters.Offset < len(out) {
		out = out[filters.Offset:]
	}
	if filters.Limit > 0 && filters.Limit < len(out) {
		out = out[:filters.Limit]
	}
	return out, total, nil
}

// ===== answers =====

type fakeAnswerRepo fakeRepository

func (f *fakeAnswerRepo) CreateBatch(ctx context.Context, records []*models.AnswerRecord) error {
	for _, record := range records {
		f.nextAnswerID++
		record.ID = f.nextAnswerID
		byPosition, ok := f.answers[record.SessionID]
		if !ok {
			byPosition = make(map[int]*models.AnswerRecord)
			f.answers[record.SessionID] = byPosition
		}
		copied := *record
		byPosition[record.Position] = &copied
	}
	return nil
}

func (f *fakeAnswerRepo) GetBySession(ctx context.Context, sessionID uuid.UUID) ([]*models.AnswerRecord, error) {
	byPosition := f.answers[sessionID]
	out := make([]*models.AnswerRecord, 0, len(byPosition))
	for _, record := range byPosition {
		copied := *record
		if question, ok := f.questions[record.QuestionID]; ok {
			copied.Question = *question
			copied.Question.Category = *f.categories[question.CategoryID]
		}
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (f *fakeAnswerRepo) GetBySessionForUpdate(ctx context.Context, sessionID uuid.UUID) ([]*models.AnswerRecord, error) {
	return f.GetBySession(ctx, sessionID)
}

func (f *fakeAnswerRepo) Update(ctx context.Context, record *models.AnswerRecord) error {
	byPosition, ok := f.answers[record.SessionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *record
	copied.Question = models.Question{}
	byPosition[record.Position] = &copied
	return nil
}

func (f *fakeAnswerRepo) CountCorrect(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	var count int64
	for _, record := range f.answers[sessionID] {
		if record.IsCorrect != nil && *record.IsCorrect {
			count++
		}
	}
	return count, nil
}

// ===== activities =====

type fakeActivityRepo fakeRepository

func (f *fakeActivityRepo) Append(ctx context.Context, event *models.ActivityEvent) error {
	f.activities = append(f.activities, event)
	return nil
}

package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/eppp-prep/exam-service/internal/models"
	"github.com/eppp-prep/exam-service/internal/repositories"
)

// StratifiedSampler draws an exam form from the question bank with questions
// spread evenly across categories. The draw is all-or-nothing: if any
// category cannot fill its quota the whole draw fails and nothing is
// persisted.
type StratifiedSampler struct {
	repo   repositories.Repository
	rng    Rand
	logger *slog.Logger
}

func NewStratifiedSampler(repo repositories.Repository, rng Rand, logger *slog.Logger) *StratifiedSampler {
	return &StratifiedSampler{
		repo:   repo,
		rng:    rng,
		logger: logger,
	}
}

// Sample selects total active questions stratified over all categories and
// returns them in final presentation order. Quotas split total evenly; the
// remainder goes to the lowest-id categories, one extra question each.
func (s *StratifiedSampler) Sample(ctx context.Context, total int) ([]*models.Question, error) {
	if total <= 0 {
		return nil, fmt.Errorf("%w: total questions must be positive", ErrValidationFailed)
	}

	categories, err := s.repo.Category().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("%w: no categories defined", ErrValidationFailed)
	}

	quotas := splitQuota(total, len(categories))

	selected := make([]*models.Question, 0, total)
	for i, category := range categories {
		quota := quotas[i]
		pool, err := s.repo.Question().ListActiveByCategory(ctx, category.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load questions for category %d: %w", category.ID, err)
		}
		if len(pool) < quota {
			return nil, &InsufficientQuestionsError{
				CategoryID:   category.ID,
				CategoryName: category.Name,
				Needed:       quota,
				Available:    len(pool),
			}
		}
		selected = append(selected, s.drawWithoutReplacement(pool, quota)...)
	}

	// One full shuffle so presentation order carries no category signal.
	s.rng.Shuffle(len(selected), func(i, j int) {
		selected[i], selected[j] = selected[j], selected[i]
	})

	s.logger.Info("Sampled exam form",
		"total_questions", len(selected),
		"categories", len(categories))

	return selected, nil
}

// splitQuota divides total across n buckets. Buckets are ordered by ascending
// category id; the first total%n buckets receive one extra question.
func splitQuota(total, n int) []int {
	base := total / n
	remainder := total % n

	quotas := make([]int, n)
	for i := range quotas {
		quotas[i] = base
		if i < remainder {
			quotas[i]++
		}
	}
	return quotas
}

// drawWithoutReplacement picks k distinct questions uniformly from pool.
// A partial Fisher-Yates over index positions leaves pool untouched.
func (s *StratifiedSampler) drawWithoutReplacement(pool []*models.Question, k int) []*models.Question {
	indices := make([]int, len(pool))
	for i := range indices {
		indices[i] = i
	}

	picked := make([]*models.Question, 0, k)
	for i := 0; i < k; i++ {
		j := i + s.rng.Intn(len(indices)-i)
		indices[i], indices[j] = indices[j], indices[i]
		picked = append(picked, pool[indices[i]])
	}
	return picked
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/templui/incomeatlas/internal/model"
	"github.com/templui/incomeatlas/internal/repository"
)

type ProgressService struct {
	repo       repository.ProgressRepository
	strategies repository.StrategyRepository
	now        func() time.Time
}

func NewProgressService(repo repository.ProgressRepository, strategies repository.StrategyRepository) *ProgressService {
	return &ProgressService{
		repo:       repo,
		strategies: strategies,
		now:        time.Now,
	}
}

func (s *ProgressService) UserProgress(ctx context.Context, userID string) ([]*model.UserProgress, error) {
	return s.repo.ByUser(ctx, userID)
}

// ProgressForStrategy returns nil without error when the user has no row for
// the strategy.
func (s *ProgressService) ProgressForStrategy(ctx context.Context, userID, strategyID string) (*model.UserProgress, error) {
	progress, err := s.repo.ByUserAndStrategy(ctx, userID, strategyID)
	if errors.Is(err, repository.ErrProgressNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return progress, nil
}

// UpdateProgress creates or merges the user's progress on a strategy.
//
// Status changes fill in the timeline: moving to started records startedAt
// unless the row already has one, and moving to completed records
// completedAt (now, unless given) and backfills startedAt with the same
// instant when the row was never started.
func (s *ProgressService) UpdateProgress(ctx context.Context, userID, strategyID string, update model.ProgressUpdate) (*model.UserProgress, error) {
	if update.Status.Set && !update.Status.Value.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidStatus, update.Status.Value)
	}

	err := s.requireStrategy(ctx, strategyID)
	if err != nil {
		return nil, err
	}

	if update.Status.Set {
		now := model.FormatTimestamp(s.now())
		switch update.Status.Value {
		case model.ProgressStarted:
			update.StartedAtFallback = model.Some(now)
		case model.ProgressCompleted:
			if !update.CompletedAt.Set {
				update.CompletedAt = model.Some(now)
			}
			update.StartedAtFallback = model.Some(update.CompletedAt.Value)
		}
	}

	progress, err := s.repo.Upsert(ctx, userID, strategyID, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update progress: %w", err)
	}

	return progress, nil
}

// DeleteProgress succeeds whether or not a row exists.
func (s *ProgressService) DeleteProgress(ctx context.Context, userID, strategyID string) error {
	return s.repo.Delete(ctx, userID, strategyID)
}

func (s *ProgressService) requireStrategy(ctx context.Context, strategyID string) error {
	exists, err := s.strategies.Exists(ctx, strategyID)
	if err != nil {
		return err
	}
	if !exists {
		return repository.ErrStrategyNotFound
	}
	return nil
}

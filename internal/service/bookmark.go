package service

import (
	"context"

	"github.com/templui/incomeatlas/internal/model"
	"github.com/templui/incomeatlas/internal/repository"
)

type BookmarkService struct {
	repo       repository.BookmarkRepository
	strategies repository.StrategyRepository
}

func NewBookmarkService(repo repository.BookmarkRepository, strategies repository.StrategyRepository) *BookmarkService {
	return &BookmarkService{
		repo:       repo,
		strategies: strategies,
	}
}

func (s *BookmarkService) UserBookmarks(ctx context.Context, userID string) ([]*model.UserBookmark, error) {
	return s.repo.ByUser(ctx, userID)
}

func (s *BookmarkService) IsBookmarked(ctx context.Context, userID, strategyID string) (bool, error) {
	return s.repo.Exists(ctx, userID, strategyID)
}

// AddBookmark returns repository.ErrAlreadyBookmarked when the pair already
// exists and repository.ErrStrategyNotFound for unknown strategies.
func (s *BookmarkService) AddBookmark(ctx context.Context, userID, strategyID string) (*model.UserBookmark, error) {
	exists, err := s.strategies.Exists(ctx, strategyID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, repository.ErrStrategyNotFound
	}

	return s.repo.Create(ctx, userID, strategyID)
}

// RemoveBookmark succeeds whether or not the bookmark exists.
func (s *BookmarkService) RemoveBookmark(ctx context.Context, userID, strategyID string) error {
	return s.repo.Delete(ctx, userID, strategyID)
}

package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/templui/incomeatlas/internal/model"
	"github.com/templui/incomeatlas/internal/repository"
)

type CatalogService struct {
	repo repository.StrategyRepository
}

func NewCatalogService(repo repository.StrategyRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

// List dispatches a catalog query: a non-empty search runs a text search
// (restricted to category when one is given), otherwise a non-empty category
// filters, otherwise the whole catalog is returned. The search text is
// matched as given, surrounding whitespace included.
func (s *CatalogService) List(ctx context.Context, category model.Category, search string) ([]*model.Strategy, error) {
	if search != "" {
		return s.SearchStrategies(ctx, search, category)
	}
	if category != "" {
		return s.StrategiesByCategory(ctx, category)
	}
	return s.AllStrategies(ctx)
}

func (s *CatalogService) AllStrategies(ctx context.Context) ([]*model.Strategy, error) {
	return s.repo.All(ctx)
}

func (s *CatalogService) StrategiesByCategory(ctx context.Context, category model.Category) ([]*model.Strategy, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidCategory, category)
	}
	return s.repo.ByCategory(ctx, category)
}

func (s *CatalogService) SearchStrategies(ctx context.Context, query string, category model.Category) ([]*model.Strategy, error) {
	if category != "" && !category.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidCategory, category)
	}
	return s.repo.Search(ctx, query, category)
}

// StrategyByID returns repository.ErrStrategyNotFound for unknown ids.
func (s *CatalogService) StrategyByID(ctx context.Context, id string) (*model.Strategy, error) {
	return s.repo.ByID(ctx, id)
}

// CreateStrategy stores a new catalog entry under a generated id. Any id on
// the input is replaced.
func (s *CatalogService) CreateStrategy(ctx context.Context, strategy *model.Strategy) (*model.Strategy, error) {
	err := strategy.Validate()
	if err != nil {
		return nil, err
	}

	created := *strategy
	created.ID = uuid.New().String()

	err = s.repo.Create(ctx, &created)
	if err != nil {
		return nil, fmt.Errorf("failed to create strategy: %w", err)
	}

	return &created, nil
}

func (s *CatalogService) Stats(ctx context.Context, category model.Category) (*model.CatalogStats, error) {
	if category != "" && !category.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidCategory, category)
	}
	return s.repo.Stats(ctx, category)
}

// Seed writes strategies under their own ids, overwriting existing rows with
// the same id. With reset the catalog (and through cascade every progress and
// bookmark row) is cleared first.
func (s *CatalogService) Seed(ctx context.Context, strategies []*model.Strategy, reset bool) error {
	if reset {
		err := s.repo.DeleteAll(ctx)
		if err != nil {
			return fmt.Errorf("failed to reset catalog: %w", err)
		}
		slog.Info("catalog reset")
	}

	for _, strategy := range strategies {
		err := strategy.Validate()
		if err != nil {
			return fmt.Errorf("strategy %s: %w", strategy.ID, err)
		}
		err = s.repo.Upsert(ctx, strategy)
		if err != nil {
			return fmt.Errorf("failed to seed strategy %s: %w", strategy.ID, err)
		}
	}

	slog.Info("catalog seeded", "count", len(strategies))
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/templui/incomeatlas/internal/model"
)

var (
	ErrStrategyNotFound = errors.New("strategy not found")
)

type StrategyRepository interface {
	All(ctx context.Context) ([]*model.Strategy, error)
	ByCategory(ctx context.Context, category model.Category) ([]*model.Strategy, error)
	Search(ctx context.Context, query string, category model.Category) ([]*model.Strategy, error)
	ByID(ctx context.Context, id string) (*model.Strategy, error)
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, strategy *model.Strategy) error
	Upsert(ctx context.Context, strategy *model.Strategy) error
	DeleteAll(ctx context.Context) error
	Stats(ctx context.Context, category model.Category) (*model.CatalogStats, error)
}

type strategyRepository struct {
	db *sqlx.DB
}

func NewStrategyRepository(db *sqlx.DB) StrategyRepository {
	return &strategyRepository{db: db}
}

const strategyColumns = `id, title, description, category, potential_income, time_to_start,
	difficulty, initial_capital, required_skills, steps`

func (r *strategyRepository) All(ctx context.Context) ([]*model.Strategy, error) {
	strategies := []*model.Strategy{}
	query := `SELECT ` + strategyColumns + ` FROM strategies`

	err := r.db.SelectContext(ctx, &strategies, query)
	if err != nil {
		return nil, err
	}

	return strategies, nil
}

func (r *strategyRepository) ByCategory(ctx context.Context, category model.Category) ([]*model.Strategy, error) {
	strategies := []*model.Strategy{}
	query := `SELECT ` + strategyColumns + ` FROM strategies WHERE category = $1`

	err := r.db.SelectContext(ctx, &strategies, query, category)
	if err != nil {
		return nil, err
	}

	return strategies, nil
}

// Search matches query case-insensitively as a substring of the title,
// description or category. A non-empty category additionally restricts the
// result to that exact category.
func (r *strategyRepository) Search(ctx context.Context, query string, category model.Category) ([]*model.Strategy, error) {
	strategies := []*model.Strategy{}

	where := `(LOWER(title) LIKE $1 ESCAPE '\' OR LOWER(description) LIKE $1 ESCAPE '\' OR LOWER(category) LIKE $1 ESCAPE '\')`
	args := []any{likePattern(query)}
	if category != "" {
		where = `category = $2 AND ` + where
		args = append(args, category)
	}

	err := r.db.SelectContext(ctx, &strategies, `SELECT `+strategyColumns+` FROM strategies WHERE `+where, args...)
	if err != nil {
		return nil, err
	}

	return strategies, nil
}

func (r *strategyRepository) ByID(ctx context.Context, id string) (*model.Strategy, error) {
	strategy := &model.Strategy{}
	query := `SELECT ` + strategyColumns + ` FROM strategies WHERE id = $1`

	err := r.db.GetContext(ctx, strategy, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStrategyNotFound
	}
	if err != nil {
		return nil, err
	}

	return strategy, nil
}

func (r *strategyRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM strategies WHERE id = $1`, id)
	return count > 0, err
}

func (r *strategyRepository) Create(ctx context.Context, strategy *model.Strategy) error {
	query := `INSERT INTO strategies (` + strategyColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query, strategyArgs(strategy)...)
	return err
}

// Upsert inserts the strategy or overwrites every column of the row with the
// same id. Seeding relies on it to stay idempotent.
func (r *strategyRepository) Upsert(ctx context.Context, strategy *model.Strategy) error {
	query := `INSERT INTO strategies (` + strategyColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	          ON CONFLICT (id) DO UPDATE SET
	              title = excluded.title,
	              description = excluded.description,
	              category = excluded.category,
	              potential_income = excluded.potential_income,
	              time_to_start = excluded.time_to_start,
	              difficulty = excluded.difficulty,
	              initial_capital = excluded.initial_capital,
	              required_skills = excluded.required_skills,
	              steps = excluded.steps`

	_, err := r.db.ExecContext(ctx, query, strategyArgs(strategy)...)
	return err
}

// DeleteAll removes the whole catalog. Progress and bookmark rows go with it
// through ON DELETE CASCADE.
func (r *strategyRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM strategies`)
	return err
}

type statsRow struct {
	Total           int   `db:"total"`
	IncomeSum       int64 `db:"income_sum"`
	HighestIncome   int   `db:"highest_income"`
	BeginnerCount   int   `db:"beginner_count"`
	LowCapitalCount int   `db:"low_capital_count"`
}

type categoryCount struct {
	Category model.Category `db:"category"`
	Count    int            `db:"count"`
}

func (r *strategyRepository) Stats(ctx context.Context, category model.Category) (*model.CatalogStats, error) {
	where := ""
	args := []any{model.DifficultyBeginner, model.LowCapitalThreshold}
	if category != "" {
		where = ` WHERE category = $3`
		args = append(args, category)
	}

	row := statsRow{}
	query := `SELECT
	              COUNT(*) AS total,
	              COALESCE(SUM(potential_income), 0) AS income_sum,
	              COALESCE(MAX(potential_income), 0) AS highest_income,
	              COALESCE(SUM(CASE WHEN difficulty = $1 THEN 1 ELSE 0 END), 0) AS beginner_count,
	              COALESCE(SUM(CASE WHEN initial_capital <= $2 THEN 1 ELSE 0 END), 0) AS low_capital_count
	          FROM strategies` + where

	err := r.db.GetContext(ctx, &row, query, args...)
	if err != nil {
		return nil, err
	}

	countsWhere := ""
	countsArgs := []any{}
	if category != "" {
		countsWhere = ` WHERE category = $1`
		countsArgs = append(countsArgs, category)
	}

	counts := []categoryCount{}
	err = r.db.SelectContext(ctx, &counts, `SELECT category, COUNT(*) AS count FROM strategies`+countsWhere+` GROUP BY category`, countsArgs...)
	if err != nil {
		return nil, err
	}

	stats := &model.CatalogStats{
		Total:           row.Total,
		HighestIncome:   row.HighestIncome,
		BeginnerCount:   row.BeginnerCount,
		LowCapitalCount: row.LowCapitalCount,
		ByCategory:      make(map[model.Category]int, len(model.Categories)),
	}
	if row.Total > 0 {
		stats.AverageIncome = int((row.IncomeSum + int64(row.Total)/2) / int64(row.Total))
	}
	for _, c := range model.Categories {
		stats.ByCategory[c] = 0
	}
	for _, c := range counts {
		stats.ByCategory[c.Category] = c.Count
	}

	return stats, nil
}

func strategyArgs(s *model.Strategy) []any {
	return []any{
		s.ID,
		s.Title,
		s.Description,
		s.Category,
		s.PotentialIncome,
		s.TimeToStart,
		s.Difficulty,
		s.InitialCapital,
		s.RequiredSkills,
		s.Steps,
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern lowercases q and escapes LIKE wildcards so the query is
// matched literally.
func likePattern(q string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
}

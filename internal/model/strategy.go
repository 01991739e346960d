package model

import (
	"errors"
	"fmt"
	"strings"
)

type Category string

const (
	CategoryHighPayingJobs   Category = "High-Paying Jobs"
	CategoryFreelancing      Category = "Freelancing"
	CategoryBusinessVentures Category = "Business Ventures"
	CategoryInvestment       Category = "Investment"
	CategorySideHustles      Category = "Side Hustles"
	CategoryDigitalProducts  Category = "Digital Products"
)

// CategoryAll is the filter sentinel meaning "every category".
const CategoryAll = "all"

// Categories lists the canonical categories in display order.
var Categories = []Category{
	CategoryHighPayingJobs,
	CategoryFreelancing,
	CategoryBusinessVentures,
	CategoryInvestment,
	CategorySideHustles,
	CategoryDigitalProducts,
}

var ErrInvalidCategory = errors.New("invalid category")

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory resolves a filter value. Empty and "all" yield the zero
// Category, which callers treat as "no filter".
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == CategoryAll {
		return "", nil
	}
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
	return c, nil
}

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "Beginner"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// LowCapitalThreshold is the initial capital (in dollars) at or under which a
// strategy counts as low capital in catalog stats.
const LowCapitalThreshold = 5000

type Strategy struct {
	ID              string     `db:"id" json:"id"`
	Title           string     `db:"title" json:"title"`
	Description     string     `db:"description" json:"description"`
	Category        Category   `db:"category" json:"category"`
	PotentialIncome int        `db:"potential_income" json:"potentialIncome"`
	TimeToStart     string     `db:"time_to_start" json:"timeToStart"`
	Difficulty      Difficulty `db:"difficulty" json:"difficulty"`
	InitialCapital  int        `db:"initial_capital" json:"initialCapital"`
	RequiredSkills  StringList `db:"required_skills" json:"requiredSkills"`
	Steps           StringList `db:"steps" json:"steps"`
}

// Validate checks the constraints the strategies table enforces, so bad
// records are rejected before they reach the store.
func (s *Strategy) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return errors.New("title is required")
	}
	if strings.TrimSpace(s.Description) == "" {
		return errors.New("description is required")
	}
	if !s.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, s.Category)
	}
	if !s.Difficulty.Valid() {
		return fmt.Errorf("invalid difficulty: %q", s.Difficulty)
	}
	if s.PotentialIncome < 0 {
		return errors.New("potential income must not be negative")
	}
	if s.InitialCapital < 0 {
		return errors.New("initial capital must not be negative")
	}
	return nil
}

// CatalogStats aggregates the strategies matching an optional category
// filter. ByCategory is scoped by the same filter.
type CatalogStats struct {
	Total           int              `json:"total"`
	AverageIncome   int              `json:"averageIncome"`
	HighestIncome   int              `json:"highestIncome"`
	BeginnerCount   int              `json:"beginnerCount"`
	LowCapitalCount int              `json:"lowCapitalCount"`
	ByCategory      map[Category]int `json:"byCategory"`
}

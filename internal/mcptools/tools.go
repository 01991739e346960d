// Package mcptools exposes the read-only catalog as MCP tools.
package mcptools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/templui/incomeatlas/internal/model"
	"github.com/templui/incomeatlas/internal/repository"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Catalog is the part of the catalog service the tools read from.
type Catalog interface {
	List(ctx context.Context, category model.Category, search string) ([]*model.Strategy, error)
	StrategyByID(ctx context.Context, id string) (*model.Strategy, error)
	Stats(ctx context.Context, category model.Category) (*model.CatalogStats, error)
}

var printer = message.NewPrinter(language.English)

func dollars(n int) string {
	return printer.Sprintf("$%d", n)
}

func categoryArg(req mcp.CallToolRequest) (model.Category, *mcp.CallToolResult) {
	category, err := model.ParseCategory(req.GetString("category", ""))
	if err != nil {
		names := make([]string, 0, len(model.Categories))
		for _, c := range model.Categories {
			names = append(names, string(c))
		}
		return "", mcp.NewToolResultError(fmt.Sprintf("unknown category %q; use one of: %s", req.GetString("category", ""), strings.Join(names, ", ")))
	}
	return category, nil
}

func categoryEnum() []string {
	values := []string{model.CategoryAll}
	for _, c := range model.Categories {
		values = append(values, string(c))
	}
	return values
}

// SearchTool handles search_strategies.
type SearchTool struct {
	catalog Catalog
}

func NewSearchTool(catalog Catalog) *SearchTool {
	return &SearchTool{catalog: catalog}
}

func (t *SearchTool) Definition() mcp.Tool {
	return mcp.NewTool("search_strategies",
		mcp.WithDescription("Search the income strategy catalog. Matches the query case-insensitively "+
			"against title, description and category. With no query, lists the catalog (optionally by category)."),
		mcp.WithString("query",
			mcp.Description("Text to search for. Optional."),
		),
		mcp.WithString("category",
			mcp.Description("Restrict results to one category. Optional; 'all' means no restriction."),
			mcp.Enum(categoryEnum()...),
		),
	)
}

func (t *SearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category, errResult := categoryArg(req)
	if errResult != nil {
		return errResult, nil
	}
	query := strings.TrimSpace(req.GetString("query", ""))

	strategies, err := t.catalog.List(ctx, category, query)
	if err != nil {
		return nil, fmt.Errorf("listing strategies: %w", err)
	}

	if len(strategies) == 0 {
		return mcp.NewToolResultText("No strategies found."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d strategies:\n\n", len(strategies))
	for _, s := range strategies {
		fmt.Fprintf(&b, "- [%s] %s (%s, %s): %s/year, start-up %s\n",
			s.ID, s.Title, s.Category, s.Difficulty, dollars(s.PotentialIncome), dollars(s.InitialCapital))
	}
	return mcp.NewToolResultText(b.String()), nil
}

// StrategyTool handles get_strategy.
type StrategyTool struct {
	catalog Catalog
}

func NewStrategyTool(catalog Catalog) *StrategyTool {
	return &StrategyTool{catalog: catalog}
}

func (t *StrategyTool) Definition() mcp.Tool {
	return mcp.NewTool("get_strategy",
		mcp.WithDescription("Show one strategy in full: income, difficulty, capital, skills and the step-by-step plan."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Strategy id as listed by search_strategies."),
		),
	)
}

func (t *StrategyTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(req.GetString("id", ""))
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}

	s, err := t.catalog.StrategyByID(ctx, id)
	if errors.Is(err, repository.ErrStrategyNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("no strategy with id %q", id)), nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting strategy: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n%s\n\n", s.Title, s.Description)
	fmt.Fprintf(&b, "Category: %s\n", s.Category)
	fmt.Fprintf(&b, "Potential income: %s/year\n", dollars(s.PotentialIncome))
	fmt.Fprintf(&b, "Time to start: %s\n", s.TimeToStart)
	fmt.Fprintf(&b, "Difficulty: %s\n", s.Difficulty)
	fmt.Fprintf(&b, "Initial capital: %s\n", dollars(s.InitialCapital))
	fmt.Fprintf(&b, "Required skills: %s\n\n", strings.Join(s.RequiredSkills, ", "))
	b.WriteString("Steps:\n")
	for i, step := range s.Steps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// StatsTool handles catalog_stats.
type StatsTool struct {
	catalog Catalog
}

func NewStatsTool(catalog Catalog) *StatsTool {
	return &StatsTool{catalog: catalog}
}

func (t *StatsTool) Definition() mcp.Tool {
	return mcp.NewTool("catalog_stats",
		mcp.WithDescription("Summarize the catalog: count, average and highest income, beginner-friendly "+
			"and low-capital counts, and strategies per category."),
		mcp.WithString("category",
			mcp.Description("Summarize one category only. Optional."),
			mcp.Enum(categoryEnum()...),
		),
	)
}

func (t *StatsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category, errResult := categoryArg(req)
	if errResult != nil {
		return errResult, nil
	}

	stats, err := t.catalog.Stats(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("computing stats: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Strategies: %d\n", stats.Total)
	fmt.Fprintf(&b, "Average income: %s\n", dollars(stats.AverageIncome))
	fmt.Fprintf(&b, "Highest income: %s\n", dollars(stats.HighestIncome))
	fmt.Fprintf(&b, "Beginner friendly: %d\n", stats.BeginnerCount)
	fmt.Fprintf(&b, "Low capital (%s or less): %d\n\n", dollars(model.LowCapitalThreshold), stats.LowCapitalCount)
	b.WriteString("By category:\n")
	for _, c := range model.Categories {
		fmt.Fprintf(&b, "- %s: %d\n", c, stats.ByCategory[c])
	}
	return mcp.NewToolResultText(b.String()), nil
}

package routes

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/templui/incomeatlas/internal/app"
	"github.com/templui/incomeatlas/internal/handler"
	"github.com/templui/incomeatlas/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	strategies := handler.NewStrategyHandler(app.CatalogService)
	progress := handler.NewProgressHandler(app.ProgressService)
	bookmarks := handler.NewBookmarkHandler(app.BookmarkService)
	health := handler.NewHealthHandler(app.DB)

	mux := http.NewServeMux()

	// ============================================================================
	// OPERATIONS
	// ============================================================================

	mux.HandleFunc("GET /healthz", health.Check)
	mux.Handle("GET /metrics", promhttp.HandlerFor(app.Registry, promhttp.HandlerOpts{}))

	// ============================================================================
	// CATALOG
	// ============================================================================

	mux.HandleFunc("GET /api/strategies", strategies.List)
	mux.HandleFunc("GET /api/strategies/{id}", strategies.Show)
	mux.HandleFunc("GET /api/categories", strategies.Categories)
	mux.HandleFunc("GET /api/stats", strategies.Stats)

	// ============================================================================
	// SESSION-SCOPED (/api/progress, /api/bookmarks)
	// ============================================================================

	// Progress
	mux.HandleFunc("GET /api/progress", progress.List)
	mux.HandleFunc("GET /api/progress/{strategyId}", progress.Show)
	mux.HandleFunc("POST /api/progress/{strategyId}", progress.Update)
	mux.HandleFunc("DELETE /api/progress/{strategyId}", progress.Delete)

	// Bookmarks
	mux.HandleFunc("GET /api/bookmarks", bookmarks.List)
	mux.HandleFunc("GET /api/bookmarks/{strategyId}", bookmarks.Status)
	mux.HandleFunc("POST /api/bookmarks/{strategyId}", bookmarks.Create)
	mux.HandleFunc("DELETE /api/bookmarks/{strategyId}", bookmarks.Delete)

	// Global middleware - executed in order (top to bottom)
	metrics := middleware.NewMetrics(app.Registry)

	handler := middleware.Chain(
		mux,
		middleware.RequestLogging,
		middleware.Recover,
		middleware.Session(app.Sessions), // Mints the session cookie for /api requests
		middleware.RateLimitMutations(app.Limiter), // Needs the session id from Session
		metrics.Middleware,                         // Must be last: reads the pattern the mux sets
	)

	return handler
}

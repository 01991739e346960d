package handler

import (
	"errors"
	"net/http"

	"github.com/templui/incomeatlas/internal/model"
	"github.com/templui/incomeatlas/internal/repository"
	"github.com/templui/incomeatlas/internal/service"
)

type StrategyHandler struct {
	catalogService *service.CatalogService
}

func NewStrategyHandler(catalogService *service.CatalogService) *StrategyHandler {
	return &StrategyHandler{
		catalogService: catalogService,
	}
}

// List serves GET /api/strategies?category=&search=
func (h *StrategyHandler) List(w http.ResponseWriter, r *http.Request) {
	category, err := model.ParseCategory(r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unknown category")
		return
	}

	strategies, err := h.catalogService.List(r.Context(), category, r.URL.Query().Get("search"))
	if err != nil {
		writeInternalError(w, r, "failed to list strategies", err)
		return
	}

	writeJSON(w, http.StatusOK, strategies)
}

func (h *StrategyHandler) Show(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	strategy, err := h.catalogService.StrategyByID(r.Context(), id)
	if errors.Is(err, repository.ErrStrategyNotFound) {
		writeError(w, http.StatusNotFound, "Strategy not found")
		return
	}
	if err != nil {
		writeInternalError(w, r, "failed to get strategy", err, "strategy_id", id)
		return
	}

	writeJSON(w, http.StatusOK, strategy)
}

func (h *StrategyHandler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.Categories)
}

// Stats serves GET /api/stats?category=
func (h *StrategyHandler) Stats(w http.ResponseWriter, r *http.Request) {
	category, err := model.ParseCategory(r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unknown category")
		return
	}

	stats, err := h.catalogService.Stats(r.Context(), category)
	if err != nil {
		writeInternalError(w, r, "failed to compute catalog stats", err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

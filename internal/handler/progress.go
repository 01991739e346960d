package handler

import (
	"errors"
	"net/http"

	"github.com/templui/incomeatlas/internal/ctxkeys"
	"github.com/templui/incomeatlas/internal/repository"
	"github.com/templui/incomeatlas/internal/service"
	"github.com/templui/incomeatlas/internal/validation"
)

// maxProgressBody bounds POST /api/progress bodies.
const maxProgressBody = 64 << 10

type ProgressHandler struct {
	progressService *service.ProgressService
}

func NewProgressHandler(progressService *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{
		progressService: progressService,
	}
}

func (h *ProgressHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	progress, err := h.progressService.UserProgress(r.Context(), userID)
	if err != nil {
		writeInternalError(w, r, "failed to list progress", err, "user_id", userID)
		return
	}

	writeJSON(w, http.StatusOK, progress)
}

// Show answers with the row or a JSON null when the user has none.
func (h *ProgressHandler) Show(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	strategyID := r.PathValue("strategyId")

	progress, err := h.progressService.ProgressForStrategy(r.Context(), userID, strategyID)
	if err != nil {
		writeInternalError(w, r, "failed to get progress", err, "user_id", userID, "strategy_id", strategyID)
		return
	}

	writeJSON(w, http.StatusOK, progress)
}

func (h *ProgressHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	strategyID := r.PathValue("strategyId")

	update, err := validation.DecodeProgress(http.MaxBytesReader(w, r.Body, maxProgressBody))
	if err != nil {
		var verr *validation.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid progress data", Details: verr.Details})
			return
		}
		if errors.Is(err, validation.ErrBodyTooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		writeInternalError(w, r, "failed to validate progress", err)
		return
	}

	progress, err := h.progressService.UpdateProgress(r.Context(), userID, strategyID, update)
	if errors.Is(err, repository.ErrStrategyNotFound) {
		writeError(w, http.StatusNotFound, "Strategy not found")
		return
	}
	if err != nil {
		writeInternalError(w, r, "failed to update progress", err, "user_id", userID, "strategy_id", strategyID)
		return
	}

	writeJSON(w, http.StatusOK, progress)
}

func (h *ProgressHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	strategyID := r.PathValue("strategyId")

	err := h.progressService.DeleteProgress(r.Context(), userID, strategyID)
	if err != nil {
		writeInternalError(w, r, "failed to delete progress", err, "user_id", userID, "strategy_id", strategyID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

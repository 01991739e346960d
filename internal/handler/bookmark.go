package handler

import (
	"errors"
	"net/http"

	"github.com/templui/incomeatlas/internal/ctxkeys"
	"github.com/templui/incomeatlas/internal/repository"
	"github.com/templui/incomeatlas/internal/service"
)

type BookmarkHandler struct {
	bookmarkService *service.BookmarkService
}

func NewBookmarkHandler(bookmarkService *service.BookmarkService) *BookmarkHandler {
	return &BookmarkHandler{
		bookmarkService: bookmarkService,
	}
}

func (h *BookmarkHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	bookmarks, err := h.bookmarkService.UserBookmarks(r.Context(), userID)
	if err != nil {
		writeInternalError(w, r, "failed to list bookmarks", err, "user_id", userID)
		return
	}

	writeJSON(w, http.StatusOK, bookmarks)
}

type bookmarkStatus struct {
	IsBookmarked bool `json:"isBookmarked"`
}

func (h *BookmarkHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	strategyID := r.PathValue("strategyId")

	ok, err := h.bookmarkService.IsBookmarked(r.Context(), userID, strategyID)
	if err != nil {
		writeInternalError(w, r, "failed to check bookmark", err, "user_id", userID, "strategy_id", strategyID)
		return
	}

	writeJSON(w, http.StatusOK, bookmarkStatus{IsBookmarked: ok})
}

func (h *BookmarkHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	strategyID := r.PathValue("strategyId")

	bookmark, err := h.bookmarkService.AddBookmark(r.Context(), userID, strategyID)
	switch {
	case errors.Is(err, repository.ErrAlreadyBookmarked):
		writeError(w, http.StatusConflict, "Strategy already bookmarked")
		return
	case errors.Is(err, repository.ErrStrategyNotFound):
		writeError(w, http.StatusNotFound, "Strategy not found")
		return
	case err != nil:
		writeInternalError(w, r, "failed to add bookmark", err, "user_id", userID, "strategy_id", strategyID)
		return
	}

	writeJSON(w, http.StatusCreated, bookmark)
}

func (h *BookmarkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	strategyID := r.PathValue("strategyId")

	err := h.bookmarkService.RemoveBookmark(r.Context(), userID, strategyID)
	if err != nil {
		writeInternalError(w, r, "failed to remove bookmark", err, "user_id", userID, "strategy_id", strategyID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

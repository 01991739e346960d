package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/templui/incomeatlas/internal/model"
)

var (
	ErrAlreadyBookmarked = errors.New("strategy already bookmarked")
)

type BookmarkRepository interface {
	ByUser(ctx context.Context, userID string) ([]*model.UserBookmark, error)
	Exists(ctx context.Context, userID, strategyID string) (bool, error)
	Create(ctx context.Context, userID, strategyID string) (*model.UserBookmark, error)
	Delete(ctx context.Context, userID, strategyID string) error
}

type bookmarkRepository struct {
	db *sqlx.DB
}

func NewBookmarkRepository(db *sqlx.DB) BookmarkRepository {
	return &bookmarkRepository{db: db}
}

func (r *bookmarkRepository) ByUser(ctx context.Context, userID string) ([]*model.UserBookmark, error) {
	bookmarks := []*model.UserBookmark{}
	query := `SELECT * FROM user_bookmarks WHERE user_id = $1 ORDER BY bookmarked_at DESC`

	err := r.db.SelectContext(ctx, &bookmarks, query, userID)
	if err != nil {
		return nil, err
	}

	return bookmarks, nil
}

func (r *bookmarkRepository) Exists(ctx context.Context, userID, strategyID string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM user_bookmarks WHERE user_id = $1 AND strategy_id = $2`
	err := r.db.GetContext(ctx, &count, query, userID, strategyID)
	return count > 0, err
}

// Create inserts the bookmark unless one already exists for the pair, in
// which case it returns ErrAlreadyBookmarked. The check and the insert are
// one statement, so concurrent requests cannot both succeed.
func (r *bookmarkRepository) Create(ctx context.Context, userID, strategyID string) (*model.UserBookmark, error) {
	bookmark := &model.UserBookmark{
		ID:           uuid.New().String(),
		UserID:       userID,
		StrategyID:   strategyID,
		BookmarkedAt: time.Now().UTC(),
	}

	query := `INSERT INTO user_bookmarks (id, user_id, strategy_id, bookmarked_at)
	          VALUES ($1, $2, $3, $4)
	          ON CONFLICT (user_id, strategy_id) DO NOTHING`

	result, err := r.db.ExecContext(ctx, query,
		bookmark.ID,
		bookmark.UserID,
		bookmark.StrategyID,
		bookmark.BookmarkedAt,
	)
	if err != nil {
		return nil, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}

	if rows == 0 {
		return nil, ErrAlreadyBookmarked
	}

	return bookmark, nil
}

// Delete removes the bookmark if present. Deleting a missing bookmark is not
// an error.
func (r *bookmarkRepository) Delete(ctx context.Context, userID, strategyID string) error {
	query := `DELETE FROM user_bookmarks WHERE user_id = $1 AND strategy_id = $2`
	_, err := r.db.ExecContext(ctx, query, userID, strategyID)
	return err
}

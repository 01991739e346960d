package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/templui/incomeatlas/internal/model"
)

var (
	ErrProgressNotFound = errors.New("progress not found")
)

type ProgressRepository interface {
	ByUser(ctx context.Context, userID string) ([]*model.UserProgress, error)
	ByUserAndStrategy(ctx context.Context, userID, strategyID string) (*model.UserProgress, error)
	Upsert(ctx context.Context, userID, strategyID string, update model.ProgressUpdate) (*model.UserProgress, error)
	Delete(ctx context.Context, userID, strategyID string) error
}

type progressRepository struct {
	db *sqlx.DB
}

func NewProgressRepository(db *sqlx.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) ByUser(ctx context.Context, userID string) ([]*model.UserProgress, error) {
	progress := []*model.UserProgress{}
	query := `SELECT * FROM user_progress WHERE user_id = $1 ORDER BY updated_at DESC`

	err := r.db.SelectContext(ctx, &progress, query, userID)
	if err != nil {
		return nil, err
	}

	return progress, nil
}

func (r *progressRepository) ByUserAndStrategy(ctx context.Context, userID, strategyID string) (*model.UserProgress, error) {
	progress := &model.UserProgress{}
	query := `SELECT * FROM user_progress WHERE user_id = $1 AND strategy_id = $2`

	err := r.db.GetContext(ctx, progress, query, userID, strategyID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProgressNotFound
	}
	if err != nil {
		return nil, err
	}

	return progress, nil
}

// Upsert creates or updates the progress row for (userID, strategyID) in a
// single statement. The UNIQUE (user_id, strategy_id) constraint arbitrates
// concurrent writers, so at most one row ever exists per pair. On conflict
// only the fields set in update are written. The stored row is read back
// afterwards.
func (r *progressRepository) Upsert(ctx context.Context, userID, strategyID string, update model.ProgressUpdate) (*model.UserProgress, error) {
	startedAt := update.StartedAt
	if !startedAt.Set {
		startedAt = update.StartedAtFallback
	}

	sets := []string{"updated_at = excluded.updated_at"}
	if update.Status.Set {
		sets = append(sets, "status = excluded.status")
	}
	if update.Notes.Set {
		sets = append(sets, "notes = excluded.notes")
	}
	if update.StartedAt.Set {
		sets = append(sets, "started_at = excluded.started_at")
	} else if update.StartedAtFallback.Set {
		sets = append(sets, "started_at = COALESCE(user_progress.started_at, excluded.started_at)")
	}
	if update.CompletedAt.Set {
		sets = append(sets, "completed_at = excluded.completed_at")
	}
	if update.Results.Set {
		sets = append(sets, "results = excluded.results")
	}

	query := `INSERT INTO user_progress (id, user_id, strategy_id, status, notes, started_at, completed_at, results, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	          ON CONFLICT (user_id, strategy_id) DO UPDATE SET ` + strings.Join(sets, ", ")

	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, query,
		uuid.New().String(),
		userID,
		strategyID,
		update.Status.Or(model.ProgressInterested),
		update.Notes.Ptr(),
		startedAt.Ptr(),
		update.CompletedAt.Ptr(),
		update.Results.Ptr(),
		now,
		now,
	)
	if err != nil {
		return nil, err
	}

	return r.ByUserAndStrategy(ctx, userID, strategyID)
}

// Delete removes the row if present. Deleting a missing row is not an error.
func (r *progressRepository) Delete(ctx context.Context, userID, strategyID string) error {
	query := `DELETE FROM user_progress WHERE user_id = $1 AND strategy_id = $2`
	_, err := r.db.ExecContext(ctx, query, userID, strategyID)
	return err
}

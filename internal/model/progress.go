package model

import (
	"errors"
	"fmt"
	"time"
)

type ProgressStatus string

const (
	ProgressInterested ProgressStatus = "interested"
	ProgressStarted    ProgressStatus = "started"
	ProgressCompleted  ProgressStatus = "completed"
)

var ErrInvalidStatus = errors.New("invalid progress status")

func (s ProgressStatus) Valid() bool {
	switch s {
	case ProgressInterested, ProgressStarted, ProgressCompleted:
		return true
	}
	return false
}

func ParseProgressStatus(s string) (ProgressStatus, error) {
	status := ProgressStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return status, nil
}

// TimestampLayout is the ISO-8601 form used for progress timestamps
// (millisecond precision, UTC, as browsers produce with toISOString).
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

type UserProgress struct {
	ID          string         `db:"id" json:"id"`
	UserID      string         `db:"user_id" json:"userId"`
	StrategyID  string         `db:"strategy_id" json:"strategyId"`
	Status      ProgressStatus `db:"status" json:"status"`
	Notes       *string        `db:"notes" json:"notes"`
	StartedAt   *string        `db:"started_at" json:"startedAt"`
	CompletedAt *string        `db:"completed_at" json:"completedAt"`
	Results     *string        `db:"results" json:"results"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updatedAt"`
}

// ProgressUpdate is a partial update of a progress row. Unset fields keep
// their stored value; on first insert an unset Status becomes "interested"
// and the other unset fields stay null.
type ProgressUpdate struct {
	Status      Field[ProgressStatus]
	Notes       Field[string]
	StartedAt   Field[string]
	CompletedAt Field[string]
	Results     Field[string]

	// StartedAtFallback is applied only when the row has no started_at and
	// StartedAt is unset.
	StartedAtFallback Field[string]
}

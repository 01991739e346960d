package model

import "time"

type UserBookmark struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"userId"`
	StrategyID   string    `db:"strategy_id" json:"strategyId"`
	BookmarkedAt time.Time `db:"bookmarked_at" json:"bookmarkedAt"`
}

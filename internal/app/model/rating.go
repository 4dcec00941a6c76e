package model

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// Rating is one user's score for one store. The composite unique index
// keeps it to a single row per (user, store).
type Rating struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_ratings_user_store" json:"user_id"`
	StoreID   uint      `gorm:"not null;uniqueIndex:idx_ratings_user_store;index" json:"store_id"`
	Rating    int       `gorm:"not null;check:chk_ratings_value,rating >= 1 AND rating <= 5" json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Rating) TableName() string {
	return "ratings"
}

// RatingOutcome tells a caller whether a submission created or replaced a row.
type RatingOutcome int

const (
	RatingCreated RatingOutcome = iota + 1
	RatingUpdated
)

func (o RatingOutcome) String() string {
	switch o {
	case RatingCreated:
		return "created"
	case RatingUpdated:
		return "updated"
	}
	return "unknown"
}
